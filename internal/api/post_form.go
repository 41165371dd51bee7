package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"photogenie/internal/storage"
	"photogenie/internal/validation"
	"strconv"
	"strings"
)

const (
	fieldImage       = "image"
	fieldDescription = "description"
	fieldCategories  = "categories"
	fieldTags        = "tags"

	maxTagLength = 100

	invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	// multipartMemory bounds how much of a form is buffered in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20
)

type uploadedImage struct {
	file multipart.File
	name string
	info storage.ImageInfo
}

// postForm holds the fields of a create or update request. A nil pointer
// or a false *Set flag means the client did not send that field.
type postForm struct {
	description   *string
	categories    []int64
	categoriesSet bool
	tags          []string
	tagsSet       bool
	image         *uploadedImage

	multipart *multipart.Form
}

// Close releases the uploaded file and any temporary files the multipart
// reader spilled to disk.
func (f *postForm) Close() {
	if f.image != nil {
		f.image.file.Close()
	}
	if f.multipart != nil {
		if err := f.multipart.RemoveAll(); err != nil {
			log.Printf("WARN: Failed to remove multipart temp files: %v", err)
		}
	}
}

// splitList flattens repeated and comma separated values, dropping blanks.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parsePostForm reads a multipart post form. On create every required
// field must be present; on update any subset may be sent.
func (s *Server) parsePostForm(w http.ResponseWriter, r *http.Request, create bool) (*postForm, error) {
	maxUpload := s.config.Storage.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, validation.New(fieldImage, fmt.Sprintf("Upload must not exceed %d bytes.", maxUpload))
		}
		if errors.Is(err, http.ErrNotMultipart) && !create {
			return &postForm{}, nil
		}
		return nil, validation.New(validation.NonFieldKey, "Expected a multipart/form-data body.")
	}

	form := &postForm{multipart: r.MultipartForm}
	errs := validation.Errors{}
	values := r.MultipartForm.Value

	if raw, ok := values[fieldDescription]; ok {
		description := strings.TrimSpace(strings.Join(raw, ""))
		if description == "" {
			errs.Add(fieldDescription, "This field may not be blank.")
		}
		form.description = &description
	} else if create {
		errs.Add(fieldDescription, "This field is required.")
	}

	if raw, ok := values[fieldCategories]; ok {
		form.categoriesSet = true
		seen := map[int64]bool{}
		form.categories = []int64{}
		for _, v := range splitList(raw) {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs.Add(fieldCategories, fmt.Sprintf("Incorrect type. Expected pk value, received %q.", v))
				continue
			}
			if !seen[id] {
				seen[id] = true
				form.categories = append(form.categories, id)
			}
		}
	}

	if raw, ok := values[fieldTags]; ok {
		form.tagsSet = true
		seen := map[string]bool{}
		form.tags = []string{}
		for _, tag := range splitList(raw) {
			if len([]rune(tag)) > maxTagLength {
				errs.Add(fieldTags, fmt.Sprintf("Tag %q has more than %d characters.", tag, maxTagLength))
				continue
			}
			if !seen[tag] {
				seen[tag] = true
				form.tags = append(form.tags, tag)
			}
		}
	}

	file, header, err := r.FormFile(fieldImage)
	switch {
	case err == nil:
		img, problem, imgErr := checkUpload(file, header, maxUpload)
		if imgErr != nil {
			file.Close()
			form.Close()
			return nil, imgErr
		}
		if problem != "" {
			file.Close()
			errs.Add(fieldImage, problem)
		} else {
			form.image = img
		}
	case errors.Is(err, http.ErrMissingFile):
		if create {
			errs.Add(fieldImage, "No file was submitted.")
		}
	default:
		form.Close()
		return nil, err
	}

	if err := errs.Err(); err != nil {
		form.Close()
		return nil, err
	}
	return form, nil
}

// checkUpload validates an uploaded image. A non-empty problem is the
// message shown to the client; err is reserved for I/O failures.
func checkUpload(file multipart.File, header *multipart.FileHeader, maxUpload int64) (*uploadedImage, string, error) {
	if header.Size > maxUpload {
		return nil, fmt.Sprintf("Upload must not exceed %d bytes.", maxUpload), nil
	}

	info, err := storage.ProbeImage(file)
	if errors.Is(err, storage.ErrNotAnImage) {
		return nil, invalidImageMessage, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("rewind upload: %w", err)
	}

	return &uploadedImage{file: file, name: header.Filename, info: info}, "", nil
}
