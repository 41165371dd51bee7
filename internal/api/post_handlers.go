package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"photogenie/internal/access"
	"photogenie/internal/database"
	"photogenie/internal/events"
	"photogenie/internal/feed"
	"photogenie/internal/models"
	"photogenie/internal/validation"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

const imageKeyLength = 21

// postIDParam returns false when the path segment is not a post id; such
// requests are answered with 404 like any unknown post.
func postIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func newImageKey() (string, error) {
	generateID, err := nanoid.Standard(imageKeyLength)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	return generateID(), nil
}

// saveImage stores the upload under a fresh key and returns the database
// parameters describing it.
func (s *Server) saveImage(img *uploadedImage) (*database.ImageParams, error) {
	key, err := newImageKey()
	if err != nil {
		return nil, err
	}
	if err := s.storage.Save(key, img.file); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}
	return &database.ImageParams{
		Key:         key,
		Name:        img.name,
		ContentType: img.info.ContentType,
		Width:       img.info.Width,
		Height:      img.info.Height,
	}, nil
}

func (s *Server) discardImage(key string) {
	if err := s.storage.Delete(key); err != nil {
		log.Printf("WARN: failed to remove image %s from storage: %v", key, err)
	}
}

// applyRelations replaces categories and tags that the form supplied.
func applyRelations(r *http.Request, q *database.Queries, postID int64, form *postForm) error {
	if form.categoriesSet {
		if _, err := q.ResolveCategories(r.Context(), form.categories); err != nil {
			var unknown *database.UnknownCategoriesError
			if errors.As(err, &unknown) {
				errs := validation.Errors{}
				for _, id := range unknown.IDs {
					errs.Add(fieldCategories, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
				}
				return errs
			}
			return err
		}
		if err := q.SetPostCategories(r.Context(), postID, form.categories); err != nil {
			return err
		}
	}
	if form.tagsSet {
		if err := q.SetPostTags(r.Context(), postID, form.tags); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) publish(event *events.Event) {
	if event == nil {
		return
	}
	if err := s.publisher.Publish(event); err != nil {
		log.Printf("WARN: failed to publish %s event %d: %v", event.EventType, event.ID, err)
	}
}

// @Summary      List posts
// @Description  Lists the shared feed. `search` matches the owner's username or a category name exactly and cannot be combined with the other filters. Ordering is ascending.
// @Tags         posts
// @Produce      json
// @Param        search        query     string  false  "Exact username or category name"
// @Param        published_by  query     string  false  "Owner username"
// @Param        category      query     string  false  "Category name, lower case"
// @Param        ordering      query     string  false  "Sort key"  Enums(views, downloads)
// @Param        limit         query     int     false  "Page size (max 100)"
// @Param        offset        query     int     false  "Number of posts to skip"
// @Success      200           {object}  ListResponse[models.Post]
// @Failure      400           {object}  validation.Errors
// @Router       /posts [get]
func (s *Server) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	query, err := feed.ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, err, "parse feed query")
		return
	}
	limit, offset := parsePagination(r)

	count, err := s.store.CountPosts(r.Context(), query)
	if err != nil {
		writeError(w, err, "count posts")
		return
	}
	posts, err := s.store.ListPosts(r.Context(), query, limit, offset)
	if err != nil {
		writeError(w, err, "list posts")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[models.Post]{Count: count, Results: posts})
}

// @Summary      Retrieve a post
// @Description  Returns one post. Every retrieval by someone other than the owner, anonymous callers included, counts as a view and the response carries the new count.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        postId  path      int  true  "Post ID"
// @Success      200     {object}  models.Post
// @Failure      401     {object}  DetailResponse
// @Failure      404     {object}  DetailResponse
// @Router       /posts/{postId} [get]
func (s *Server) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		writeNotFound(w)
		return
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err, "get post")
		return
	}
	if post == nil {
		writeNotFound(w)
		return
	}

	if access.CountsAsView(post, GetUserFromContext(r.Context())) {
		views, err := s.store.IncrementViews(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrPostNotFound) {
				writeNotFound(w)
				return
			}
			writeError(w, err, "increment views")
			return
		}
		post.Views = views
		postViewsTotal.Inc()
	}

	writeJSON(w, http.StatusOK, post)
}

// @Summary      Download a post's image
// @Description  Streams the original image. Every download counts, whoever asks. The `Dimensions` header carries height x width.
// @Tags         posts
// @Produce      octet-stream
// @Param        postId  path      int     true  "Post ID"
// @Success      200     {file}    file
// @Header       200     {string}  Dimensions  "Height x width in pixels"
// @Failure      404     {object}  DetailResponse
// @Router       /posts/{postId}/download [get]
func (s *Server) DownloadPostHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(r)
	if !ok {
		writeNotFound(w)
		return
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err, "get post for download")
		return
	}
	if post == nil {
		writeNotFound(w)
		return
	}

	blob, err := s.storage.Get(post.ImageKey)
	if err != nil {
		writeError(w, err, fmt.Sprintf("open image for post %d", id))
		return
	}
	defer blob.Close()

	if _, err := s.store.IncrementDownloads(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrPostNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, err, "increment downloads")
		return
	}
	postDownloadsTotal.Inc()

	w.Header().Set("Content-Type", post.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": post.Image}))
	w.Header().Set("Dimensions", post.Dimensions())
	if f, ok := blob.(*os.File); ok {
		if stat, err := f.Stat(); err == nil {
			w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
		}
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("WARN: download of post %d interrupted: %v", id, err)
	}
}

// @Summary      Create a post
// @Description  Uploads an image with its description. The owner is always the caller.
// @Tags         posts
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        image        formData  file    true   "jpeg, png, gif or webp image"
// @Param        description  formData  string  true   "Description"
// @Param        categories   formData  string  false  "Category ids, comma separated or repeated"
// @Param        tags         formData  string  false  "Tags, comma separated or repeated"
// @Success      201          {object}  models.Post
// @Failure      400          {object}  validation.Errors
// @Failure      401          {object}  DetailResponse
// @Router       /posts [post]
func (s *Server) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	form, err := s.parsePostForm(w, r, true)
	if err != nil {
		writeError(w, err, "parse post form")
		return
	}
	defer form.Close()

	image, err := s.saveImage(form.image)
	if err != nil {
		writeError(w, err, "store new post image")
		return
	}

	var post *models.Post
	var event *events.Event
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		id, err := q.CreatePost(r.Context(), database.CreatePostParams{
			OwnerID:     claims.UserID,
			Description: *form.description,
			Image:       *image,
		})
		if err != nil {
			return err
		}
		if err := applyRelations(r, q, id, form); err != nil {
			return err
		}

		post, err = q.GetPost(r.Context(), id)
		if err != nil {
			return err
		}
		event, err = q.LogEvent(r.Context(), events.PostCreated, post)
		return err
	})
	if txErr != nil {
		s.discardImage(image.Key)
		writeError(w, txErr, "create post")
		return
	}

	s.publish(event)
	writeJSON(w, http.StatusCreated, post)
}

// loadModifiable fetches the post and checks the caller may change it,
// writing the response itself when not.
func (s *Server) loadModifiable(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := postIDParam(r)
	if !ok {
		writeNotFound(w)
		return nil, false
	}

	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err, "get post")
		return nil, false
	}
	if post == nil {
		writeNotFound(w)
		return nil, false
	}

	if err := access.CanModify(post, GetUserFromContext(r.Context())); err != nil {
		writeError(w, err, "authorize post change")
		return nil, false
	}
	return post, true
}

// @Summary      Update a post
// @Description  Owner only. Each field is replaced only when it is sent; a new image replaces the stored one.
// @Tags         posts
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        postId       path      int     true   "Post ID"
// @Param        image        formData  file    false  "Replacement image"
// @Param        description  formData  string  false  "Description"
// @Param        categories   formData  string  false  "Category ids, comma separated or repeated"
// @Param        tags         formData  string  false  "Tags, comma separated or repeated"
// @Success      200          {object}  models.Post
// @Failure      400          {object}  validation.Errors
// @Failure      401          {object}  DetailResponse
// @Failure      403          {object}  DetailResponse
// @Failure      404          {object}  DetailResponse
// @Router       /posts/{postId} [put]
func (s *Server) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.loadModifiable(w, r)
	if !ok {
		return
	}

	form, err := s.parsePostForm(w, r, false)
	if err != nil {
		writeError(w, err, "parse post form")
		return
	}
	defer form.Close()

	var image *database.ImageParams
	if form.image != nil {
		if image, err = s.saveImage(form.image); err != nil {
			writeError(w, err, "store replacement image")
			return
		}
	}

	var post *models.Post
	var event *events.Event
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		updated, err := q.UpdatePost(r.Context(), existing.ID, database.UpdatePostParams{
			Description: form.description,
			Image:       image,
		})
		if err != nil {
			return err
		}
		if !updated {
			return database.ErrPostNotFound
		}
		if err := applyRelations(r, q, existing.ID, form); err != nil {
			return err
		}

		post, err = q.GetPost(r.Context(), existing.ID)
		if err != nil {
			return err
		}
		event, err = q.LogEvent(r.Context(), events.PostUpdated, post)
		return err
	})
	if txErr != nil {
		if image != nil {
			s.discardImage(image.Key)
		}
		if errors.Is(txErr, database.ErrPostNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, txErr, "update post")
		return
	}

	if image != nil {
		s.discardImage(existing.ImageKey)
	}
	s.publish(event)
	writeJSON(w, http.StatusOK, post)
}

type deletedPostPayload struct {
	ID int64 `json:"id"`
}

// @Summary      Delete a post
// @Description  Owner only. The stored image is removed as well.
// @Tags         posts
// @Security     BearerAuth
// @Param        postId  path      int  true  "Post ID"
// @Success      204     {null}    nil  "No Content"
// @Failure      401     {object}  DetailResponse
// @Failure      403     {object}  DetailResponse
// @Failure      404     {object}  DetailResponse
// @Router       /posts/{postId} [delete]
func (s *Server) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadModifiable(w, r)
	if !ok {
		return
	}

	var event *events.Event
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		deleted, err := q.DeletePost(r.Context(), post.ID, post.PublishedBy.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return database.ErrPostNotFound
		}
		event, err = q.LogEvent(r.Context(), events.PostDeleted, deletedPostPayload{ID: post.ID})
		return err
	})
	if txErr != nil {
		if errors.Is(txErr, database.ErrPostNotFound) {
			writeNotFound(w)
			return
		}
		writeError(w, txErr, "delete post")
		return
	}

	s.discardImage(post.ImageKey)
	s.publish(event)
	w.WriteHeader(http.StatusNoContent)
}
