package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"photogenie/internal/auth"
	"photogenie/internal/database"
	"photogenie/internal/models"
	"photogenie/internal/validation"
	"strconv"
	"testing"

	"github.com/jaevor/go-nanoid"
	"github.com/stretchr/testify/require"
)

const testPassword = "shahryar12345"

var randomSuffix = func() func() string {
	gen, err := nanoid.CustomASCII("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		panic(err)
	}
	return gen
}()

func uniqueName(prefix string) string {
	return prefix + "_" + randomSuffix()
}

type testUser struct {
	*models.User
	token string
}

func createAPIUser(t *testing.T, username string) testUser {
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	user, err := testServer.store.CreateUser(context.Background(), database.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)

	token, err := auth.GenerateJWT(user, testServer.config.JWT.Secret, testServer.config.JWT.AccessTTL)
	require.NoError(t, err)
	return testUser{User: user, token: token}
}

func createAPICategory(t *testing.T, name string) *models.Category {
	category, err := testServer.store.CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return category
}

// pngImage encodes a width x height PNG.
func pngImage(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type upload struct {
	filename string
	data     []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string][]string, file *upload) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, writer.WriteField(name, v))
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("image", file.filename)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// serve runs req through the full router, authenticated when token is set.
func serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return httptestRecorder(testRouter, req)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func requireValidationError(t *testing.T, rr *httptest.ResponseRecorder, field string) validation.Errors {
	require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
	errs := decode[validation.Errors](t, rr)
	require.NotEmpty(t, errs[field], "expected an error for %q in %v", field, errs)
	return errs
}

func requireDetail(t *testing.T, rr *httptest.ResponseRecorder, status int) {
	require.Equal(t, status, rr.Code, rr.Body.String())
	require.NotEmpty(t, decode[DetailResponse](t, rr).Detail)
}

// createAPIPost uploads a 40x30 PNG through the handler.
func createAPIPost(t *testing.T, owner testUser, categories ...int64) models.Post {
	fields := map[string][]string{"description": {"a post by " + owner.Username}}
	for _, id := range categories {
		fields["categories"] = append(fields["categories"], strconv.FormatInt(id, 10))
	}
	req := multipartRequest(t, http.MethodPost, "/api/v1/posts", fields, &upload{"photo.png", pngImage(t, 40, 30)})
	rr := serve(req, owner.token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[models.Post](t, rr)
}

func setCounters(t *testing.T, postID, views, downloads int64) {
	_, err := testServer.store.GetPool().Exec(context.Background(),
		`UPDATE posts SET views = $2, downloads = $3 WHERE id = $1`, postID, views, downloads)
	require.NoError(t, err)
}

func getPost(t *testing.T, id int64) *models.Post {
	post, err := testServer.store.GetPost(context.Background(), id)
	require.NoError(t, err)
	return post
}

func postPath(id int64, suffix string) string {
	return "/api/v1/posts/" + strconv.FormatInt(id, 10) + suffix
}

func httptestRecorder(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
