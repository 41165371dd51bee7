package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"photogenie/internal/database"
	"photogenie/internal/models"
	"photogenie/internal/validation"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxCategoryNameLength = 128

type CreateCategoryRequest struct {
	Name string `json:"name" example:"nature"`
}

// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        limit   query     int  false  "Page size (max 100)"
// @Param        offset  query     int  false  "Number of categories to skip"
// @Success      200     {object}  ListResponse[models.Category]
// @Router       /categories [get]
func (s *Server) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	count, err := s.store.CountCategories(r.Context())
	if err != nil {
		writeError(w, err, "count categories")
		return
	}
	categories, err := s.store.ListCategories(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err, "list categories")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[models.Category]{Count: count, Results: categories})
}

// @Summary      Get a category
// @Tags         categories
// @Produce      json
// @Param        categoryId  path      int  true  "Category ID"
// @Success      200         {object}  models.Category
// @Failure      404         {object}  DetailResponse
// @Router       /categories/{categoryId} [get]
func (s *Server) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		writeNotFound(w)
		return
	}

	category, err := s.store.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, err, "get category")
		return
	}
	if category == nil {
		writeNotFound(w)
		return
	}

	writeJSON(w, http.StatusOK, category)
}

// @Summary      Create a category
// @Description  Stores the name trimmed and in lower case. Names are unique.
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        category  body      CreateCategoryRequest  true  "Category"
// @Success      201       {object}  models.Category
// @Failure      400       {object}  validation.Errors
// @Failure      401       {object}  DetailResponse
// @Router       /categories [post]
func (s *Server) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validation.New(validation.NonFieldKey, "Invalid request body."))
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	switch {
	case name == "":
		writeJSON(w, http.StatusBadRequest, validation.New("name", "This field may not be blank."))
		return
	case len([]rune(name)) > maxCategoryNameLength:
		writeJSON(w, http.StatusBadRequest, validation.New("name", "Ensure this field has no more than 128 characters."))
		return
	}

	category, err := s.store.CreateCategory(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrDuplicateCategory):
			writeJSON(w, http.StatusBadRequest, validation.New("name", "category with this name already exists."))
		case errors.Is(err, database.ErrInvalidCategory):
			writeJSON(w, http.StatusBadRequest, validation.New("name", "Category must be in lower case."))
		default:
			writeError(w, err, "create category")
		}
		return
	}

	writeJSON(w, http.StatusCreated, category)
}
