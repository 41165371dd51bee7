package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"photogenie/internal/access"
	"photogenie/internal/validation"
)

type DetailResponse struct {
	Detail string `json:"detail" example:"Not found."`
}

type ListResponse[T any] struct {
	Count   int64 `json:"count" example:"42"`
	Results []T   `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN: failed to encode response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, DetailResponse{Detail: detail})
}

func writeNotFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// writeError maps validation and access errors to their status codes and
// logs anything else as a 500.
func writeError(w http.ResponseWriter, err error, context string) {
	if verrs, ok := validation.As(err); ok {
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}

	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, detailNoCredentials)
	case errors.Is(err, access.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
	default:
		log.Printf("ERROR: %s: %v", context, err)
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
	}
}
