package api

import (
	"net/http"
	"photogenie/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	_ "photogenie/internal/models"
)

// @Summary      List active sessions
// @Description  Lists the active sessions of the current user so they can manage their devices.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Session
// @Failure      401  {object}  DetailResponse
// @Router       /sessions [get]
func (s *Server) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sessions, err := s.store.ListSessionsForUser(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "list sessions")
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// @Summary      Terminate a specific session
// @Tags         sessions
// @Security     BearerAuth
// @Param        sessionId  path      string  true  "ID of the session to terminate" format(uuid)
// @Success      204        {null}    nil     "No Content"
// @Failure      400        {object}  validation.Errors
// @Failure      401        {object}  DetailResponse
// @Failure      404        {object}  DetailResponse
// @Router       /sessions/{sessionId} [delete]
func (s *Server) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validation.New("session_id", "Must be a valid UUID."))
		return
	}

	deleted, err := s.store.DeleteSessionByID(r.Context(), sessionID, claims.UserID)
	if err != nil {
		writeError(w, err, "delete session")
		return
	}
	if !deleted {
		writeNotFound(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary      Terminate all sessions (Log out everywhere)
// @Tags         sessions
// @Security     BearerAuth
// @Success      204  {null}    nil "No Content"
// @Failure      401  {object}  DetailResponse
// @Router       /sessions/terminate_all [post]
func (s *Server) TerminateAllSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	if err := s.store.DeleteAllSessionsForUser(r.Context(), claims.UserID); err != nil {
		writeError(w, err, "terminate sessions")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
