package api

import (
	"net/http"

	_ "photogenie/internal/models"
)

// @Summary      Get current user info
// @Description  Returns the profile of the authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  DetailResponse
// @Failure      404  {object}  DetailResponse
// @Router       /me [get]
func (s *Server) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, "load current user")
		return
	}
	if user == nil {
		writeNotFound(w)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
