package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"photogenie/internal/auth"
	"photogenie/internal/database"
	"photogenie/internal/models"
	"photogenie/internal/validation"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

const maxNameLength = 150

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var errInvalidRefreshToken = errors.New("invalid or expired refresh token")

type SignupRequest struct {
	Username  string `json:"username" example:"first_user"`
	Email     string `json:"email" example:"first@example.com"`
	Password  string `json:"password" example:"shahryar12345"`
	FirstName string `json:"first_name" example:"Ada"`
	LastName  string `json:"last_name" example:"Lovelace"`
}

type SignupResponse struct {
	Status  int    `json:"status" example:"201"`
	Message string `json:"message" example:"Sign up successful"`
}

// Validate trims names and reports every problem with the request.
func (req *SignupRequest) Validate() error {
	errs := validation.Errors{}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	switch {
	case req.Username == "":
		errs.Add("username", "This field may not be blank.")
	case len([]rune(req.Username)) > maxNameLength:
		errs.Add("username", "Ensure this field has no more than 150 characters.")
	case !usernamePattern.MatchString(req.Username):
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if req.Email != "" {
		if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
			errs.Add("email", "Enter a valid email address.")
		}
	}

	if len([]rune(req.FirstName)) > maxNameLength {
		errs.Add("first_name", "Ensure this field has no more than 150 characters.")
	}
	if len([]rune(req.LastName)) > maxNameLength {
		errs.Add("last_name", "Ensure this field has no more than 150 characters.")
	}

	if req.Password == "" {
		errs.Add("password", "This field may not be blank.")
	} else {
		for _, problem := range auth.ValidatePassword(req.Password) {
			errs.Add("password", problem)
		}
	}

	return errs.Err()
}

// @Summary      Sign up
// @Description  Creates a new account. The password must pass the strength rules.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signupRequest  body      SignupRequest  true  "New account"
// @Success      201            {object}  SignupResponse
// @Failure      400            {object}  validation.Errors
// @Failure      429            {object}  DetailResponse
// @Router       /auth/signup [post]
func (s *Server) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validation.New(validation.NonFieldKey, "Invalid request body."))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, err, "signup")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err, "hash password")
		return
	}

	_, err = s.store.CreateUser(r.Context(), database.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateUsername) {
			writeJSON(w, http.StatusBadRequest, validation.New("username", "A user with that username already exists."))
			return
		}
		writeError(w, err, "create user")
		return
	}

	writeJSON(w, http.StatusCreated, SignupResponse{Status: http.StatusCreated, Message: "Sign up successful"})
}

type LoginRequest struct {
	Username string `json:"username" example:"first_user"`
	Password string `json:"password" example:"shahryar12345"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJ1c2VyX2lkIjoxLCJ1c2VybmFtZSI6ImFkbWluIn0...."`
	RefreshToken string `json:"refresh_token" example:"V1StGXR8_Z5jdHi6B-myT78q_Z5jdHi6B-myT78q"`
}

// issueTokens signs an access token and stores a fresh refresh session
// through q, which may be a transaction.
func (s *Server) issueTokens(r *http.Request, q *database.Queries, user *models.User) (*TokenResponse, error) {
	accessToken, err := auth.GenerateJWT(user, s.config.JWT.Secret, s.config.JWT.AccessTTL)
	if err != nil {
		return nil, err
	}

	generateID, err := nanoid.Standard(40)
	if err != nil {
		return nil, err
	}
	refreshToken := generateID()

	err = q.CreateSession(r.Context(), database.CreateSessionParams{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     clientIP(r),
		ExpiresAt:    time.Now().Add(s.config.JWT.RefreshTTL),
	})
	if err != nil {
		return nil, err
	}

	return &TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// @Summary      Logs a user in
// @Description  Authenticates a user and returns a short-lived access token and a long-lived refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest   body      LoginRequest  true  "Login Credentials"
// @Success      200            {object}  TokenResponse
// @Failure      400            {object}  validation.Errors
// @Failure      401            {object}  DetailResponse
// @Failure      429            {object}  DetailResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validation.New(validation.NonFieldKey, "Invalid request body."))
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		writeError(w, err, "login lookup")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	tokens, err := s.issueTokens(r, s.store.Queries, user)
	if err != nil {
		log.Printf("ERROR: Failed to create session for user %d: %v", user.ID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to process login session")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"V1StGXR8_Z5jdHi6B-myT78q_Z5jdHi6B-myT78q"`
}

// @Summary      Refresh access token
// @Description  Exchanges a valid refresh token for a new token pair. The old refresh token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refreshTokenRequest   body      RefreshTokenRequest  true  "Refresh Token"
// @Success      200                   {object}  TokenResponse
// @Failure      400                   {object}  validation.Errors
// @Failure      401                   {object}  DetailResponse
// @Router       /auth/refresh [post]
func (s *Server) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, validation.New(validation.NonFieldKey, "Invalid request body."))
		return
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, validation.New("refresh_token", "This field may not be blank."))
		return
	}

	var tokens *TokenResponse
	txErr := s.store.ExecTx(r.Context(), func(q *database.Queries) error {
		user, err := q.GetUserByRefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			return err
		}
		if user == nil {
			return errInvalidRefreshToken
		}

		consumed, err := q.DeleteSessionByRefreshToken(r.Context(), req.RefreshToken)
		if err != nil {
			return err
		}
		if !consumed {
			return errInvalidRefreshToken
		}

		tokens, err = s.issueTokens(r, q, user)
		return err
	})

	if txErr != nil {
		if errors.Is(txErr, errInvalidRefreshToken) {
			writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		writeError(w, txErr, "refresh token transaction")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// @Summary      Log out
// @Description  Ends every session of the current user.
// @Tags         auth
// @Security     BearerAuth
// @Success      204  {null}    nil  "No Content"
// @Failure      401  {object}  DetailResponse
// @Router       /auth/logout [post]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	if err := s.store.DeleteAllSessionsForUser(r.Context(), claims.UserID); err != nil {
		writeError(w, err, "logout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
