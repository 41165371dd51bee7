package api

import (
	"context"
	"net/http"
	"photogenie/internal/auth"
	"strings"
)

type contextKey string

const userContextKey = contextKey("user")

const (
	detailNoCredentials = "Authentication credentials were not provided."
	detailInvalidToken  = "Given token not valid for any token type"
)

// bearerClaims returns nil claims and a nil error when the request carries
// no Authorization header at all.
func (s *Server) bearerClaims(r *http.Request) (*auth.AppClaims, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ""
	}

	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return nil, "Invalid Authorization header format"
	}

	claims, err := auth.VerifyJWT(headerParts[1], s.config.JWT.Secret)
	if err != nil {
		return nil, detailInvalidToken
	}
	return claims, ""
}

func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, problem := s.bearerClaims(r)
		if problem != "" {
			writeDetail(w, http.StatusUnauthorized, problem)
			return
		}
		if claims == nil {
			writeDetail(w, http.StatusUnauthorized, detailNoCredentials)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth lets anonymous requests through but still rejects a token
// that is present and invalid.
func (s *Server) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, problem := s.bearerClaims(r)
		if problem != "" {
			writeDetail(w, http.StatusUnauthorized, problem)
			return
		}
		if claims != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, claims))
		}
		next.ServeHTTP(w, r)
	})
}

func GetUserFromContext(ctx context.Context) *auth.AppClaims {
	if claims, ok := ctx.Value(userContextKey).(*auth.AppClaims); ok {
		return claims
	}
	return nil
}
