package api

import (
	"net/http"
	"photogenie/internal/models"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	username := uniqueName("signup")
	payload := SignupRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  testPassword,
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	rr := serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/signup", payload), "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Equal(t, SignupResponse{Status: 201, Message: "Sign up successful"}, decode[SignupResponse](t, rr))

	rr = serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/signup", payload), "")
	errs := requireValidationError(t, rr, "username")
	require.Equal(t, []string{"A user with that username already exists."}, errs["username"])
}

func TestSignup_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		payload SignupRequest
		field   string
	}{
		{"numeric password", SignupRequest{Username: uniqueName("weak"), Password: "12345678"}, "password"},
		{"short password", SignupRequest{Username: uniqueName("short"), Password: "xk29"}, "password"},
		{"common password", SignupRequest{Username: uniqueName("common"), Password: "password123"}, "password"},
		{"missing username", SignupRequest{Password: testPassword}, "username"},
		{"bad username", SignupRequest{Username: "has space", Password: testPassword}, "username"},
		{"bad email", SignupRequest{Username: uniqueName("mail"), Email: "not-an-email", Password: testPassword}, "email"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/signup", tc.payload), "")
			requireValidationError(t, rr, tc.field)
		})
	}
}

func login(t *testing.T, username, password string) TokenResponse {
	rr := serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: username, Password: password}), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	tokens := decode[TokenResponse](t, rr)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	return tokens
}

func TestLogin(t *testing.T) {
	user := createAPIUser(t, uniqueName("login"))
	tokens := login(t, user.Username, testPassword)

	rr := serve(jsonRequest(t, http.MethodGet, "/api/v1/me", nil), tokens.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[models.User](t, rr)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, user.Username, me.Username)
	require.NotContains(t, rr.Body.String(), "password")

	rr = serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: user.Username, Password: "wrong-password"}), "")
	requireDetail(t, rr, http.StatusUnauthorized)

	rr = serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: uniqueName("ghost"), Password: testPassword}), "")
	requireDetail(t, rr, http.StatusUnauthorized)
}

func TestRefreshToken_Rotation(t *testing.T) {
	user := createAPIUser(t, uniqueName("refresh"))
	tokens := login(t, user.Username, testPassword)

	rr := serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", RefreshTokenRequest{RefreshToken: tokens.RefreshToken}), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rotated := decode[TokenResponse](t, rr)
	require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	rr = serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", RefreshTokenRequest{RefreshToken: tokens.RefreshToken}), "")
	requireDetail(t, rr, http.StatusUnauthorized)

	rr = serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", RefreshTokenRequest{}), "")
	requireValidationError(t, rr, "refresh_token")
}

func TestRefreshToken_ConcurrentReuse(t *testing.T) {
	user := createAPIUser(t, uniqueName("refreshrace"))
	tokens := login(t, user.Username, testPassword)

	const attempts = 4
	reqs := make([]*http.Request, attempts)
	for i := range reqs {
		reqs[i] = jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	}

	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		i, req := i, req
		go func() {
			defer wg.Done()
			codes[i] = serve(req, "").Code
		}()
	}
	wg.Wait()

	var ok, unauthorized int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusUnauthorized:
			unauthorized++
		}
	}
	require.Equal(t, 1, ok, "codes: %v", codes)
	require.Equal(t, attempts-1, unauthorized, "codes: %v", codes)
}

func TestLogout_EndsAllSessions(t *testing.T) {
	user := createAPIUser(t, uniqueName("logout"))
	first := login(t, user.Username, testPassword)
	second := login(t, user.Username, testPassword)

	rr := serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil), first.AccessToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	for _, refresh := range []string{first.RefreshToken, second.RefreshToken} {
		rr = serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", RefreshTokenRequest{RefreshToken: refresh}), "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}

	requireDetail(t, serve(jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil), ""), http.StatusUnauthorized)
}

func TestAuthEndpoints_RateLimited(t *testing.T) {
	cfg := *testServer.config
	cfg.RateLimit.Requests = 2
	cfg.RateLimit.Window = time.Minute
	limited := NewServer(&cfg, testServer.store, testServer.storage, testServer.wsHub, nil)
	router := limited.Routes()

	for i := 0; i < 3; i++ {
		req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "nobody", Password: "x"})
		req.RemoteAddr = "203.0.113.7:5000"
		rr := httptestRecorder(router, req)
		if i < 2 {
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		} else {
			requireDetail(t, rr, http.StatusTooManyRequests)
		}
	}

	// Other clients keep their own budget.
	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "nobody", Password: "x"})
	req.RemoteAddr = "203.0.113.8:5000"
	require.Equal(t, http.StatusUnauthorized, httptestRecorder(router, req).Code)

	// Feed reads are not rate limited.
	req = jsonRequest(t, http.MethodGet, "/api/v1/categories", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	require.Equal(t, http.StatusOK, httptestRecorder(router, req).Code)
}
