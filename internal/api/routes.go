package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Routes builds the full HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "Dimensions"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://"+s.config.AppHost+"/swagger/doc.json"),
	))
	r.Get("/health", s.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ServeWsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Group(func(r chi.Router) {
			r.Use(s.RateLimit)
			r.Post("/auth/signup", s.SignupHandler)
			r.Post("/auth/login", s.LoginHandler)
			r.Post("/auth/refresh", s.RefreshTokenHandler)
		})

		// Public reads; a valid token only changes view accounting.
		r.Group(func(r chi.Router) {
			r.Use(s.OptionalAuth)
			r.Get("/posts", s.ListPostsHandler)
			r.Get("/posts/{postId}", s.GetPostHandler)
			r.Get("/posts/{postId}/download", s.DownloadPostHandler)
			r.Get("/categories", s.ListCategoriesHandler)
			r.Get("/categories/{categoryId}", s.GetCategoryHandler)
			r.Get("/events", s.GetEventsHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Post("/auth/logout", s.LogoutHandler)
			r.Get("/me", s.GetCurrentUserHandler)
			r.Get("/sessions", s.ListSessionsHandler)
			r.Delete("/sessions/{sessionId}", s.DeleteSessionHandler)
			r.Post("/sessions/terminate_all", s.TerminateAllSessionsHandler)
			r.Post("/categories", s.CreateCategoryHandler)
			r.Post("/posts", s.CreatePostHandler)
			r.Put("/posts/{postId}", s.UpdatePostHandler)
			r.Delete("/posts/{postId}", s.DeletePostHandler)
		})
	})

	return r
}
