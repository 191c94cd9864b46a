package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfcoelho/go-todo-api/internal/api/auth"
	"github.com/mfcoelho/go-todo-api/internal/api/task"
	"github.com/mfcoelho/go-todo-api/internal/api/user"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler            *auth.AuthHandler
	TaskHandler            *task.TaskHandler
	UserHandler            *user.UserHandler
	AuthenticateMiddleware func(http.Handler) http.Handler
	// ProtectPhotoUpload applies the authentication gate to the photo
	// upload route. Off by default to match the behavior this API replaces.
	ProtectPhotoUpload bool
}

// SetupRouter wires all application routes. Server-wide middleware (logger,
// requestID, recoverer) are applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Hello World"}`))
	})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Public auth routes
	r.Post("/signup", cfg.AuthHandler.Signup)
	r.Post("/signin", cfg.AuthHandler.Signin)

	// Photo upload; public unless configured otherwise
	if cfg.ProtectPhotoUpload {
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Post("/profile/photo", cfg.UserHandler.UploadPhoto)
		})
	} else {
		r.Post("/profile/photo", cfg.UserHandler.UploadPhoto)
	}

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(cfg.AuthenticateMiddleware)

		r.Get("/profile", cfg.UserHandler.GetProfile)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", cfg.TaskHandler.List)
			r.Post("/", cfg.TaskHandler.Create)
			r.Get("/{id}", cfg.TaskHandler.Get)
			r.Put("/{id}", cfg.TaskHandler.Update)
			r.Delete("/{id}", cfg.TaskHandler.Delete)
		})
	})

	return r
}
