package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rentora/posts-service/internal/auth"
	"github.com/rentora/posts-service/internal/middleware"
)

// NewRouter wires the post routes. Listing is public; everything else
// goes through the token service first.
func NewRouter(h *PostHandler, tokens *auth.TokenService, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/posts", h.HandleListPosts)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens, logger))

		r.Post("/posts", h.HandleCreatePost)
		r.Get("/posts/{id}", h.HandleGetPostByID)
		r.Put("/posts/{id}", h.HandleUpdatePost)
		r.Delete("/posts/{id}", h.HandleDeletePost)
	})

	return r
}
