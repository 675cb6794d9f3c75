package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// maxBodyBytes caps request bodies. Signup and admin payloads are tiny; a
// megabyte is already generous.
const maxBodyBytes = 1 << 20

// NewRouter assembles the service router: request IDs, permissive CORS with
// OPTIONS preflight, canonical request logging, body capping, and the three
// endpoints.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"},
		AllowedHeaders: []string{
			"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version",
			"Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Wrapper(
		WithCanonlog(),
		WithCanonlogFields(func(r *http.Request) map[string]any {
			return map[string]any{"request_id": RequestIDFromContext(r.Context())}
		}),
	))
	r.Use(MaxBodySize(maxBodyBytes))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		SetError(r, ErrMethodNotAllowed)
	})

	r.Post("/signup", h.Signup)
	r.Get("/count", h.Count)
	r.Post("/admin", h.Admin)

	return r
}
