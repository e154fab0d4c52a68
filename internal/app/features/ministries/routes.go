// internal/app/features/ministries/routes.go
package ministries

import (
	"github.com/go-chi/chi/v5"

	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// Routes mounts the ministry routes.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.List)
		pr.Get("/{id}", h.Get)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireSignedIn)
		ar.Use(auth.RequireRole(models.RoleAdmin))

		ar.Post("/", h.Create)
		ar.Patch("/{id}", h.Update)
		ar.Delete("/{id}", h.Delete)
	})

	return r
}
