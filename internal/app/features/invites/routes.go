// internal/app/features/invites/routes.go
package invites

import (
	"github.com/go-chi/chi/v5"

	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// Routes mounts the invite routes. Accepting is the one public
// operation: the invitee has no credentials yet, only the link.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Post("/", h.Send)
		pr.Get("/mine", h.ListMine)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireSignedIn)
		ar.Use(auth.RequireRole(models.RoleAdmin))

		ar.Get("/", h.List)
		ar.Delete("/{id}", h.Delete)
	})

	r.Post("/{id}/accept", h.Accept)

	return r
}
