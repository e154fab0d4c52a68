// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"

	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// Routes mounts all member routes under the path where the caller mounts
// it. Typically: r.Mount("/members", members.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Reads and self-service actions for any signed-in member.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.List)
		pr.Get("/deacons", h.ListDeacons)
		pr.Get("/birthdays", h.ListBirthdays)
		pr.Get("/{id}", h.Get)
		pr.Post("/{id}/request_update", h.RequestUpdate)
	})

	// Record management is restricted to the secretariat.
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireSignedIn)
		ar.Use(auth.RequireRole(models.RoleAdmin))

		ar.Post("/", h.Create)
		ar.Patch("/{id}", h.Update)
		ar.Delete("/{id}", h.Delete)
		ar.Post("/{id}/photo", h.UploadPhoto)
		ar.Post("/import_csv", h.ImportCSV)
	})

	// Password reset starts from the login screen, before any token exists.
	r.Post("/password_reset", h.ResetPassword)

	return r
}
