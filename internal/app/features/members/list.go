// internal/app/features/members/list.go
package members

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	memberstore "github.com/ibbtech/memberhub/internal/app/store/members"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/faults"
)

// List answers GET /members with every record, name-sorted and enriched
// with resolved references.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Members.List(ctx)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, h.Resolver.Enrich(ctx, out))
}

// ListDeacons answers GET /members/deacons.
func (h *Handler) ListDeacons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Members.ListDeacons(ctx)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, h.Resolver.Enrich(ctx, out))
}

// ListBirthdays answers GET /members/birthdays?month=1..12, sorted by
// day of month.
func (h *Handler) ListBirthdays(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		apierr.Render(w, h.Log, faults.Validation("mês inválido"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Members.ListByBirthMonth(ctx, month)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, h.Resolver.Enrich(ctx, out))
}

// Get answers GET /members/{id} with one enriched record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			apierr.Render(w, h.Log, faults.NotFound("membro não encontrado"))
			return
		}
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, h.Resolver.EnrichOne(ctx, *m))
}

// pathID parses the {id} segment, answering 400 on malformed input.
func pathID(w http.ResponseWriter, r *http.Request, h *Handler) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Render(w, h.Log, faults.Validation("id inválido"))
		return primitive.NilObjectID, false
	}
	return id, true
}
