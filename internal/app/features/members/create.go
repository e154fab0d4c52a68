// internal/app/features/members/create.go
package members

import (
	"context"
	"net/http"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	"github.com/ibbtech/memberhub/internal/app/system/sanitize"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// createRequest is a full member record plus the initial password for
// the identity that will back it.
type createRequest struct {
	models.Member
	Password string `json:"password"`
}

// Create answers POST /members. The record is persisted locally and a
// matching identity is registered; a provider failure rolls the local
// write back.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !apierr.Decode(w, r, &req) {
		return
	}
	scrubFreeText(&req.Member)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	created, err := h.Svc.CreateMember(ctx, req.Member, req.Password)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusCreated, h.Resolver.EnrichOne(ctx, *created))
}

// scrubFreeText strips markup from the fields that carry free prose.
func scrubFreeText(m *models.Member) {
	m.Visitas.Motivo = sanitize.Text(m.Visitas.Motivo)
	m.Exclusao.Motivo = sanitize.Text(m.Exclusao.Motivo)
	m.Ingresso.Motivo = sanitize.Text(m.Ingresso.Motivo)
	m.Transferencia.Motivo = sanitize.Text(m.Transferencia.Motivo)
	m.Falecimento.Motivo = sanitize.Text(m.Falecimento.Motivo)
}
