// internal/app/features/members/update.go
package members

import (
	"context"
	"net/http"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/app/system/sanitize"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// updateRequest carries the partial document plus an optional new
// password pushed to the linked identities.
type updateRequest struct {
	Fields   map[string]any `json:"fields"`
	Password string         `json:"password,omitempty"`
}

// Update answers PATCH /members/{id}. The diff against the stored
// document lands in historico; display fields propagate to every linked
// identity.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h)
	if !ok {
		return
	}

	var req updateRequest
	if !apierr.Decode(w, r, &req) {
		return
	}
	if len(req.Fields) == 0 && req.Password == "" {
		apierr.Render(w, h.Log, faults.Validation("nenhum campo para atualizar"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	updated, err := h.Svc.UpdateMember(ctx, id, req.Fields, req.Password)
	if err != nil {
		// The local write may have landed even when identity sync did
		// not; the client gets the error and can retry the sync.
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, h.Resolver.EnrichOne(ctx, *updated))
}

// requestUpdateBody is the free-text correction request a member sends
// about their own record.
type requestUpdateBody struct {
	Message string `json:"message"`
}

// RequestUpdate answers POST /members/{id}/request_update. Members may
// only file requests about their own record; admins about any.
func (h *Handler) RequestUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h)
	if !ok {
		return
	}

	p, _ := auth.CurrentPrincipal(r)
	if p.Role != models.RoleAdmin && p.MemberID != id {
		apierr.JSON(w, http.StatusForbidden, map[string]string{"error": "sem permissão"})
		return
	}

	var body requestUpdateBody
	if !apierr.Decode(w, r, &body) {
		return
	}
	msg := sanitize.Text(body.Message)
	if msg == "" {
		apierr.Render(w, h.Log, faults.Validation("mensagem vazia"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.RequestUpdate(ctx, id, msg); err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusAccepted, map[string]string{"status": "enviado"})
}

// resetRequest starts the password-reset flow for an email.
type resetRequest struct {
	Email string `json:"email"`
}

// ResetPassword answers POST /members/password_reset. The endpoint is
// unauthenticated; unknown emails still answer 404 so the login screen
// can tell the user the address is not registered.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !apierr.Decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		apierr.Render(w, h.Log, faults.Validation("email obrigatório"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Svc.ResetPassword(ctx, req.Email); err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusAccepted, map[string]string{"status": "enviado"})
}
