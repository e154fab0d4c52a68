// internal/app/features/invites/invites.go
package invites

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	"github.com/ibbtech/memberhub/internal/app/system/auth"
	"github.com/ibbtech/memberhub/internal/app/system/sanitize"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// sendRequest creates one invite for an email and/or phone.
type sendRequest struct {
	RequestName string `json:"requestName"`
	To          string `json:"to"`
	Phone       string `json:"phone"`
}

// Send answers POST /invites. The invite is persisted first; dispatch
// failures keep it pending so the caller can retry delivery.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !apierr.Decode(w, r, &req) {
		return
	}

	p, _ := auth.CurrentPrincipal(r)
	inv := models.Invite{
		MemberIDRequested: p.MemberID.Hex(),
		RequestName:       sanitize.Text(req.RequestName),
		To:                req.To,
		Phone:             req.Phone,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	created, err := h.Svc.SendInvite(ctx, inv)
	if err != nil {
		// Dispatch failures still return the pending invite.
		if created != nil {
			apierr.JSON(w, apierr.Status(err), map[string]any{
				"error":  err.Error(),
				"invite": created,
			})
			return
		}
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusCreated, created)
}

// List answers GET /invites with every invite, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Invites.List(ctx)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, out)
}

// ListMine answers GET /invites/mine with the caller's own requests.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Invites.ListByRequester(ctx, p.MemberID.Hex())
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, out)
}

// acceptRequest completes a registration through an invite link.
type acceptRequest struct {
	Token    string        `json:"token"`
	Member   models.Member `json:"member"`
	Password string        `json:"password"`
}

// Accept answers POST /invites/{id}/accept. An accepted invite is
// terminal; a second accept never creates another member.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Render(w, h.Log, faults.Validation("id inválido"))
		return
	}

	var req acceptRequest
	if !apierr.Decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		apierr.Render(w, h.Log, faults.Validation("token obrigatório"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	created, err := h.Svc.AcceptInvite(ctx, id, req.Token, req.Member, req.Password)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusCreated, created)
}

// Delete answers DELETE /invites/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Render(w, h.Log, faults.Validation("id inválido"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Invites.Delete(ctx, id)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	if n == 0 {
		apierr.Render(w, h.Log, faults.NotFound("convite não encontrado"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
