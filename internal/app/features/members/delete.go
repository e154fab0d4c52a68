// internal/app/features/members/delete.go
package members

import (
	"context"
	"net/http"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
)

// Delete answers DELETE /members/{id}. Photo blob and provider
// identities go best-effort; the document removal is what decides the
// response.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.DeleteMember(ctx, id); err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
