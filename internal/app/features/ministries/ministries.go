// internal/app/features/ministries/ministries.go
package ministries

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	ministrystore "github.com/ibbtech/memberhub/internal/app/store/ministries"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/faults"
	"github.com/ibbtech/memberhub/internal/domain/models"
)

// List answers GET /ministries, optionally filtered by ?categoria=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		out []models.Ministry
		err error
	)
	if cat := r.URL.Query().Get("categoria"); cat != "" {
		if !models.ValidMinistryCategory(cat) {
			apierr.Render(w, h.Log, faults.Validation("categoria inválida"))
			return
		}
		out, err = h.Ministries.ListByCategory(ctx, cat)
	} else {
		out, err = h.Ministries.List(ctx)
	}
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, out)
}

// Get answers GET /ministries/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Ministries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ministrystore.ErrNotFound) {
			apierr.Render(w, h.Log, faults.NotFound("ministério não encontrado"))
			return
		}
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, m)
}

// Create answers POST /ministries.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var m models.Ministry
	if !apierr.Decode(w, r, &m) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Ministries.Create(ctx, m)
	if err != nil {
		if errors.Is(err, ministrystore.ErrDuplicateName) {
			apierr.Render(w, h.Log, faults.Conflict("ministério já cadastrado"))
			return
		}
		apierr.Render(w, h.Log, faults.Validation(err.Error()))
		return
	}
	apierr.JSON(w, http.StatusCreated, created)
}

// updateRequest mirrors the mutable ministry fields; absent fields stay
// untouched.
type updateRequest struct {
	Nome        string             `json:"nome"`
	Categoria   string             `json:"categoria"`
	Responsavel []models.MemberRef `json:"responsavel"`
}

// Update answers PATCH /ministries/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if !apierr.Decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	upd := ministrystore.Update{
		Nome:        req.Nome,
		Categoria:   req.Categoria,
		Responsavel: req.Responsavel,
	}
	if err := h.Ministries.Apply(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, ministrystore.ErrNotFound):
			apierr.Render(w, h.Log, faults.NotFound("ministério não encontrado"))
		case errors.Is(err, ministrystore.ErrDuplicateName):
			apierr.Render(w, h.Log, faults.Conflict("ministério já cadastrado"))
		default:
			apierr.Render(w, h.Log, faults.Validation(err.Error()))
		}
		return
	}

	m, err := h.Ministries.GetByID(ctx, id)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, m)
}

// Delete answers DELETE /ministries/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Ministries.Delete(ctx, id)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	if n == 0 {
		apierr.Render(w, h.Log, faults.NotFound("ministério não encontrado"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierr.Render(w, h.Log, faults.Validation("id inválido"))
		return primitive.NilObjectID, false
	}
	return id, true
}
