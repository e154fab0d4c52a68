// internal/app/features/members/photo.go
package members

import (
	"context"
	"net/http"
	"strings"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/faults"
)

// maxPhotoBytes caps one photo upload.
const maxPhotoBytes = 8 << 20

// UploadPhoto answers POST /members/{id}/photo with a multipart form
// carrying a "photo" file. The stored path comes back in the response.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		apierr.Render(w, h.Log, faults.Validation("arquivo muito grande ou formulário inválido"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		apierr.Render(w, h.Log, faults.Validation("arquivo de foto obrigatório"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		apierr.Render(w, h.Log, faults.Validation("a foto deve ser uma imagem"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	path, err := h.Svc.UploadPhoto(ctx, id, header.Filename, file, contentType)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, map[string]string{"foto": path})
}
