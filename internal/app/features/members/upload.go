// internal/app/features/members/upload.go
package members

import (
	"context"
	"net/http"
	"strings"

	apierr "github.com/ibbtech/memberhub/internal/app/features/errors"
	"github.com/ibbtech/memberhub/internal/app/system/csvutil"
	"github.com/ibbtech/memberhub/internal/app/system/timeouts"
	"github.com/ibbtech/memberhub/internal/domain/faults"
)

// ImportCSV answers POST /members/import_csv with a multipart form
// carrying a "csv" file. Rows become local-only records; matching
// emails are skipped so re-running the same file is safe.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	file, _, err := r.FormFile("csv")
	if err != nil {
		msg := "arquivo CSV obrigatório"
		if strings.Contains(err.Error(), "request body too large") {
			msg = "arquivo CSV muito grande; o limite é 5 MB"
		}
		apierr.Render(w, h.Log, faults.Validation(msg))
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	summary, err := h.Svc.ImportCSV(ctx, file)
	if err != nil {
		apierr.Render(w, h.Log, err)
		return
	}
	apierr.JSON(w, http.StatusOK, summary)
}
