// Package errors maps service failures onto the JSON API boundary.
// Handlers hand every error from the core to Render; nothing below this
// layer knows about HTTP status codes.
package errors

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ibbtech/memberhub/internal/domain/faults"
)

// Status returns the transport status code for err's fault kind.
func Status(err error) int {
	switch faults.KindOf(err) {
	case faults.KindValidation:
		return http.StatusBadRequest
	case faults.KindConflict:
		return http.StatusConflict
	case faults.KindNotFound:
		return http.StatusNotFound
	case faults.KindProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Render writes err as a JSON error body with its mapped status.
// Unclassified failures are logged and answered with a generic message
// so internals never leak to the client.
func Render(w http.ResponseWriter, log *zap.Logger, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("unclassified handler failure", zap.Error(err))
		}
		msg = "erro interno"
	}
	JSON(w, status, map[string]string{"error": msg})
}
