// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxBodyBytes bounds JSON request bodies at the boundary.
const maxBodyBytes = 1 << 20

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into v. On failure it answers 400 and
// returns false; the handler must return without writing further.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"error": "corpo da requisição inválido"})
		return false
	}
	return true
}
