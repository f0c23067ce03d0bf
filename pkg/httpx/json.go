package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dwikikusuma/storefront/pkg/apperr"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a single JSON object into dst. Unknown fields are rejected
// so typos in request bodies fail loudly.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body required")
		}
		return apperr.Validation("invalid json: " + err.Error())
	}
	if dec.More() {
		return apperr.Validation("invalid json: trailing data")
	}
	return nil
}
