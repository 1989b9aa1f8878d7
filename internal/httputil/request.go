package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"blogwriter/internal/config"
)

// ErrBodyTooLarge is returned by ParseJSON when the body exceeds config.MaxRequestBytes.
var ErrBodyTooLarge = errors.New("request body too large")

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	// Articles embed images as data URIs, so the limit is generous
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
