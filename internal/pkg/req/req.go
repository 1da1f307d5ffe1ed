/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for decoding JSON request bodies and integrates error handling
to ensure data format correctness and size constraints before the business logic runs.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"rwchat/internal/pkg/errs"
)

// MaxJSONBodySize defines the maximum allowed size (64 KB) of a JSON request body.
// This limit is enforced via http.MaxBytesReader.
const MaxJSONBodySize int64 = 64 << 10

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
