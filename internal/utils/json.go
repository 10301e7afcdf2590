package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBody caps the size of decoded request bodies.
const MaxRequestBody = 1 << 20

// DecodeJSONRequest decodes a single JSON object into dst, rejecting unknown
// fields and trailing data. An empty body leaves dst untouched.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}
