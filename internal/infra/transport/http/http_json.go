package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mkrupp/cryptotracker/internal/domain"
)

// MaxRequestBodySize bounds JSON request bodies.
const MaxRequestBodySize = 1 << 20

// ErrInvalidBody is returned when a request body is not a single JSON value.
var ErrInvalidBody = errors.New("invalid request body")

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteRawJSON writes an already-encoded JSON document.
func WriteRawJSON(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

// WriteError replies with {"error": msg}. Encoding failures are ignored, the
// status line is already sent at that point.
func WriteError(w http.ResponseWriter, status int, msg string) {
	_ = WriteJSON(w, status, domain.ErrorResponse{Error: msg})
}

// DecodeJSON reads a single JSON value from the request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))

	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrInvalidBody, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrInvalidBody
	}

	return nil
}
