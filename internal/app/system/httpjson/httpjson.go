// internal/app/system/httpjson/httpjson.go
// Package httpjson holds the JSON request/response helpers shared by every
// API feature. Errors are always rendered as {"detail": "<message>"}.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/dalemusser/flotahub/internal/app/system/limits"
	"go.uber.org/zap"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Write encodes v as JSON with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	Write(w, http.StatusOK, v)
}

// Error classifies err and writes the matching status and detail.
// Internal faults are logged with their cause; client errors are not.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	Write(w, kind.Status(), ErrorBody{Detail: apperr.Message(err)})
}

// Decode reads a JSON body of at most limits.MaxJSONBody into dst. Empty,
// oversized or malformed bodies are validation errors.
func Decode(r *http.Request, dst any) error {
	return DecodeLimit(r, dst, limits.MaxJSONBody)
}

// DecodeLimit is Decode with an explicit size limit in bytes.
func DecodeLimit(r *http.Request, dst any, max int64) error {
	if r.Body == nil {
		return apperr.Validation("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, max))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid JSON body")
	}
	return nil
}
