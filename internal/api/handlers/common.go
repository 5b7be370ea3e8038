// Package handlers provides HTTP request handlers for the netsight console.
// This file contains the response and request helpers shared by every
// handler.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/anstrom/netsight/internal/api/middleware"
	"github.com/anstrom/netsight/internal/errors"
)

// maxRequestSize bounds JSON request bodies.
const maxRequestSize = 1 << 20

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error     string           `json:"error"`
	Message   string           `json:"message"`
	Code      errors.ErrorCode `json:"code,omitempty"`
	Field     string           `json:"field,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
	}
}

// writeError writes an error response with an explicit status code.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   errors.Message(err),
		Code:      errors.GetCode(err),
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		response.Field = ve.Field
	}
	writeJSON(w, r, statusCode, response)
}

// writeErrorFrom writes err with the status code matching its error code.
func writeErrorFrom(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, statusFor(err), err)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeValidation:
		return http.StatusBadRequest
	case errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeTransport, errors.CodeDecode:
		return http.StatusBadGateway
	case errors.CodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseJSON decodes a bounded JSON body into dest, rejecting unknown fields.
func parseJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.NewValidationError("request body is empty", "body", nil)
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return errors.NewValidationError(fmt.Sprintf("invalid JSON: %v", err), "body", nil)
	}
	return nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, key string) (value, present bool, err error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	if err != nil {
		return false, true, errors.NewValidationError(errors.MsgInvalidValue, key, raw)
	}
	return value, true, nil
}

// writeFailed logs an error raised after the response status was sent.
func writeFailed(r *http.Request, err error) {
	slog.Error("Failed to write response body",
		"request_id", middleware.GetRequestID(r.Context()),
		"path", r.URL.Path,
		"error", err)
}
