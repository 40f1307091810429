package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/USSTM/wms-backend/internal/repository"
)

const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

// ErrorBody is the payload under the top-level "error" key.
type ErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() ErrorResponse {
	body := ErrorBody{
		Code:    e.Code,
		Message: e.Message,
	}
	if len(e.Details) > 0 {
		body.Details = e.Details
	}
	if len(e.Context) > 0 {
		body.Context = e.Context
	}
	return ErrorResponse{Error: body}
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

func ConflictErr(msg string) *ErrorBuilder {
	return NewError(CodeConflict, msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *ErrorBuilder) {
	writeJSON(w, status, e.Create())
}

// writeStoreError maps repository sentinels to responses. Anything else,
// including a change that was applied but not persisted, is a 500.
func writeStoreError(w http.ResponseWriter, logger *slog.Logger, err error, resource string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, NotFound(resource))
	case errors.Is(err, repository.ErrDuplicateID):
		writeError(w, http.StatusConflict, ConflictErr(resource+" with this id already exists"))
	case errors.Is(err, repository.ErrInvalid):
		writeError(w, http.StatusBadRequest, ValidationErr("Invalid "+resource, []ErrorDetail{{Field: "body", Message: err.Error()}}))
	case errors.Is(err, repository.ErrUnavailable):
		logger.Warn("Rejected write to unloaded "+resource, "error", err)
		writeError(w, http.StatusServiceUnavailable, NewError(CodeUnavailable, "Reference data is temporarily unavailable, retry later."))
	default:
		logger.Error("Failed to save "+resource, "error", err)
		writeError(w, http.StatusInternalServerError, InternalError("An unexpected error occurred."))
	}
}

// ValidationErrorHandler renders request validator failures in the
// standard error envelope.
func ValidationErrorHandler(w http.ResponseWriter, message string, statusCode int) {
	var e *ErrorBuilder
	switch statusCode {
	case http.StatusUnauthorized:
		e = Unauthorized("Authentication required")
	case http.StatusForbidden:
		e = PermissionDenied("Insufficient permissions")
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		e = NewError(CodeResourceNotFound, "Route not found")
	case http.StatusBadRequest:
		e = ValidationErr("Request validation failed", []ErrorDetail{{Field: "request", Message: message}})
	default:
		e = InternalError("An unexpected error occurred.")
	}
	writeError(w, statusCode, e)
}
