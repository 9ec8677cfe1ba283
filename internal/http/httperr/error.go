package httperr

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"engage-api/internal/observability/logger"

	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	OK    bool         `json:"ok"`
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	ErrorID string            `json:"error_id,omitempty"`
}

// 401 Unauthorized
const (
	ErrCodeMissingAuthorization = "MISSING_AUTHORIZATION"
	ErrCodeInvalidScheme        = "INVALID_SCHEME"
	ErrCodeInvalidToken         = "INVALID_TOKEN"
	ErrCodeInvalidSignature     = "INVALID_SIGNATURE"
	ErrCodeTokenExpired         = "TOKEN_EXPIRED"
	ErrCodeInvalidIssuer        = "INVALID_ISSUER"
	ErrCodeInvalidAudience      = "INVALID_AUDIENCE"
)

// 403 / 404
const (
	ErrCodeCompanyMismatch   = "COMPANY_MISMATCH"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInsufficientScope = "INSUFFICIENT_SCOPE"
	ErrCodeNotFound          = "NOT_FOUND"
)

// 400 / 409 / 413 / 422
const (
	ErrCodeInvalidCompanyID      = "INVALID_COMPANY_ID"
	ErrCodeInvalidParameter      = "INVALID_PARAMETER"
	ErrCodeInvalidFormat         = "INVALID_FORMAT"
	ErrCodeMissingParameter      = "MISSING_PARAMETER"
	ErrCodeInvalidLimit          = "INVALID_LIMIT"
	ErrCodeValidationError       = "VALIDATION_ERROR"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
	ErrCodeInvalidPriority       = "INVALID_PRIORITY"
	ErrCodeInvalidCSV            = "INVALID_CSV"
	ErrCodePayloadTooLarge       = "PAYLOAD_TOO_LARGE"
	ErrCodeRequiredFieldUnmapped = "REQUIRED_FIELD_UNMAPPED"
	ErrCodeUnknownColumn         = "UNKNOWN_COLUMN"
	ErrCodeInvalidAssignee       = "INVALID_ASSIGNEE"
	ErrCodeInvalidTransition     = "INVALID_TRANSITION"
	ErrCodeConflict              = "CONFLICT"
)

// 429
const ErrCodeRateLimited = "RATE_LIMITED"

// 500 / 502
const (
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeUpstreamError = "UPSTREAM_ERROR"
)

var exposeErrorID atomic.Bool

// ExposeErrorID controls whether 500 responses carry the request id as
// error_id. Enabled in dev.
func ExposeErrorID(enabled bool) {
	exposeErrorID.Store(enabled)
}

func write(w http.ResponseWriter, status int, detail *ErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{OK: false, Error: detail})
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	log := logger.GetLogger(ctx)

	logFn := log.Warn
	if status >= 500 {
		logFn = log.Error
	}
	logFn(ctx, "request failed",
		logger.Module("http"),
		logger.Action("write_error"),
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
	)

	write(w, status, &ErrorDetail{Code: code, Message: message})
}

// WriteErrorWithFields writes a standardized error response with field-level details
func WriteErrorWithFields(w http.ResponseWriter, ctx context.Context, status int, code, message string, fields map[string]string) {
	log := logger.GetLogger(ctx)

	pairs := make([]zap.Field, 0, len(fields)+5)
	pairs = append(pairs,
		logger.Module("http"),
		logger.Action("write_error"),
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("message", message),
	)
	for k, v := range fields {
		pairs = append(pairs, zap.String("field_"+k, v))
	}
	log.Warn(ctx, "request failed with field errors", pairs...)

	write(w, status, &ErrorDetail{Code: code, Message: message, Fields: fields})
}

func Unauthorized401(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusUnauthorized, code, message)
}

func Forbidden403(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusForbidden, code, message)
}

func NotFound404(w http.ResponseWriter, ctx context.Context, message string) {
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, message)
}

func Conflict409(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusConflict, code, message)
}

func BadRequest400(w http.ResponseWriter, ctx context.Context, code, message string) {
	WriteError(w, ctx, http.StatusBadRequest, code, message)
}

func BadRequest400WithFields(w http.ResponseWriter, ctx context.Context, code, message string, fields map[string]string) {
	WriteErrorWithFields(w, ctx, http.StatusBadRequest, code, message, fields)
}

// Unprocessable422 é usado para regras de negócio (mapeamento obrigatório, responsável inválido).
func Unprocessable422(w http.ResponseWriter, ctx context.Context, code, message string, fields map[string]string) {
	WriteErrorWithFields(w, ctx, http.StatusUnprocessableEntity, code, message, fields)
}

// InternalError500 writes a 500 response. The message is logged, never returned.
func InternalError500(w http.ResponseWriter, ctx context.Context, message string) {
	reqID := logger.GetRequestIDFromContext(ctx)

	logger.GetLogger(ctx).Error(ctx, "internal server error",
		logger.Module("http"),
		logger.Action("write_error"),
		zap.String("message", message),
	)

	detail := &ErrorDetail{
		Code:    ErrCodeInternalError,
		Message: "Internal Server Error",
	}
	if exposeErrorID.Load() {
		detail.ErrorID = reqID
	}
	write(w, http.StatusInternalServerError, detail)
}

// InternalError writes a generic 500.
func InternalError(w http.ResponseWriter, ctx context.Context) {
	InternalError500(w, ctx, "internal server error")
}
