package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"engage-api/internal/auth"
	"engage-api/internal/domain"
	"engage-api/internal/http/httperr"
	"engage-api/internal/leadimport"
	"engage-api/internal/observability/logger"
	"engage-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// validatable é implementado pelos DTOs de domain.
type validatable interface {
	Validate() error
}

// requestScope resolves company (path) and actor (auth context) for a
// protected route. It writes the 401 itself when the auth context is missing.
func requestScope(w http.ResponseWriter, r *http.Request) (companyID, actorID string, ok bool) {
	ctx := r.Context()

	authCtx, found := auth.GetAuthContext(ctx)
	if !found {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication required")
		return "", "", false
	}
	return chi.URLParam(r, "companyId"), authCtx.ActorID, true
}

// decodeAndValidate lê o corpo JSON em dst e roda Validate. Erros de
// validator viram 400 com mensagens por campo.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperr.WriteError(w, ctx, http.StatusRequestEntityTooLarge, httperr.ErrCodePayloadTooLarge, "request body exceeds the size limit")
			return false
		}
		log.Warn(ctx, "invalid request body", logger.Module("http"), logger.Action("decode"), zap.Error(err))
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidFormat, "request body must be valid JSON")
		return false
	}

	if err := dst.Validate(); err != nil {
		if fields := domain.ValidationFields(err); len(fields) > 0 {
			httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "request validation failed", fields)
			return false
		}
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// handleServiceError maps service/domain errors onto the httperr envelope.
// Unknown errors are recorded as the root error of the request and become 500.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error) {
	var mappingErr *domain.MappingError

	switch {
	case errors.Is(err, service.ErrMemberNotFound):
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "not a member of this company")
	case errors.Is(err, service.ErrUnauthorized):
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, "insufficient permissions for this action")
	case errors.Is(err, service.ErrCampaignNotFound):
		httperr.NotFound404(w, ctx, "campaign not found")
	case errors.Is(err, service.ErrLeadNotFound):
		httperr.NotFound404(w, ctx, "lead not found")
	case errors.Is(err, service.ErrTicketNotFound):
		httperr.NotFound404(w, ctx, "ticket not found")
	case errors.Is(err, service.ErrBookingNotFound):
		httperr.NotFound404(w, ctx, "booking not found")
	case errors.Is(err, service.ErrInvalidTransition):
		httperr.Conflict409(w, ctx, httperr.ErrCodeInvalidTransition, "campaign status does not allow this transition")
	case errors.Is(err, service.ErrBookingConflict):
		httperr.Conflict409(w, ctx, httperr.ErrCodeConflict, "booking already exists")
	case errors.As(err, &mappingErr):
		code := httperr.ErrCodeRequiredFieldUnmapped
		if errors.Is(err, service.ErrUnknownColumn) {
			code = httperr.ErrCodeUnknownColumn
		}
		httperr.Unprocessable422(w, ctx, code, mappingErr.Err.Error(), mappingErr.FieldErrors())
	case errors.Is(err, service.ErrInvalidAssignee):
		httperr.Unprocessable422(w, ctx, httperr.ErrCodeInvalidAssignee, "assigned_to must be an active member of the company",
			map[string]string{"assigned_to": "is not an assignable member"})
	case errors.Is(err, service.ErrInvalidCursor):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "invalid cursor")
	case errors.Is(err, service.ErrInvalidCommand), errors.Is(err, service.ErrNoChanges):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeValidationError, err.Error())
	case errors.Is(err, leadimport.ErrEmptyCSV),
		errors.Is(err, leadimport.ErrMalformedRow),
		errors.Is(err, leadimport.ErrInvalidMode):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidCSV, err.Error())
	default:
		logger.SetRootError(ctx, err)
		httperr.InternalError500(w, ctx, err.Error())
	}
}
