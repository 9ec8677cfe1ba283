package handler

import (
	"net/http"
	"strconv"

	"engage-api/internal/domain"
	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"
	"engage-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service *service.TicketService
}

func NewTicketHandler(service *service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

// ListTickets handles GET /v1/companies/{companyId}/tickets
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	params := domain.ListTicketsParams{Limit: 50}

	if v := query.Get("status"); v != "" {
		status := domain.TicketStatus(v)
		if !status.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "status must be one of: new, open, in_progress, resolved, closed")
			return
		}
		params.Status = &status
	}
	if v := query.Get("priority"); v != "" {
		priority := domain.TicketPriority(v)
		if !priority.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidPriority, "priority must be one of: low, medium, high, critical")
			return
		}
		params.Priority = &priority
	}
	if v := query.Get("source"); v != "" {
		source := domain.TicketSource(v)
		if !source.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "invalid ticket source")
			return
		}
		params.Source = &source
	}
	if v := query.Get("assignedTo"); v != "" {
		params.AssignedTo = &v
	}
	if v := query.Get("q"); v != "" {
		params.Query = &v
	}
	if v := query.Get("cursor"); v != "" {
		params.Cursor = &v
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidLimit, "limit must be between 1 and 100")
			return
		}
		params.Limit = limit
	}

	response, err := h.service.ListTickets(ctx, companyID, actorID, params)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateTicket handles POST /v1/companies/{companyId}/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req domain.CreateTicketRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.service.CreateTicket(ctx, companyID, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	w.Header().Set("Location", "/v1/companies/"+companyID+"/tickets/"+ticket.ID)
	writeJSON(w, http.StatusCreated, ticket)
}

// GetStats handles GET /v1/companies/{companyId}/tickets/stats
func (h *TicketHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(ctx, companyID, actorID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetTicket handles GET /v1/companies/{companyId}/tickets/{ticketId}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(ctx, companyID, chi.URLParam(r, "ticketId"), actorID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// UpdateTicket handles PATCH /v1/companies/{companyId}/tickets/{ticketId}
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}
	ticketID := chi.URLParam(r, "ticketId")

	var req domain.UpdateTicketRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.service.UpdateTicket(ctx, companyID, ticketID, actorID, &req)
	if err != nil {
		log.Warn(ctx, "ticket update failed",
			logger.Module("ticket"),
			logger.Action("update"),
			zap.String("ticket_id", ticketID),
			zap.Error(err),
		)
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// AddNote handles POST /v1/companies/{companyId}/tickets/{ticketId}/notes
func (h *TicketHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req domain.AddNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	note, err := h.service.AddNote(ctx, companyID, chi.URLParam(r, "ticketId"), actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ListTeamMembers handles GET /v1/companies/{companyId}/team-members
func (h *TicketHandler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	response, err := h.service.TeamMembers(ctx, companyID, actorID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
