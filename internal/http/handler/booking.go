package handler

import (
	"net/http"

	"engage-api/internal/domain"
	"engage-api/internal/http/httperr"
	"engage-api/internal/service"

	"github.com/go-chi/chi/v5"
)

type BookingHandler struct {
	service *service.BookingService
}

func NewBookingHandler(service *service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// ListBookings handles GET /v1/companies/{companyId}/bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := domain.BookingFilter{
		Search: query.Get("q"),
		Source: domain.BookingSource(query.Get("source")),
		Status: domain.BookingStatus(query.Get("status")),
	}
	if filter.Source != "" && !filter.Source.IsValid() {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "source must be one of: ai-call, manual, web-form")
		return
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "invalid booking status")
		return
	}

	response, err := h.service.ListBookings(ctx, companyID, actorID, filter)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateBooking handles POST /v1/companies/{companyId}/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req domain.CreateBookingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(ctx, companyID, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	w.Header().Set("Location", "/v1/companies/"+companyID+"/bookings/"+booking.ID)
	writeJSON(w, http.StatusCreated, booking)
}

// GetBooking handles GET /v1/companies/{companyId}/bookings/{bookingId}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(ctx, companyID, chi.URLParam(r, "bookingId"), actorID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
