package service

import (
	"context"
	"fmt"

	"engage-api/internal/domain"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"

	"go.uber.org/zap"
)

type BookingService struct {
	bookings  repo.BookingStore
	campaigns repo.CampaignStore
	audit     repo.AuditLogger
	authz     authorizer
	log       *logger.Logger
	now       clock
}

func NewBookingService(bookings repo.BookingStore, campaigns repo.CampaignStore, members repo.MemberStore, audit repo.AuditLogger, log *logger.Logger) *BookingService {
	return &BookingService{
		bookings:  bookings,
		campaigns: campaigns,
		audit:     audit,
		authz:     authorizer{members: members, log: log, module: "booking"},
		log:       log,
		now:       utcNow,
	}
}

// CreateBooking registra um agendamento manual (dashboard) ou da ligação de IA
// (automação, s2s). Quando campaignId vem preenchido a campanha precisa existir
// na company; o nome é copiado para exibição.
func (s *BookingService) CreateBooking(ctx context.Context, companyID, actorID string, req *domain.CreateBookingRequest) (*domain.AutoBooking, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanManageBookings); err != nil {
		return nil, err
	}

	campaignName := ""
	if req.CampaignID != "" {
		campaign, err := s.campaigns.Get(ctx, companyID, req.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("get booking campaign: %w", err)
		}
		campaignName = campaign.Name
	}

	booking := domain.NewBooking(companyID, req, campaignName, s.now())
	if err := s.bookings.Create(ctx, &booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info(ctx, "booking created",
		logger.Module("booking"),
		logger.Action("create"),
		zap.String("booking_id", booking.ID),
		zap.String("source", string(booking.Source)),
		zap.String("confidence_band", string(booking.ConfidenceBand)),
	)
	logAudit(ctx, s.audit, s.log, "booking", companyID, actorID, "create", "booking", booking.ID, nil)

	return &booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, companyID, bookingID, actorID string) (*domain.AutoBooking, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	booking, err := s.bookings.Get(ctx, companyID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context, companyID, actorID string, filter domain.BookingFilter) (*domain.BookingListResponse, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	bookings, err := s.bookings.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []domain.AutoBooking{}
	}
	return &domain.BookingListResponse{Data: bookings}, nil
}
