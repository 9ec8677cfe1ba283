package domain

import (
	"database/sql/driver"
	"strings"
	"time"
)

// BookingStatus do agendamento.
type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no-show"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusScheduled, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

func (s *BookingStatus) Scan(src interface{}) error { return scanEnum(s, src, BookingStatusScheduled) }

func (s BookingStatus) Value() (driver.Value, error) { return enumValue(s) }

// BookingSource indica quem produziu o agendamento.
type BookingSource string

const (
	BookingSourceAICall  BookingSource = "ai-call"
	BookingSourceManual  BookingSource = "manual"
	BookingSourceWebForm BookingSource = "web-form"
)

func (s BookingSource) IsValid() bool {
	switch s {
	case BookingSourceAICall, BookingSourceManual, BookingSourceWebForm:
		return true
	}
	return false
}

func (s *BookingSource) Scan(src interface{}) error { return scanEnum(s, src, BookingSourceManual) }

func (s BookingSource) Value() (driver.Value, error) { return enumValue(s) }

// ConfidenceBand é apenas apresentacional; não bloqueia nada.
type ConfidenceBand string

const (
	ConfidenceHigh       ConfidenceBand = "high"
	ConfidenceMediumHigh ConfidenceBand = "medium-high"
	ConfidenceMedium     ConfidenceBand = "medium"
	ConfidenceLow        ConfidenceBand = "low"
)

// BandFor maps a confidence score: >=90 high, 75-89 medium-high, 60-74 medium, <60 low.
func BandFor(confidence int) ConfidenceBand {
	switch {
	case confidence >= 90:
		return ConfidenceHigh
	case confidence >= 75:
		return ConfidenceMediumHigh
	case confidence >= 60:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AutoBooking é uma reunião agendada por ligação de IA ou manualmente.
type AutoBooking struct {
	ID                string         `json:"id" db:"id"`
	CompanyID         string         `json:"companyId" db:"company_id"`
	LeadName          string         `json:"leadName" db:"lead_name"`
	LeadEmail         string         `json:"leadEmail" db:"lead_email"`
	LeadPhone         string         `json:"leadPhone" db:"lead_phone"`
	AgentName         string         `json:"agentName" db:"agent_name"`
	AgentID           string         `json:"agentId" db:"agent_id"`
	CallDuration      int            `json:"callDuration" db:"call_duration"`
	ScheduledDate     string         `json:"scheduledDate" db:"scheduled_date"`
	ScheduledTime     string         `json:"scheduledTime" db:"scheduled_time"`
	MeetingDuration   int            `json:"meetingDuration" db:"meeting_duration"`
	BookingConfidence int            `json:"bookingConfidence" db:"booking_confidence"`
	ConfidenceBand    ConfidenceBand `json:"confidenceBand"`
	Status            BookingStatus  `json:"status" db:"status"`
	Source            BookingSource  `json:"source" db:"source"`
	CampaignID        string         `json:"campaignId,omitempty" db:"campaign_id"`
	CampaignName      string         `json:"campaignName,omitempty" db:"campaign_name"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
}

// CreateBookingRequest DTO para agendamento (manual pelo dashboard ou ai-call pela automação).
type CreateBookingRequest struct {
	LeadName          string        `json:"leadName" validate:"required,min=1,max=255"`
	LeadEmail         string        `json:"leadEmail" validate:"required,email,max=255"`
	LeadPhone         string        `json:"leadPhone" validate:"max=50"`
	AgentName         string        `json:"agentName" validate:"max=255"`
	AgentID           string        `json:"agentId" validate:"max=255"`
	CallDuration      int           `json:"callDuration" validate:"gte=0"`
	ScheduledDate     string        `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime     string        `json:"scheduledTime" validate:"required,datetime=15:04"`
	MeetingDuration   int           `json:"meetingDuration" validate:"required,gte=5,lte=480"`
	BookingConfidence *int          `json:"bookingConfidence,omitempty" validate:"omitempty,gte=0,lte=100"`
	Source            BookingSource `json:"source" validate:"omitempty,oneof=ai-call manual web-form"`
	CampaignID        string        `json:"campaignId" validate:"max=255"`
}

func (r *CreateBookingRequest) Validate() error {
	r.LeadName = strings.TrimSpace(r.LeadName)
	r.LeadEmail = strings.TrimSpace(r.LeadEmail)
	r.LeadPhone = strings.TrimSpace(r.LeadPhone)
	return validate.Struct(r)
}

// NewBooking builds a booking from the request. Manual bookings default to
// full confidence since a human entered them.
func NewBooking(companyID string, req *CreateBookingRequest, campaignName string, now time.Time) AutoBooking {
	source := req.Source
	if source == "" {
		source = BookingSourceManual
	}
	confidence := 100
	if req.BookingConfidence != nil {
		confidence = *req.BookingConfidence
	}

	return AutoBooking{
		ID:                NewID(),
		CompanyID:         companyID,
		LeadName:          req.LeadName,
		LeadEmail:         req.LeadEmail,
		LeadPhone:         req.LeadPhone,
		AgentName:         req.AgentName,
		AgentID:           req.AgentID,
		CallDuration:      req.CallDuration,
		ScheduledDate:     req.ScheduledDate,
		ScheduledTime:     req.ScheduledTime,
		MeetingDuration:   req.MeetingDuration,
		BookingConfidence: confidence,
		ConfidenceBand:    BandFor(confidence),
		Status:            BookingStatusScheduled,
		Source:            source,
		CampaignID:        req.CampaignID,
		CampaignName:      campaignName,
		CreatedAt:         now,
	}
}

// BookingFilter: Search em lead name/email, agente e nome da campanha;
// Source e Status exatos. Vazio = curinga.
type BookingFilter struct {
	Search string
	Source BookingSource
	Status BookingStatus
}

func (f BookingFilter) Matches(b AutoBooking) bool {
	if f.Source != "" && b.Source != f.Source {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return containsFold(f.Search, b.LeadName, b.LeadEmail, b.AgentName, b.CampaignName)
}

// Apply returns matching bookings in order without modifying the input.
func (f BookingFilter) Apply(bookings []AutoBooking) []AutoBooking {
	out := make([]AutoBooking, 0, len(bookings))
	for _, b := range bookings {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	return out
}

// BookingListResponse envelope de listagem.
type BookingListResponse struct {
	Data []AutoBooking `json:"data"`
}
