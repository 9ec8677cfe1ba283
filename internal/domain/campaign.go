package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CampaignStatus representa o ciclo de vida da campanha.
// draft → active ⇄ paused → completed; nunca volta para draft.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusDraft, CampaignStatusActive, CampaignStatusPaused, CampaignStatusCompleted:
		return true
	}
	return false
}

func (s *CampaignStatus) Scan(src interface{}) error { return scanEnum(s, src, CampaignStatusDraft) }

func (s CampaignStatus) Value() (driver.Value, error) { return enumValue(s) }

// ErrInvalidTransition is returned when a campaign cannot move to the requested status.
var ErrInvalidTransition = errors.New("invalid campaign status transition")

// campaignTransitions: origem -> destinos permitidos.
var campaignTransitions = map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:  {CampaignStatusActive},
	CampaignStatusActive: {CampaignStatusPaused, CampaignStatusCompleted},
	CampaignStatusPaused: {CampaignStatusActive, CampaignStatusCompleted},
}

// CanTransition reports whether from → to is allowed.
func (s CampaignStatus) CanTransition(to CampaignStatus) bool {
	for _, allowed := range campaignTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates from → to, returning ErrInvalidTransition with context.
func (s CampaignStatus) Transition(to CampaignStatus) (CampaignStatus, error) {
	if !s.CanTransition(to) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
	}
	return to, nil
}

// BookingSettings configura o agendamento automático.
type BookingSettings struct {
	Enabled         bool   `json:"enabled"`
	CalendarLink    string `json:"calendarLink,omitempty" validate:"omitempty,url,max=500"`
	MeetingDuration int    `json:"meetingDuration" validate:"gte=0,lte=480"`
	BufferTime      int    `json:"bufferTime" validate:"gte=0,lte=240"`
}

// EmailSettings configura a cadência de e-mail.
type EmailSettings struct {
	Enabled   bool   `json:"enabled"`
	FromName  string `json:"fromName,omitempty" validate:"max=255"`
	FromEmail string `json:"fromEmail,omitempty" validate:"omitempty,email,max=255"`
	Subject   string `json:"subject,omitempty" validate:"max=500"`
	Template  string `json:"template,omitempty" validate:"max=20000"`
}

// CallAutomationSettings configura as ligações feitas pelo agente de voz.
type CallAutomationSettings struct {
	Enabled              bool   `json:"enabled"`
	AgentID              string `json:"agentId,omitempty" validate:"max=255"`
	MaxAttempts          int    `json:"maxAttempts" validate:"gte=0,lte=10"`
	RetryIntervalMinutes int    `json:"retryIntervalMinutes" validate:"gte=0,lte=10080"`
	CallWindowStart      string `json:"callWindowStart,omitempty" validate:"omitempty,datetime=15:04"`
	CallWindowEnd        string `json:"callWindowEnd,omitempty" validate:"omitempty,datetime=15:04"`
}

// CampaignSettings agrupa mapeamento de campos e automações.
type CampaignSettings struct {
	DataFields     []DataField            `json:"dataFields" validate:"dive"`
	Booking        BookingSettings        `json:"booking"`
	Email          EmailSettings          `json:"email"`
	CallAutomation CallAutomationSettings `json:"callAutomation"`
}

// DefaultCampaignSettings returns settings with the canonical fields unmapped.
func DefaultCampaignSettings() CampaignSettings {
	fields := make([]DataField, 0, len(CanonicalFields))
	for _, c := range CanonicalFields {
		fields = append(fields, DataField{FieldName: c.Name, Required: c.Required, Type: c.Type})
	}
	return CampaignSettings{
		DataFields: fields,
		Booking:    BookingSettings{MeetingDuration: 30, BufferTime: 15},
		CallAutomation: CallAutomationSettings{
			MaxAttempts:          3,
			RetryIntervalMinutes: 60,
			CallWindowStart:      "09:00",
			CallWindowEnd:        "17:00",
		},
	}
}

// CampaignMetrics é derivado dos leads; nunca persistido isoladamente.
type CampaignMetrics struct {
	TotalLeads   int     `json:"totalLeads"`
	Contacted    int     `json:"contacted"`
	Qualified    int     `json:"qualified"`
	Booked       int     `json:"booked"`
	Completed    int     `json:"completed"`
	Failed       int     `json:"failed"`
	ResponseRate float64 `json:"responseRate"`
	BookingRate  float64 `json:"bookingRate"`
}

// ComputeMetrics counts leads by status. Rates are percentages in [0,100]
// and zero when there are no leads.
func ComputeMetrics(leads []Lead) CampaignMetrics {
	m := CampaignMetrics{TotalLeads: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case LeadStatusContacted:
			m.Contacted++
		case LeadStatusQualified:
			m.Qualified++
		case LeadStatusBooked:
			m.Booked++
		case LeadStatusCompleted:
			m.Completed++
		case LeadStatusFailed:
			m.Failed++
		}
	}
	m.ResponseRate = rate(m.Contacted, m.TotalLeads)
	m.BookingRate = rate(m.Booked, m.TotalLeads)
	return m
}

// CountMetrics builds metrics from pre-aggregated counts (SQL GROUP BY).
func CountMetrics(byStatus map[LeadStatus]int) CampaignMetrics {
	m := CampaignMetrics{
		Contacted: byStatus[LeadStatusContacted],
		Qualified: byStatus[LeadStatusQualified],
		Booked:    byStatus[LeadStatusBooked],
		Completed: byStatus[LeadStatusCompleted],
		Failed:    byStatus[LeadStatusFailed],
	}
	for _, n := range byStatus {
		m.TotalLeads += n
	}
	m.ResponseRate = rate(m.Contacted, m.TotalLeads)
	m.BookingRate = rate(m.Booked, m.TotalLeads)
	return m
}

func rate(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part >= total {
		return 100
	}
	return float64(part) / float64(total) * 100
}

// Campaign é o agregado: dono exclusivo dos seus leads.
// Leads pode vir vazio em listagens; Metrics é sempre preenchido.
type Campaign struct {
	ID          string           `json:"id" db:"id"`
	CompanyID   string           `json:"companyId" db:"company_id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description" db:"description"`
	Status      CampaignStatus   `json:"status" db:"status"`
	Leads       []Lead           `json:"leads,omitempty"`
	Settings    CampaignSettings `json:"settings" db:"settings"`
	Metrics     CampaignMetrics  `json:"metrics"`
	CreatedBy   string           `json:"createdBy" db:"created_by"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// PreviewImportRequest é o corpo JSON de POST /campaigns/imports:preview.
type PreviewImportRequest struct {
	CSV  string `json:"csv" validate:"required"`
	Mode string `json:"mode,omitempty" validate:"omitempty,oneof=strict permissive"`
}

func (r *PreviewImportRequest) Validate() error {
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	probe := *r
	probe.CSV = strings.TrimSpace(r.CSV)
	return validate.Struct(&probe)
}

// CreateCampaignRequest DTO para criação de campanha.
//
// Leads podem vir prontos (Leads) ou como CSV bruto (CSV + CSVMode), nunca ambos.
// CompanyID vem sempre do path.
type CreateCampaignRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Settings    CampaignSettings `json:"settings"`
	Leads       []Lead           `json:"leads,omitempty" validate:"omitempty,max=50000"`
	CSV         string           `json:"csv,omitempty"`
	CSVMode     string           `json:"csvMode,omitempty" validate:"omitempty,oneof=strict permissive"`
}

// Validate sanitiza e valida o DTO (não checa o mapeamento obrigatório;
// isso é regra de negócio do service).
func (r *CreateCampaignRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	for i := range r.Settings.DataFields {
		r.Settings.DataFields[i].FieldName = strings.TrimSpace(r.Settings.DataFields[i].FieldName)
		r.Settings.DataFields[i].CSVColumn = strings.TrimSpace(r.Settings.DataFields[i].CSVColumn)
	}
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.CSV != "" && len(r.Leads) > 0 {
		return errors.New("provide either csv or leads, not both")
	}
	return nil
}

// CampaignFilter: Search em name/description (case-insensitive), Status exato.
type CampaignFilter struct {
	Search string
	Status CampaignStatus
}

func (f CampaignFilter) Matches(c Campaign) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return containsFold(f.Search, c.Name, c.Description)
}

// Apply returns matching campaigns in order without modifying the input.
func (f CampaignFilter) Apply(campaigns []Campaign) []Campaign {
	out := make([]Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// CampaignListResponse envelope de listagem.
type CampaignListResponse struct {
	Data []Campaign `json:"data"`
}

// LeadListResponse envelope de listagem de leads.
type LeadListResponse struct {
	Data    []Lead          `json:"data"`
	Metrics CampaignMetrics `json:"metrics"`
}
