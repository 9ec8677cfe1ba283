package domain

import (
	"database/sql/driver"
	"strings"
)

// LeadStatus acompanha o progresso do lead na automação da campanha.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusBooked    LeadStatus = "booked"
	LeadStatusCompleted LeadStatus = "completed"
	LeadStatusFailed    LeadStatus = "failed"
)

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
		LeadStatusBooked, LeadStatusCompleted, LeadStatusFailed:
		return true
	}
	return false
}

func (s *LeadStatus) Scan(src interface{}) error { return scanEnum(s, src, LeadStatusNew) }

func (s LeadStatus) Value() (driver.Value, error) { return enumValue(s) }

// Lead é um contato importado de CSV. Pertence a exatamente uma campanha e
// nunca é apagado, apenas filtrado.
type Lead struct {
	ID           string            `json:"id" db:"id"`
	CampaignID   string            `json:"campaignId" db:"campaign_id"`
	Name         string            `json:"name" db:"name"`
	Email        string            `json:"email" db:"email"`
	Phone        string            `json:"phone,omitempty" db:"phone"`
	Company      string            `json:"company,omitempty" db:"company"`
	Location     string            `json:"location,omitempty" db:"location"`
	Status       LeadStatus        `json:"status" db:"status"`
	CustomFields map[string]string `json:"customFields" db:"custom_fields"`
}

// LeadFilter é uma projeção pura: Search faz substring case-insensitive em
// name/email/company; Status é igualdade exata. Valores vazios são curinga.
type LeadFilter struct {
	Search string
	Status LeadStatus
}

// Matches reports whether the lead passes the filter.
func (f LeadFilter) Matches(l Lead) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return containsFold(f.Search, l.Name, l.Email, l.Company)
}

// Apply returns the leads that match, preserving order. The input is not modified.
func (f LeadFilter) Apply(leads []Lead) []Lead {
	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// UpdateLeadStatusRequest DTO usado pela automação (chamadas/e-mail) para avançar o lead.
type UpdateLeadStatusRequest struct {
	Status LeadStatus `json:"status" validate:"required,oneof=new contacted qualified booked completed failed"`
}

func (r *UpdateLeadStatusRequest) Validate() error {
	return validate.Struct(r)
}

// containsFold reports whether needle occurs in any haystack, ignoring case.
// An empty (or blank) needle matches everything.
func containsFold(needle string, haystacks ...string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
