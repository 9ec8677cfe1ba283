package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// TicketStatus não tem grafo de transição: qualquer status é alcançável de qualquer outro.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew, TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed,
}

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

func (s *TicketStatus) Scan(src interface{}) error { return scanEnum(s, src, TicketStatusNew) }

func (s TicketStatus) Value() (driver.Value, error) { return enumValue(s) }

// TicketPriority é mutável independentemente do status.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketPriorities in ascending order.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical,
}

func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

func (p *TicketPriority) Scan(src interface{}) error { return scanEnum(p, src, TicketPriorityMedium) }

func (p TicketPriority) Value() (driver.Value, error) { return enumValue(p) }

// TicketSource é o canal de origem do ticket.
type TicketSource string

const (
	TicketSourceEmail         TicketSource = "email"
	TicketSourcePhone         TicketSource = "phone"
	TicketSourceChat          TicketSource = "chat"
	TicketSourceWebForm       TicketSource = "web_form"
	TicketSourceAutoGenerated TicketSource = "auto_generated"
)

func (s TicketSource) IsValid() bool {
	switch s {
	case TicketSourceEmail, TicketSourcePhone, TicketSourceChat, TicketSourceWebForm, TicketSourceAutoGenerated:
		return true
	}
	return false
}

func (s *TicketSource) Scan(src interface{}) error { return scanEnum(s, src, TicketSourceWebForm) }

func (s TicketSource) Value() (driver.Value, error) { return enumValue(s) }

// HistoryAction tipifica as entradas do histórico.
type HistoryAction string

const (
	HistoryCreated         HistoryAction = "created"
	HistoryStatusChanged   HistoryAction = "status_changed"
	HistoryPriorityChanged HistoryAction = "priority_changed"
	HistoryAssigned        HistoryAction = "assigned"
	HistoryNoteAdded       HistoryAction = "note_added"
	HistoryClosed          HistoryAction = "closed"
)

func (a HistoryAction) IsValid() bool {
	switch a {
	case HistoryCreated, HistoryStatusChanged, HistoryPriorityChanged,
		HistoryAssigned, HistoryNoteAdded, HistoryClosed:
		return true
	}
	return false
}

func (a *HistoryAction) Scan(src interface{}) error { return scanEnum(a, src, HistoryCreated) }

func (a HistoryAction) Value() (driver.Value, error) { return enumValue(a) }

// Note é append-only: nunca editada nem removida.
type Note struct {
	ID         string    `json:"id" db:"id"`
	TicketID   string    `json:"ticket_id" db:"ticket_id"`
	Content    string    `json:"content" db:"content"`
	CreatedBy  string    `json:"created_by" db:"created_by"`
	IsInternal bool      `json:"is_internal" db:"is_internal"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// HistoryEntry registra uma mutação do ticket com valores antes/depois.
type HistoryEntry struct {
	ID        string        `json:"id" db:"id"`
	TicketID  string        `json:"ticket_id" db:"ticket_id"`
	Action    HistoryAction `json:"action" db:"action"`
	OldValue  *string       `json:"old_value,omitempty" db:"old_value"`
	NewValue  *string       `json:"new_value,omitempty" db:"new_value"`
	ChangedBy string        `json:"changed_by" db:"changed_by"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// Ticket é uma solicitação de suporte de um cliente da company.
type Ticket struct {
	ID            string         `json:"id" db:"id"`
	CompanyID     string         `json:"company_id" db:"company_id"`
	Title         string         `json:"title" db:"title"`
	Description   string         `json:"description" db:"description"`
	Status        TicketStatus   `json:"status" db:"status"`
	Priority      TicketPriority `json:"priority" db:"priority"`
	Source        TicketSource   `json:"source" db:"source"`
	CustomerID    string         `json:"customer_id" db:"customer_id"`
	CustomerName  *string        `json:"customer_name,omitempty" db:"customer_name"`
	CustomerEmail *string        `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone *string        `json:"customer_phone,omitempty" db:"customer_phone"`
	AssignedTo    *string        `json:"assigned_to,omitempty" db:"assigned_to"`
	Tags          []string       `json:"tags" db:"tags"`
	Notes         []Note         `json:"notes"`
	History       []HistoryEntry `json:"history"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without aliasing.
func (t Ticket) Clone() Ticket {
	c := t
	c.CustomerName = clonePtr(t.CustomerName)
	c.CustomerEmail = clonePtr(t.CustomerEmail)
	c.CustomerPhone = clonePtr(t.CustomerPhone)
	c.AssignedTo = clonePtr(t.AssignedTo)
	c.Tags = slices.Clone(t.Tags)
	c.Notes = slices.Clone(t.Notes)
	c.History = slices.Clone(t.History)
	for i := range c.History {
		c.History[i].OldValue = clonePtr(c.History[i].OldValue)
		c.History[i].NewValue = clonePtr(c.History[i].NewValue)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CreateTicketRequest DTO para criação de ticket.
type CreateTicketRequest struct {
	Title         string          `json:"title" validate:"required,min=1,max=500"`
	Description   string          `json:"description" validate:"max=20000"`
	Priority      *TicketPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	Source        *TicketSource   `json:"source,omitempty" validate:"omitempty,oneof=email phone chat web_form auto_generated"`
	CustomerID    string          `json:"customer_id" validate:"required,max=255"`
	CustomerName  *string         `json:"customer_name,omitempty" validate:"omitempty,max=255"`
	CustomerEmail *string         `json:"customer_email,omitempty" validate:"omitempty,email,max=255"`
	CustomerPhone *string         `json:"customer_phone,omitempty" validate:"omitempty,max=50"`
	AssignedTo    *string         `json:"assigned_to,omitempty" validate:"omitempty,email,max=255"`
	Tags          []string        `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

func (r *CreateTicketRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.CustomerID = strings.TrimSpace(r.CustomerID)
	r.AssignedTo = trimOptional(r.AssignedTo)
	r.CustomerEmail = trimOptional(r.CustomerEmail)
	return validate.Struct(r)
}

// UpdateTicketRequest PATCH parcial. Cada campo presente vira um comando
// (e uma entrada de histórico). assigned_to = "" desatribui.
type UpdateTicketRequest struct {
	Status     *TicketStatus   `json:"status,omitempty" validate:"omitempty,oneof=new open in_progress resolved closed"`
	Priority   *TicketPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	AssignedTo *string         `json:"assigned_to,omitempty" validate:"omitempty,max=255"`
}

func (r *UpdateTicketRequest) Validate() error {
	if r.AssignedTo != nil {
		trimmed := strings.TrimSpace(*r.AssignedTo)
		r.AssignedTo = &trimmed
	}
	return validate.Struct(r)
}

// IsEmpty reports whether the request changes nothing.
func (r *UpdateTicketRequest) IsEmpty() bool {
	return r.Status == nil && r.Priority == nil && r.AssignedTo == nil
}

// Commands converts the PATCH into commands in a fixed order
// (status, priority, assignment).
func (r *UpdateTicketRequest) Commands() []TicketCommand {
	var cmds []TicketCommand
	if r.Status != nil {
		cmds = append(cmds, UpdateStatus{Status: *r.Status})
	}
	if r.Priority != nil {
		cmds = append(cmds, UpdatePriority{Priority: *r.Priority})
	}
	if r.AssignedTo != nil {
		cmds = append(cmds, UpdateAssignment{Assignee: *r.AssignedTo})
	}
	return cmds
}

// AddNoteRequest DTO para nova nota.
type AddNoteRequest struct {
	Content    string `json:"content" validate:"required,min=1,max=20000"`
	IsInternal bool   `json:"is_internal"`
}

func (r *AddNoteRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	return validate.Struct(r)
}

// ListTicketsParams parâmetros de listagem (CompanyID obrigatório).
type ListTicketsParams struct {
	CompanyID  string
	Status     *TicketStatus
	Priority   *TicketPriority
	Source     *TicketSource
	AssignedTo *string
	Query      *string

	Limit  int
	Cursor *string // TicketCursor.String()
}

// ErrInvalidCursor is returned for a cursor that ParseTicketCursor rejects.
var ErrInvalidCursor = errors.New("invalid cursor")

// TicketCursor é a posição na listagem, ordenada por (created_at, id) decrescentes.
// O id desempata tickets criados no mesmo instante.
type TicketCursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorAfter returns the cursor pointing just past t.
func CursorAfter(t Ticket) TicketCursor {
	return TicketCursor{CreatedAt: t.CreatedAt, ID: t.ID}
}

func (c TicketCursor) String() string {
	return c.CreatedAt.UTC().Format(time.RFC3339Nano) + "_" + c.ID
}

// Precedes reports whether t comes after the cursor position in list order.
func (c TicketCursor) Precedes(t Ticket) bool {
	if t.CreatedAt.Equal(c.CreatedAt) {
		return c.ID != "" && t.ID < c.ID
	}
	return t.CreatedAt.Before(c.CreatedAt)
}

// ParseTicketCursor accepts "<RFC3339Nano>_<id>" and, for older clients, a bare
// RFC3339Nano timestamp (no tie-break).
func ParseTicketCursor(raw string) (TicketCursor, error) {
	ts, id, _ := strings.Cut(strings.TrimSpace(raw), "_")
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return TicketCursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if id != "" && !IsValidID(id) {
		return TicketCursor{}, fmt.Errorf("%w: bad id", ErrInvalidCursor)
	}
	return TicketCursor{CreatedAt: at, ID: id}, nil
}

// Normalize aplica defaults (limit 50, máx 100) e limpa busca vazia.
func (p *ListTicketsParams) Normalize() {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 50
	}
	p.Query = trimOptional(p.Query)
	if p.Query != nil && *p.Query == "" {
		p.Query = nil
	}
}

// Matches applies the filters in memory (used by the in-memory store).
func (p ListTicketsParams) Matches(t Ticket) bool {
	if t.CompanyID != p.CompanyID {
		return false
	}
	if p.Status != nil && t.Status != *p.Status {
		return false
	}
	if p.Priority != nil && t.Priority != *p.Priority {
		return false
	}
	if p.Source != nil && t.Source != *p.Source {
		return false
	}
	if p.AssignedTo != nil && (t.AssignedTo == nil || !strings.EqualFold(*t.AssignedTo, *p.AssignedTo)) {
		return false
	}
	if p.Query != nil {
		return containsFold(*p.Query, t.Title, t.Description, deref(t.CustomerName), deref(t.CustomerEmail))
	}
	return true
}

// TicketListResponse resposta paginada. Itens da lista não carregam notes/history.
type TicketListResponse struct {
	Data []Ticket `json:"data"`
	Meta struct {
		HasNextPage bool    `json:"hasNextPage"`
		NextCursor  *string `json:"nextCursor,omitempty"`
	} `json:"meta"`
}

// TicketStats são contadores calculados pelo store, nunca pelo caminho de mutação.
type TicketStats struct {
	Total      int                    `json:"total"`
	ByStatus   map[TicketStatus]int   `json:"by_status"`
	ByPriority map[TicketPriority]int `json:"by_priority"`
	Unassigned int                    `json:"unassigned"`
}

// NewTicketStats returns stats with every status and priority present at zero.
func NewTicketStats() TicketStats {
	s := TicketStats{
		ByStatus:   make(map[TicketStatus]int, len(TicketStatuses)),
		ByPriority: make(map[TicketPriority]int, len(TicketPriorities)),
	}
	for _, st := range TicketStatuses {
		s.ByStatus[st] = 0
	}
	for _, p := range TicketPriorities {
		s.ByPriority[p] = 0
	}
	return s
}

// Add counts one ticket.
func (s *TicketStats) Add(t Ticket) {
	s.Total++
	s.ByStatus[t.Status]++
	s.ByPriority[t.Priority]++
	if t.AssignedTo == nil || *t.AssignedTo == "" {
		s.Unassigned++
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
