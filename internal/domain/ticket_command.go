package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCommand is returned by Decide for commands that cannot apply
// to any ticket (unknown enum value, empty note).
var ErrInvalidCommand = errors.New("invalid ticket command")

// TicketCommand é uma mutação do ciclo de vida do ticket. Toda mutação bem
// sucedida produz exatamente uma HistoryEntry.
type TicketCommand interface {
	// Name identifica o comando (métricas, logs).
	Name() string
	// Key identifica ação e valor: dois comandos com a mesma Key são o mesmo pedido.
	Key() string
	isTicketCommand()
}

// UpdateStatus define o status. Sem grafo de transição.
type UpdateStatus struct {
	Status TicketStatus
}

// UpdatePriority define a prioridade.
type UpdatePriority struct {
	Priority TicketPriority
}

// UpdateAssignment atribui a um membro (e-mail); vazio desatribui.
type UpdateAssignment struct {
	Assignee string
}

// AddNote anexa uma nota.
type AddNote struct {
	Content    string
	IsInternal bool
}

func (UpdateStatus) Name() string     { return "update_status" }
func (UpdatePriority) Name() string   { return "update_priority" }
func (UpdateAssignment) Name() string { return "update_assignment" }
func (AddNote) Name() string          { return "add_note" }

func (c UpdateStatus) Key() string   { return c.Name() + ":" + string(c.Status) }
func (c UpdatePriority) Key() string { return c.Name() + ":" + string(c.Priority) }
func (c UpdateAssignment) Key() string {
	return c.Name() + ":" + strings.TrimSpace(c.Assignee)
}
func (c AddNote) Key() string {
	return fmt.Sprintf("%s:%t:%q", c.Name(), c.IsInternal, strings.TrimSpace(c.Content))
}

func (UpdateStatus) isTicketCommand()     {}
func (UpdatePriority) isTicketCommand()   {}
func (UpdateAssignment) isTicketCommand() {}
func (AddNote) isTicketCommand()          {}

// TicketPatch é o resultado de Decide: o delta a aplicar no ticket, incluindo
// a entrada de histórico. Campos nil não mudam.
type TicketPatch struct {
	TicketID   string
	Status     *TicketStatus
	Priority   *TicketPriority
	AssignedTo *string // "" = desatribuir
	Note       *Note
	History    HistoryEntry
	UpdatedAt  time.Time
}

// Decide validates cmd against the current ticket and returns the patch it
// produces. It does not modify t.
func Decide(t Ticket, cmd TicketCommand, actor string, now time.Time) (TicketPatch, error) {
	patch := TicketPatch{
		TicketID:  t.ID,
		UpdatedAt: now,
		History: HistoryEntry{
			ID:        NewID(),
			TicketID:  t.ID,
			ChangedBy: actor,
			CreatedAt: now,
		},
	}

	switch c := cmd.(type) {
	case UpdateStatus:
		if !c.Status.IsValid() {
			return TicketPatch{}, fmt.Errorf("%w: status %q", ErrInvalidCommand, c.Status)
		}
		patch.Status = &c.Status
		patch.History.Action = HistoryStatusChanged
		if c.Status == TicketStatusClosed {
			patch.History.Action = HistoryClosed
		}
		patch.History.OldValue = strPtr(string(t.Status))
		patch.History.NewValue = strPtr(string(c.Status))

	case UpdatePriority:
		if !c.Priority.IsValid() {
			return TicketPatch{}, fmt.Errorf("%w: priority %q", ErrInvalidCommand, c.Priority)
		}
		patch.Priority = &c.Priority
		patch.History.Action = HistoryPriorityChanged
		patch.History.OldValue = strPtr(string(t.Priority))
		patch.History.NewValue = strPtr(string(c.Priority))

	case UpdateAssignment:
		assignee := strings.TrimSpace(c.Assignee)
		patch.AssignedTo = &assignee
		patch.History.Action = HistoryAssigned
		patch.History.OldValue = strPtr(deref(t.AssignedTo))
		patch.History.NewValue = strPtr(assignee)

	case AddNote:
		content := strings.TrimSpace(c.Content)
		if content == "" {
			return TicketPatch{}, fmt.Errorf("%w: note content is empty", ErrInvalidCommand)
		}
		note := Note{
			ID:         NewID(),
			TicketID:   t.ID,
			Content:    content,
			CreatedBy:  actor,
			IsInternal: c.IsInternal,
			CreatedAt:  now,
		}
		patch.Note = &note
		patch.History.Action = HistoryNoteAdded
		patch.History.NewValue = strPtr(note.ID)

	default:
		return TicketPatch{}, fmt.Errorf("%w: unsupported command %T", ErrInvalidCommand, cmd)
	}

	return patch, nil
}

// Apply mutates t with the patch and appends the history entry (and note).
func (p TicketPatch) Apply(t *Ticket) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			t.AssignedTo = nil
		} else {
			v := *p.AssignedTo
			t.AssignedTo = &v
		}
	}
	if p.Note != nil {
		t.Notes = append(t.Notes, *p.Note)
	}
	t.History = append(t.History, p.History)
	t.UpdatedAt = p.UpdatedAt
}

// NewTicket builds a ticket in status new with its "created" history entry.
func NewTicket(companyID, actor string, req *CreateTicketRequest, now time.Time) Ticket {
	t := Ticket{
		ID:            NewID(),
		CompanyID:     companyID,
		Title:         req.Title,
		Description:   req.Description,
		Status:        TicketStatusNew,
		Priority:      TicketPriorityMedium,
		Source:        TicketSourceWebForm,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Tags:          append([]string{}, req.Tags...),
		Notes:         []Note{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Source != nil {
		t.Source = *req.Source
	}
	if req.AssignedTo != nil && *req.AssignedTo != "" {
		t.AssignedTo = clonePtr(req.AssignedTo)
	}
	t.History = []HistoryEntry{{
		ID:        NewID(),
		TicketID:  t.ID,
		Action:    HistoryCreated,
		NewValue:  strPtr(string(t.Status)),
		ChangedBy: actor,
		CreatedAt: now,
	}}
	return t
}

func strPtr(s string) *string {
	return &s
}
