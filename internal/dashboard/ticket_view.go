package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"engage-api/internal/domain"
	"engage-api/internal/observability/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Result é o retorno de Dispatch. Err != nil significa que o estado local não mudou.
type Result struct {
	Patch domain.TicketPatch
	Err   error
}

// TicketView guarda o último estado conhecido do ticket aberto no painel.
type TicketView struct {
	backend   TicketBackend
	companyID string
	actor     string

	mu           sync.RWMutex
	ticket       domain.Ticket
	notification error

	inflight singleflight.Group
	now      func() time.Time
}

// NewTicketView wraps an already loaded ticket.
func NewTicketView(backend TicketBackend, ticket domain.Ticket, actor string) *TicketView {
	return &TicketView{
		backend:   backend,
		companyID: ticket.CompanyID,
		actor:     actor,
		ticket:    ticket.Clone(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// OpenTicket loads the ticket details and returns a view over them.
func OpenTicket(ctx context.Context, backend TicketBackend, companyID, ticketID, actor string) (*TicketView, error) {
	ticket, err := backend.GetTicketDetails(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket details: %w", err)
	}
	return NewTicketView(backend, *ticket, actor), nil
}

// Ticket returns a copy of the current state.
func (v *TicketView) Ticket() domain.Ticket {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ticket.Clone()
}

// Notification é o último erro remoto (toast transitório). Limpo no próximo sucesso.
func (v *TicketView) Notification() error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.notification
}

func (v *TicketView) DismissNotification() {
	v.mu.Lock()
	v.notification = nil
	v.mu.Unlock()
}

// Dispatch valida o comando localmente, envia ao backend e só então aplica o
// patch. Chamadas concorrentes com o mesmo comando (ação e valor) compartilham a
// requisição em voo; valores diferentes seguem cada um para o backend.
func (v *TicketView) Dispatch(ctx context.Context, cmd domain.TicketCommand) Result {
	if _, err := domain.Decide(v.Ticket(), cmd, v.actor, v.now()); err != nil {
		return Result{Err: err}
	}

	out, err, _ := v.inflight.Do(cmd.Key(), func() (interface{}, error) {
		return v.send(ctx, cmd)
	})
	if err != nil {
		v.mu.Lock()
		v.notification = err
		v.mu.Unlock()

		logger.GetLogger(ctx).Warn(ctx, "ticket action failed, keeping last known state",
			logger.Module("dashboard"),
			logger.Action(cmd.Name()),
			zap.String("ticket_id", v.ticketID()),
			zap.Error(err),
		)
		return Result{Err: err}
	}
	return Result{Patch: out.(domain.TicketPatch)}
}

func (v *TicketView) ticketID() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ticket.ID
}

// send faz a chamada remota e aplica o patch sobre o estado atual.
func (v *TicketView) send(ctx context.Context, cmd domain.TicketCommand) (domain.TicketPatch, error) {
	ticketID := v.ticketID()

	var serverNote *domain.Note
	var err error
	switch c := cmd.(type) {
	case domain.UpdateStatus:
		_, err = v.backend.UpdateTicket(ctx, v.companyID, ticketID, &domain.UpdateTicketRequest{Status: &c.Status})
	case domain.UpdatePriority:
		_, err = v.backend.UpdateTicket(ctx, v.companyID, ticketID, &domain.UpdateTicketRequest{Priority: &c.Priority})
	case domain.UpdateAssignment:
		_, err = v.backend.UpdateTicket(ctx, v.companyID, ticketID, &domain.UpdateTicketRequest{AssignedTo: &c.Assignee})
	case domain.AddNote:
		serverNote, err = v.backend.AddNote(ctx, v.companyID, ticketID, &domain.AddNoteRequest{Content: c.Content, IsInternal: c.IsInternal})
	default:
		return domain.TicketPatch{}, fmt.Errorf("%w: unsupported command %T", domain.ErrInvalidCommand, cmd)
	}
	if err != nil {
		return domain.TicketPatch{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// decide de novo sobre o estado atual: outra ação pode ter sido aplicada enquanto esta estava em voo
	patch, err := domain.Decide(v.ticket, cmd, v.actor, v.now())
	if err != nil {
		return domain.TicketPatch{}, err
	}
	if serverNote != nil {
		patch.Note = serverNote
		patch.History.NewValue = &serverNote.ID
	}
	patch.Apply(&v.ticket)
	v.notification = nil
	return patch, nil
}

// Refresh replaces local state with the server's view.
func (v *TicketView) Refresh(ctx context.Context) error {
	ticket, err := v.backend.GetTicketDetails(ctx, v.companyID, v.ticketID())
	if err != nil {
		v.mu.Lock()
		v.notification = err
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	v.ticket = ticket.Clone()
	v.mu.Unlock()
	return nil
}
