package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"engage-api/internal/domain"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"
	"engage-api/internal/telemetry"

	"go.uber.org/zap"
)

type TicketService struct {
	tickets  repo.TicketStore
	members  repo.MemberStore
	audit    repo.AuditLogger
	authz    authorizer
	counters *telemetry.DomainCounters
	log      *logger.Logger
	now      clock
}

func NewTicketService(
	tickets repo.TicketStore,
	members repo.MemberStore,
	audit repo.AuditLogger,
	counters *telemetry.DomainCounters,
	log *logger.Logger,
) *TicketService {
	return &TicketService{
		tickets:  tickets,
		members:  members,
		audit:    audit,
		authz:    authorizer{members: members, log: log, module: "ticket"},
		counters: counters,
		log:      log,
		now:      utcNow,
	}
}

// validateAssignee garante que o e-mail pertence a um membro atribuível da company.
func (s *TicketService) validateAssignee(ctx context.Context, companyID, email string) error {
	member, err := s.members.GetMemberByEmail(ctx, companyID, email)
	if err != nil {
		if errors.Is(err, repo.ErrMemberNotFound) {
			return ErrInvalidAssignee
		}
		return fmt.Errorf("lookup assignee: %w", err)
	}
	if !domain.IsAssignable(member.Role) {
		return ErrInvalidAssignee
	}
	return nil
}

// CreateTicket opens a ticket in status new with a "created" history entry.
// Permission: admin, manager, agent.
func (s *TicketService) CreateTicket(ctx context.Context, companyID, actorID string, req *domain.CreateTicketRequest) (*domain.Ticket, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanWorkTickets); err != nil {
		return nil, err
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		if err := s.validateAssignee(ctx, companyID, *req.AssignedTo); err != nil {
			return nil, err
		}
	}

	ticket := domain.NewTicket(companyID, actorID, req, s.now())
	if err := s.tickets.Create(ctx, &ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	s.log.Info(ctx, "ticket created",
		logger.Module("ticket"),
		logger.Action("create"),
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(ticket.Priority)),
		zap.String("source", string(ticket.Source)),
	)
	logAudit(ctx, s.audit, s.log, "ticket", companyID, actorID, "create", "ticket", ticket.ID, nil)

	return &ticket, nil
}

// GetTicket returns the ticket with notes and history. Permission: any member.
func (s *TicketService) GetTicket(ctx context.Context, companyID, ticketID, actorID string) (*domain.Ticket, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.Get(ctx, companyID, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return ticket, nil
}

// ListTickets retorna uma página de tickets (sem notes/history).
func (s *TicketService) ListTickets(ctx context.Context, companyID, actorID string, params domain.ListTicketsParams) (*domain.TicketListResponse, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	params.CompanyID = companyID
	params.Normalize()

	tickets, nextCursor, err := s.tickets.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	response := &domain.TicketListResponse{Data: tickets}
	response.Meta.HasNextPage = nextCursor != ""
	if nextCursor != "" {
		response.Meta.NextCursor = &nextCursor
	}
	return response, nil
}

// GetStats returns the server-side counters.
func (s *TicketService) GetStats(ctx context.Context, companyID, actorID string) (*domain.TicketStats, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	stats, err := s.tickets.Stats(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("ticket stats: %w", err)
	}
	return stats, nil
}

// UpdateTicket converte o PATCH em comandos (status, priority, assignment) e
// aplica todos numa única operação: uma entrada de histórico por campo.
func (s *TicketService) UpdateTicket(ctx context.Context, companyID, ticketID, actorID string, req *domain.UpdateTicketRequest) (*domain.Ticket, error) {
	if req.IsEmpty() {
		return nil, ErrNoChanges
	}
	return s.Dispatch(ctx, companyID, ticketID, actorID, req.Commands()...)
}

// AddNote appends a note and returns it.
func (s *TicketService) AddNote(ctx context.Context, companyID, ticketID, actorID string, req *domain.AddNoteRequest) (*domain.Note, error) {
	ticket, err := s.Dispatch(ctx, companyID, ticketID, actorID, domain.AddNote{Content: req.Content, IsInternal: req.IsInternal})
	if err != nil {
		return nil, err
	}
	note := ticket.Notes[len(ticket.Notes)-1]
	return &note, nil
}

// Dispatch applies commands atomically: all succeed or the ticket is unchanged.
// Permission: admin, manager, agent.
func (s *TicketService) Dispatch(ctx context.Context, companyID, ticketID, actorID string, cmds ...domain.TicketCommand) (*domain.Ticket, error) {
	if len(cmds) == 0 {
		return nil, ErrNoChanges
	}
	if err := s.authz.require(ctx, actorID, companyID, domain.CanWorkTickets); err != nil {
		return nil, err
	}

	for _, cmd := range cmds {
		if a, ok := cmd.(domain.UpdateAssignment); ok && strings.TrimSpace(a.Assignee) != "" {
			if err := s.validateAssignee(ctx, companyID, strings.TrimSpace(a.Assignee)); err != nil {
				return nil, err
			}
		}
	}

	ticket, err := s.tickets.Mutate(ctx, companyID, ticketID, actorID, cmds, s.now())
	for _, cmd := range cmds {
		s.counters.AddTicketMutation(ctx, cmd.Name(), err == nil)
	}
	if err != nil {
		s.log.Warn(ctx, "ticket mutation rejected",
			logger.Module("ticket"),
			logger.Action("dispatch"),
			zap.String("ticket_id", ticketID),
			zap.Int("commands", len(cmds)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("mutate ticket: %w", err)
	}

	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.Name())
	}
	s.log.Info(ctx, "ticket updated",
		logger.Module("ticket"),
		logger.Action("dispatch"),
		zap.String("ticket_id", ticketID),
		zap.Strings("commands", names),
		zap.String("status", string(ticket.Status)),
	)
	logAudit(ctx, s.audit, s.log, "ticket", companyID, actorID, "update", "ticket", ticketID,
		map[string]interface{}{"commands": names})

	return ticket, nil
}

// TeamMembers returns the roster of the company, ordered by name.
// Permission: any member.
func (s *TicketService) TeamMembers(ctx context.Context, companyID, actorID string) (*domain.TeamMembersResponse, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	members, err := s.members.ListMembers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	out := make([]domain.TeamMember, 0, len(members))
	for _, m := range members {
		out = append(out, m.ToTeamMember())
	}
	return &domain.TeamMembersResponse{Data: out}, nil
}
