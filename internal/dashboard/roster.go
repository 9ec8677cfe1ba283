package dashboard

import (
	"context"
	"sync"

	"engage-api/internal/domain"
	"engage-api/internal/observability/logger"

	"go.uber.org/zap"
)

// RosterState: exatamente um por vez.
type RosterState string

const (
	RosterLoading RosterState = "loading"
	RosterReady   RosterState = "ready"
	RosterEmpty   RosterState = "empty"
	RosterError   RosterState = "error"
)

// TeamRoster carrega os membros atribuíveis da company. Em erro a lista fica
// vazia e Err() é não-nil, o que distingue "falhou" de "não há membros".
type TeamRoster struct {
	backend   TicketBackend
	companyID string

	mu      sync.RWMutex
	state   RosterState
	members []domain.TeamMember
	err     error
}

func NewTeamRoster(backend TicketBackend, companyID string) *TeamRoster {
	return &TeamRoster{
		backend:   backend,
		companyID: companyID,
		state:     RosterLoading,
		members:   []domain.TeamMember{},
	}
}

// Load fetches the roster and returns the resulting state.
func (r *TeamRoster) Load(ctx context.Context) RosterState {
	r.mu.Lock()
	r.state = RosterLoading
	r.err = nil
	r.mu.Unlock()

	members, err := r.backend.GetTeamMembers(ctx, r.companyID)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err != nil:
		logger.GetLogger(ctx).Warn(ctx, "failed to load team members",
			logger.Module("dashboard"),
			logger.Action("load_roster"),
			zap.String("company_id", r.companyID),
			zap.Error(err),
		)
		r.state = RosterError
		r.err = err
		r.members = []domain.TeamMember{}
	case len(members) == 0:
		r.state = RosterEmpty
		r.members = []domain.TeamMember{}
	default:
		r.state = RosterReady
		r.members = append([]domain.TeamMember(nil), members...)
	}
	return r.state
}

// Retry re-runs Load, typically after RosterError.
func (r *TeamRoster) Retry(ctx context.Context) RosterState {
	return r.Load(ctx)
}

func (r *TeamRoster) State() RosterState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Members returns a copy; never nil.
func (r *TeamRoster) Members() []domain.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.TeamMember{}, r.members...)
}

func (r *TeamRoster) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}
