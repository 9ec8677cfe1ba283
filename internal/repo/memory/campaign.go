// Package memory implementa os repositórios em memória (STORE_DRIVER=memory
// e testes). Cada store serializa acesso com um mutex e devolve cópias.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"engage-api/internal/domain"
	"engage-api/internal/repo"
)

type CampaignStore struct {
	mu        sync.RWMutex
	campaigns map[string]*domain.Campaign
	order     []string
}

func NewCampaignStore() *CampaignStore {
	return &CampaignStore{campaigns: map[string]*domain.Campaign{}}
}

func cloneLead(l domain.Lead) domain.Lead {
	l.CustomFields = maps.Clone(l.CustomFields)
	return l
}

func cloneCampaign(c *domain.Campaign, withLeads bool) domain.Campaign {
	out := *c
	out.Settings.DataFields = slices.Clone(c.Settings.DataFields)
	out.Leads = nil
	if withLeads {
		out.Leads = make([]domain.Lead, len(c.Leads))
		for i, l := range c.Leads {
			out.Leads[i] = cloneLead(l)
		}
	}
	out.Metrics = domain.ComputeMetrics(c.Leads)
	return out
}

func (s *CampaignStore) Create(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneCampaign(c, true)
	s.campaigns[c.ID] = &stored
	s.order = append(s.order, c.ID)
	return nil
}

func (s *CampaignStore) lookup(companyID, campaignID string) (*domain.Campaign, error) {
	c, ok := s.campaigns[campaignID]
	if !ok || c.CompanyID != companyID {
		return nil, repo.ErrCampaignNotFound
	}
	return c, nil
}

func (s *CampaignStore) Get(_ context.Context, companyID, campaignID string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.lookup(companyID, campaignID)
	if err != nil {
		return nil, err
	}
	out := cloneCampaign(c, true)
	return &out, nil
}

// List returns the newest campaigns first, without leads.
func (s *CampaignStore) List(_ context.Context, companyID string, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Campaign{}
	for i := len(s.order) - 1; i >= 0; i-- {
		c := s.campaigns[s.order[i]]
		if c.CompanyID == companyID && filter.Matches(*c) {
			out = append(out, cloneCampaign(c, false))
		}
	}
	return out, nil
}

func (s *CampaignStore) Transition(_ context.Context, companyID, campaignID string, to domain.CampaignStatus, now time.Time) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(companyID, campaignID)
	if err != nil {
		return nil, err
	}
	next, err := c.Status.Transition(to)
	if err != nil {
		return nil, err
	}
	c.Status = next
	c.UpdatedAt = now

	out := cloneCampaign(c, true)
	return &out, nil
}

func (s *CampaignStore) ListLeads(_ context.Context, companyID, campaignID string, filter domain.LeadFilter) ([]domain.Lead, domain.CampaignMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.lookup(companyID, campaignID)
	if err != nil {
		return nil, domain.CampaignMetrics{}, err
	}

	leads := filter.Apply(c.Leads)
	for i := range leads {
		leads[i] = cloneLead(leads[i])
	}
	return leads, domain.ComputeMetrics(c.Leads), nil
}

func (s *CampaignStore) UpdateLeadStatus(_ context.Context, companyID, campaignID, leadID string, status domain.LeadStatus, now time.Time) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.lookup(companyID, campaignID)
	if err != nil {
		return nil, err
	}
	for i := range c.Leads {
		if c.Leads[i].ID == leadID {
			c.Leads[i].Status = status
			c.UpdatedAt = now
			out := cloneLead(c.Leads[i])
			return &out, nil
		}
	}
	return nil, repo.ErrLeadNotFound
}
