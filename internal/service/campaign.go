package service

import (
	"context"
	"fmt"
	"maps"

	"engage-api/internal/domain"
	"engage-api/internal/leadimport"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"
	"engage-api/internal/telemetry"

	"go.uber.org/zap"
)

type CampaignService struct {
	campaigns repo.CampaignStore
	audit     repo.AuditLogger
	authz     authorizer
	counters  *telemetry.DomainCounters
	csvMode   leadimport.Mode
	log       *logger.Logger
	now       clock
}

// NewCampaignService. csvMode é o modo usado quando a requisição não informa um.
func NewCampaignService(
	campaigns repo.CampaignStore,
	members repo.MemberStore,
	audit repo.AuditLogger,
	counters *telemetry.DomainCounters,
	csvMode leadimport.Mode,
	log *logger.Logger,
) *CampaignService {
	if !csvMode.IsValid() {
		csvMode = leadimport.ModePermissive
	}
	return &CampaignService{
		campaigns: campaigns,
		audit:     audit,
		authz:     authorizer{members: members, log: log, module: "campaign"},
		counters:  counters,
		csvMode:   csvMode,
		log:       log,
		now:       utcNow,
	}
}

// CreateCampaign creates a draft campaign. Leads come either ready-made or
// from raw CSV; in both cases every required field must be mapped.
// Permission: company_admin, company_manager.
func (s *CampaignService) CreateCampaign(ctx context.Context, companyID, actorID string, req *domain.CreateCampaignRequest) (*domain.Campaign, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanManageCampaigns); err != nil {
		return nil, err
	}

	now := s.now()
	campaign := &domain.Campaign{
		ID:          domain.NewID(),
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.CampaignStatusDraft,
		Settings:    req.Settings,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Normaliza o mapeamento: campos canônicos sempre presentes com flags fixas.
	mapper := leadimport.NewMapperFrom(req.Settings.DataFields)
	campaign.Settings.DataFields = mapper.Fields()

	mode := leadimport.Mode("")
	if req.CSV != "" {
		var err error
		mode, err = leadimport.ParseMode(req.CSVMode, s.csvMode)
		if err != nil {
			return nil, err
		}
		table, err := leadimport.Parse(req.CSV, mode)
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if err := mapper.Validate(table.Headers); err != nil {
			return nil, err
		}
		campaign.Leads = leadimport.Materialize(campaign.ID, table.Rows, campaign.Settings.DataFields)
	} else {
		if err := mapper.Validate(nil); err != nil {
			return nil, err
		}
		campaign.Leads = adoptLeads(campaign.ID, req.Leads)
	}

	campaign.Metrics = domain.ComputeMetrics(campaign.Leads)

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	s.counters.AddLeadsImported(ctx, len(campaign.Leads), string(mode))
	s.log.Info(ctx, "campaign created",
		logger.Module("campaign"),
		logger.Action("create"),
		zap.String("campaign_id", campaign.ID),
		zap.Int("lead_count", len(campaign.Leads)),
		zap.String("csv_mode", string(mode)),
	)
	logAudit(ctx, s.audit, s.log, "campaign", companyID, actorID, "create", "campaign", campaign.ID,
		map[string]interface{}{"lead_count": len(campaign.Leads)})

	return campaign, nil
}

// adoptLeads copia leads enviados prontos, com id novo e status new quando ausente.
func adoptLeads(campaignID string, in []domain.Lead) []domain.Lead {
	out := make([]domain.Lead, 0, len(in))
	for _, l := range in {
		l.ID = domain.NewID()
		l.CampaignID = campaignID
		if !l.Status.IsValid() {
			l.Status = domain.LeadStatusNew
		}
		l.CustomFields = maps.Clone(l.CustomFields)
		if l.CustomFields == nil {
			l.CustomFields = map[string]string{}
		}
		out = append(out, l)
	}
	return out
}

// StartCampaign: draft|paused → active.
func (s *CampaignService) StartCampaign(ctx context.Context, companyID, campaignID, actorID string) (*domain.Campaign, error) {
	return s.transition(ctx, companyID, campaignID, actorID, domain.CampaignStatusActive)
}

// PauseCampaign: active → paused.
func (s *CampaignService) PauseCampaign(ctx context.Context, companyID, campaignID, actorID string) (*domain.Campaign, error) {
	return s.transition(ctx, companyID, campaignID, actorID, domain.CampaignStatusPaused)
}

// CompleteCampaign: active|paused → completed (terminal).
func (s *CampaignService) CompleteCampaign(ctx context.Context, companyID, campaignID, actorID string) (*domain.Campaign, error) {
	return s.transition(ctx, companyID, campaignID, actorID, domain.CampaignStatusCompleted)
}

func (s *CampaignService) transition(ctx context.Context, companyID, campaignID, actorID string, to domain.CampaignStatus) (*domain.Campaign, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanManageCampaigns); err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.Transition(ctx, companyID, campaignID, to, s.now())
	if err != nil {
		return nil, fmt.Errorf("transition campaign: %w", err)
	}

	s.counters.AddCampaignTransition(ctx, string(to))
	s.log.Info(ctx, "campaign status changed",
		logger.Module("campaign"),
		logger.Action("transition"),
		zap.String("campaign_id", campaignID),
		zap.String("status", string(to)),
	)
	logAudit(ctx, s.audit, s.log, "campaign", companyID, actorID, "transition", "campaign", campaignID,
		map[string]interface{}{"to": string(to)})

	return campaign, nil
}

// GetCampaign returns the campaign with its leads. Permission: any member.
func (s *CampaignService) GetCampaign(ctx context.Context, companyID, campaignID, actorID string) (*domain.Campaign, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.Get(ctx, companyID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// ListCampaigns lists campaigns without leads; metrics are filled.
func (s *CampaignService) ListCampaigns(ctx context.Context, companyID, actorID string, filter domain.CampaignFilter) (*domain.CampaignListResponse, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	campaigns, err := s.campaigns.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	if campaigns == nil {
		campaigns = []domain.Campaign{}
	}
	return &domain.CampaignListResponse{Data: campaigns}, nil
}

// ListLeads filtra os leads da campanha; metrics é sempre da campanha inteira.
func (s *CampaignService) ListLeads(ctx context.Context, companyID, campaignID, actorID string, filter domain.LeadFilter) (*domain.LeadListResponse, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanView); err != nil {
		return nil, err
	}

	leads, metrics, err := s.campaigns.ListLeads(ctx, companyID, campaignID, filter)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	return &domain.LeadListResponse{Data: leads, Metrics: metrics}, nil
}

// UpdateLeadStatus é o gancho da automação (ligações, e-mail) para avançar o lead.
func (s *CampaignService) UpdateLeadStatus(ctx context.Context, companyID, campaignID, leadID, actorID string, status domain.LeadStatus) (*domain.Lead, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanManageCampaigns); err != nil {
		return nil, err
	}

	lead, err := s.campaigns.UpdateLeadStatus(ctx, companyID, campaignID, leadID, status, s.now())
	if err != nil {
		return nil, fmt.Errorf("update lead status: %w", err)
	}

	logAudit(ctx, s.audit, s.log, "campaign", companyID, actorID, "update_lead_status", "lead", leadID,
		map[string]interface{}{"campaign_id": campaignID, "status": string(status)})
	return lead, nil
}

// PreviewImport parses the CSV and suggests a mapping. Nothing is persisted.
func (s *CampaignService) PreviewImport(ctx context.Context, companyID, actorID, csvText, rawMode string) (*leadimport.Preview, error) {
	if err := s.authz.require(ctx, actorID, companyID, domain.CanManageCampaigns); err != nil {
		return nil, err
	}

	mode, err := leadimport.ParseMode(rawMode, s.csvMode)
	if err != nil {
		return nil, err
	}

	preview, err := leadimport.BuildPreview(csvText, mode)
	if err != nil {
		return nil, fmt.Errorf("preview csv: %w", err)
	}

	s.log.Debug(ctx, "csv preview built",
		logger.Module("campaign"),
		logger.Action("preview_import"),
		zap.String("csv_mode", string(mode)),
		zap.Int("row_count", preview.RowCount),
		zap.Int("missing_required", len(preview.MissingRequired)),
	)
	return preview, nil
}
