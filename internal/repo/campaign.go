package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engage-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found in company")
	ErrLeadNotFound     = errors.New("lead not found in campaign")
)

type CampaignRepository struct {
	pool *pgxpool.Pool
}

func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `id, company_id, name, description, status, settings::text, created_by, created_at, updated_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	var settings []byte
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.Status,
		&settings, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := fromJSON(settings, &c.Settings); err != nil {
		return nil, fmt.Errorf("decode campaign settings: %w", err)
	}
	return &c, nil
}

// Create inserts the campaign and all its leads in one transaction.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	settings, err := toJSON(c.Settings)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		INSERT INTO campaigns (id, company_id, name, description, status, settings, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		c.ID, c.CompanyID, c.Name, c.Description, c.Status,
		settings, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	if err := insertLeads(ctx, tx, c.CompanyID, c.Leads, c.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit campaign: %w", err)
	}
	return nil
}

// insertLeads usa um pgx.Batch: um round-trip para todas as linhas.
func insertLeads(ctx context.Context, tx pgx.Tx, companyID string, leads []domain.Lead, now time.Time) error {
	if len(leads) == 0 {
		return nil
	}

	query := `
		INSERT INTO leads (id, campaign_id, company_id, position, name, email, phone, company, location, status, custom_fields, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)
	`

	batch := &pgx.Batch{}
	for i, l := range leads {
		custom, err := toJSON(l.CustomFields)
		if err != nil {
			return err
		}
		batch.Queue(query,
			l.ID, l.CampaignID, companyID, i, l.Name, l.Email, l.Phone,
			l.Company, l.Location, l.Status, custom, now,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range leads {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert lead: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close lead batch: %w", err)
	}
	return nil
}

// Get loads the campaign with its leads; metrics are derived from them.
func (r *CampaignRepository) Get(ctx context.Context, companyID, campaignID string) (*domain.Campaign, error) {
	if !domain.IsValidID(campaignID) {
		return nil, ErrCampaignNotFound
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 AND company_id = $2`
	c, err := scanCampaign(r.pool.QueryRow(ctx, query, campaignID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("query campaign: %w", err)
	}

	c.Leads, err = listLeads(ctx, r.pool, campaignID)
	if err != nil {
		return nil, err
	}
	c.Metrics = domain.ComputeMetrics(c.Leads)
	return c, nil
}

// List returns campaigns without leads; metrics come from a GROUP BY.
func (r *CampaignRepository) List(ctx context.Context, companyID string, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []domain.Campaign{}
	index := map[string]int{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		index[c.ID] = len(campaigns)
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}
	if len(campaigns) == 0 {
		return campaigns, nil
	}

	counts, err := r.countLeads(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for id, byStatus := range counts {
		if i, ok := index[id]; ok {
			campaigns[i].Metrics = domain.CountMetrics(byStatus)
		}
	}
	return campaigns, nil
}

func (r *CampaignRepository) countLeads(ctx context.Context, companyID string) (map[string]map[domain.LeadStatus]int, error) {
	query := `
		SELECT campaign_id::text, status, COUNT(*)
		FROM leads
		WHERE company_id = $1
		GROUP BY campaign_id, status
	`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	defer rows.Close()

	out := map[string]map[domain.LeadStatus]int{}
	for rows.Next() {
		var campaignID string
		var status domain.LeadStatus
		var n int
		if err := rows.Scan(&campaignID, &status, &n); err != nil {
			return nil, fmt.Errorf("scan lead count: %w", err)
		}
		if out[campaignID] == nil {
			out[campaignID] = map[domain.LeadStatus]int{}
		}
		out[campaignID][status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead counts: %w", err)
	}
	return out, nil
}

// Transition moves the campaign to status `to` under a row lock, so two
// concurrent start/pause calls cannot both pass the transition check.
func (r *CampaignRepository) Transition(ctx context.Context, companyID, campaignID string, to domain.CampaignStatus, now time.Time) (*domain.Campaign, error) {
	if !domain.IsValidID(campaignID) {
		return nil, ErrCampaignNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 AND company_id = $2 FOR UPDATE`
	c, err := scanCampaign(tx.QueryRow(ctx, query, campaignID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("lock campaign: %w", err)
	}

	next, err := c.Status.Transition(to)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3`, next, now, campaignID)
	if err != nil {
		return nil, fmt.Errorf("update campaign status: %w", err)
	}

	c.Leads, err = listLeads(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit campaign status: %w", err)
	}

	c.Status = next
	c.UpdatedAt = now
	c.Metrics = domain.ComputeMetrics(c.Leads)
	return c, nil
}

// ListLeads returns the filtered leads and the metrics of the whole campaign.
func (r *CampaignRepository) ListLeads(ctx context.Context, companyID, campaignID string, filter domain.LeadFilter) ([]domain.Lead, domain.CampaignMetrics, error) {
	c, err := r.Get(ctx, companyID, campaignID)
	if err != nil {
		return nil, domain.CampaignMetrics{}, err
	}
	return filter.Apply(c.Leads), c.Metrics, nil
}

// UpdateLeadStatus sets a lead's status within a campaign of the company.
func (r *CampaignRepository) UpdateLeadStatus(ctx context.Context, companyID, campaignID, leadID string, status domain.LeadStatus, now time.Time) (*domain.Lead, error) {
	if !domain.IsValidID(campaignID) {
		return nil, ErrCampaignNotFound
	}
	if !domain.IsValidID(leadID) {
		return nil, ErrLeadNotFound
	}

	query := `
		UPDATE leads SET status = $1, updated_at = $2
		WHERE id = $3 AND campaign_id = $4 AND company_id = $5
		RETURNING ` + leadColumns

	l, err := scanLead(r.pool.QueryRow(ctx, query, status, now, leadID, campaignID, companyID))
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update lead status: %w", err)
	}

	// distingue campanha inexistente de lead inexistente
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $1 AND company_id = $2)`,
		campaignID, companyID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check campaign: %w", err)
	}
	if !exists {
		return nil, ErrCampaignNotFound
	}
	return nil, ErrLeadNotFound
}

const leadColumns = `id, campaign_id, name, email, phone, company, location, status, custom_fields::text`

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	var custom []byte
	if err := row.Scan(&l.ID, &l.CampaignID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Location, &l.Status, &custom); err != nil {
		return nil, err
	}
	l.CustomFields = map[string]string{}
	if err := fromJSON(custom, &l.CustomFields); err != nil {
		return nil, fmt.Errorf("decode lead custom fields: %w", err)
	}
	return &l, nil
}

func listLeads(ctx context.Context, q querier, campaignID string) ([]domain.Lead, error) {
	rows, err := q.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE campaign_id = $1 ORDER BY position`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	leads := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}
