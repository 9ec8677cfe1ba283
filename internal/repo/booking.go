package repo

import (
	"context"
	"errors"
	"fmt"

	"engage-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBookingNotFound = errors.New("booking not found in company")
	ErrBookingConflict = errors.New("booking already exists")
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

const bookingColumns = `
	id, company_id, lead_name, lead_email, lead_phone, agent_name, agent_id,
	call_duration, scheduled_date, scheduled_time, meeting_duration,
	booking_confidence, status, source, campaign_id, campaign_name, created_at`

func scanBooking(row pgx.Row) (*domain.AutoBooking, error) {
	var b domain.AutoBooking
	var campaignID, campaignName *string
	err := row.Scan(
		&b.ID, &b.CompanyID, &b.LeadName, &b.LeadEmail, &b.LeadPhone, &b.AgentName, &b.AgentID,
		&b.CallDuration, &b.ScheduledDate, &b.ScheduledTime, &b.MeetingDuration,
		&b.BookingConfidence, &b.Status, &b.Source, &campaignID, &campaignName, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CampaignID = getString(campaignID)
	b.CampaignName = getString(campaignName)
	b.ConfidenceBand = domain.BandFor(b.BookingConfidence)
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.AutoBooking) error {
	query := `
		INSERT INTO bookings (
			id, company_id, lead_name, lead_email, lead_phone, agent_name, agent_id,
			call_duration, scheduled_date, scheduled_time, meeting_duration,
			booking_confidence, status, source, campaign_id, campaign_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, COALESCE($15, ''), COALESCE($16, ''), $17)
	`

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.CompanyID, b.LeadName, b.LeadEmail, b.LeadPhone, b.AgentName, b.AgentID,
		b.CallDuration, b.ScheduledDate, b.ScheduledTime, b.MeetingDuration,
		b.BookingConfidence, b.Status, b.Source, nullIfEmpty(b.CampaignID), nullIfEmpty(b.CampaignName), b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrBookingConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, companyID, bookingID string) (*domain.AutoBooking, error) {
	if !domain.IsValidID(bookingID) {
		return nil, ErrBookingNotFound
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND company_id = $2`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, bookingID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return b, nil
}

// List returns bookings ordered by schedule, most recent first.
func (r *BookingRepository) List(ctx context.Context, companyID string, filter domain.BookingFilter) ([]domain.AutoBooking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", argIdx)
		args = append(args, filter.Source)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(` AND (lead_name ILIKE $%d OR lead_email ILIKE $%d
			OR agent_name ILIKE $%d OR campaign_name ILIKE $%d)`, argIdx, argIdx, argIdx, argIdx)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	query += " ORDER BY scheduled_date DESC, scheduled_time DESC, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := []domain.AutoBooking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}
