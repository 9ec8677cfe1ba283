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
	ErrTicketNotFound = errors.New("ticket not found in company")
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `
	id, company_id, title, description, status, priority, source,
	customer_id, customer_name, customer_email, customer_phone,
	assigned_to, tags, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Source,
		&t.CustomerID, &t.CustomerName, &t.CustomerEmail, &t.CustomerPhone,
		&t.AssignedTo, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

// Create inserts the ticket with its initial notes and history.
func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	query := `
		INSERT INTO tickets (
			id, company_id, title, description, status, priority, source,
			customer_id, customer_name, customer_email, customer_phone,
			assigned_to, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = tx.Exec(ctx, query,
		t.ID, t.CompanyID, t.Title, t.Description, t.Status, t.Priority, t.Source,
		t.CustomerID, t.CustomerName, t.CustomerEmail, t.CustomerPhone,
		t.AssignedTo, t.Tags, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}

	for _, n := range t.Notes {
		if err := insertNote(ctx, tx, n); err != nil {
			return err
		}
	}
	for _, h := range t.History {
		if err := insertHistory(ctx, tx, h); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ticket: %w", err)
	}
	return nil
}

// Get retrieves a ticket with notes and history, scoped to company.
// IDOR protection: a ticket of another company is reported as not found.
func (r *TicketRepository) Get(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	return getTicket(ctx, r.pool, companyID, ticketID, false)
}

func getTicket(ctx context.Context, q querier, companyID, ticketID string, forUpdate bool) (*domain.Ticket, error) {
	if !domain.IsValidID(ticketID) {
		return nil, ErrTicketNotFound
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 AND company_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	t, err := scanTicket(q.QueryRow(ctx, query, ticketID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("query ticket: %w", err)
	}

	if t.Notes, err = listNotes(ctx, q, ticketID); err != nil {
		return nil, err
	}
	if t.History, err = listHistory(ctx, q, ticketID); err != nil {
		return nil, err
	}
	return t, nil
}

// Mutate decides and applies cmds in order inside one transaction holding
// the ticket row lock. Either every command is persisted or none is.
func (r *TicketRepository) Mutate(ctx context.Context, companyID, ticketID, actor string, cmds []domain.TicketCommand, now time.Time) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	t, err := getTicket(ctx, tx, companyID, ticketID, true)
	if err != nil {
		return nil, err
	}

	for _, cmd := range cmds {
		patch, err := domain.Decide(*t, cmd, actor, now)
		if err != nil {
			return nil, err
		}
		patch.Apply(t)

		if patch.Note != nil {
			if err := insertNote(ctx, tx, *patch.Note); err != nil {
				return nil, err
			}
		}
		if err := insertHistory(ctx, tx, patch.History); err != nil {
			return nil, err
		}
	}

	query := `
		UPDATE tickets
		SET status = $1, priority = $2, assigned_to = $3, updated_at = $4
		WHERE id = $5 AND company_id = $6
	`
	_, err = tx.Exec(ctx, query, t.Status, t.Priority, t.AssignedTo, t.UpdatedAt, t.ID, companyID)
	if err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ticket mutation: %w", err)
	}
	return t, nil
}

// List retrieves tickets (without notes/history) ordered by created_at DESC,
// paginated by a created_at cursor.
func (r *TicketRepository) List(ctx context.Context, params domain.ListTicketsParams) ([]domain.Ticket, string, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE company_id = $1`
	args := []interface{}{params.CompanyID}
	argIdx := 2

	if params.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}

	if params.Priority != nil {
		query += fmt.Sprintf(" AND priority = $%d", argIdx)
		args = append(args, *params.Priority)
		argIdx++
	}

	if params.Source != nil {
		query += fmt.Sprintf(" AND source = $%d", argIdx)
		args = append(args, *params.Source)
		argIdx++
	}

	if params.AssignedTo != nil {
		query += fmt.Sprintf(" AND lower(assigned_to) = lower($%d)", argIdx)
		args = append(args, *params.AssignedTo)
		argIdx++
	}

	if params.Query != nil && *params.Query != "" {
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d
			OR customer_name ILIKE $%d OR customer_email ILIKE $%d)`, argIdx, argIdx, argIdx, argIdx)
		args = append(args, "%"+escapeLike(*params.Query)+"%")
		argIdx++
	}

	if params.Cursor != nil && *params.Cursor != "" {
		cursor, err := domain.ParseTicketCursor(*params.Cursor)
		if err != nil {
			return nil, "", err
		}
		if cursor.ID == "" {
			query += fmt.Sprintf(" AND created_at < $%d", argIdx)
			args = append(args, cursor.CreatedAt)
			argIdx++
		} else {
			query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d::uuid)", argIdx, argIdx+1)
			args = append(args, cursor.CreatedAt, cursor.ID)
			argIdx += 2
		}
	}

	query += " ORDER BY created_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, params.Limit+1) // +1 to check if there's next page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0, params.Limit)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, "", fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate tickets: %w", err)
	}

	var nextCursor string
	if len(tickets) > params.Limit {
		nextCursor = domain.CursorAfter(tickets[params.Limit-1]).String()
		tickets = tickets[:params.Limit]
	}
	return tickets, nextCursor, nil
}

// Stats aggregates counters in SQL.
func (r *TicketRepository) Stats(ctx context.Context, companyID string) (*domain.TicketStats, error) {
	query := `
		SELECT status, priority, (assigned_to IS NULL OR assigned_to = '') AS unassigned, COUNT(*)
		FROM tickets
		WHERE company_id = $1
		GROUP BY status, priority, unassigned
	`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query ticket stats: %w", err)
	}
	defer rows.Close()

	stats := domain.NewTicketStats()
	for rows.Next() {
		var status domain.TicketStatus
		var priority domain.TicketPriority
		var unassigned bool
		var n int
		if err := rows.Scan(&status, &priority, &unassigned, &n); err != nil {
			return nil, fmt.Errorf("scan ticket stats: %w", err)
		}
		stats.Total += n
		stats.ByStatus[status] += n
		stats.ByPriority[priority] += n
		if unassigned {
			stats.Unassigned += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket stats: %w", err)
	}
	return &stats, nil
}

func insertNote(ctx context.Context, q querier, n domain.Note) error {
	query := `
		INSERT INTO ticket_notes (id, ticket_id, content, created_by, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := q.Exec(ctx, query, n.ID, n.TicketID, n.Content, n.CreatedBy, n.IsInternal, n.CreatedAt); err != nil {
		return fmt.Errorf("insert ticket note: %w", err)
	}
	return nil
}

func insertHistory(ctx context.Context, q querier, h domain.HistoryEntry) error {
	query := `
		INSERT INTO ticket_history (id, ticket_id, action, old_value, new_value, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := q.Exec(ctx, query, h.ID, h.TicketID, h.Action, h.OldValue, h.NewValue, h.ChangedBy, h.CreatedAt); err != nil {
		return fmt.Errorf("insert ticket history: %w", err)
	}
	return nil
}

func listNotes(ctx context.Context, q querier, ticketID string) ([]domain.Note, error) {
	query := `
		SELECT id, ticket_id, content, created_by, is_internal, created_at
		FROM ticket_notes
		WHERE ticket_id = $1
		ORDER BY created_at, id
	`
	rows, err := q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("query ticket notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.TicketID, &n.Content, &n.CreatedBy, &n.IsInternal, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket notes: %w", err)
	}
	return notes, nil
}

// listHistory ordena por seq: entradas da mesma transação compartilham created_at.
func listHistory(ctx context.Context, q querier, ticketID string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, ticket_id, action, old_value, new_value, changed_by, created_at
		FROM ticket_history
		WHERE ticket_id = $1
		ORDER BY seq
	`
	rows, err := q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("query ticket history: %w", err)
	}
	defer rows.Close()

	history := []domain.HistoryEntry{}
	for rows.Next() {
		var h domain.HistoryEntry
		if err := rows.Scan(&h.ID, &h.TicketID, &h.Action, &h.OldValue, &h.NewValue, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket history: %w", err)
	}
	return history, nil
}
