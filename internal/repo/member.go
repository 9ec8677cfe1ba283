package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"engage-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrMemberNotFound indicates the user is not a member of the company
	ErrMemberNotFound = errors.New("user is not a member of this company")

	// ErrInvalidRole indicates a stored role outside the known set
	ErrInvalidRole = errors.New("invalid company role")
)

// MemberRepository handles company membership and roles.
type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetMemberRole returns the user's role in the company, or ErrMemberNotFound.
// Called on every authorized service operation, so authorization follows
// membership changes without waiting for token expiry.
func (r *MemberRepository) GetMemberRole(ctx context.Context, userID, companyID string) (domain.Role, error) {
	query := `
		SELECT role
		FROM company_members
		WHERE user_id = $1 AND company_id = $2
	`

	var roleName string
	err := r.pool.QueryRow(ctx, query, userID, companyID).Scan(&roleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrMemberNotFound
		}
		return "", fmt.Errorf("query company member role: %w", err)
	}

	role := domain.Role(roleName)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role '%s' for user %s in company %s: %w", roleName, userID, companyID, ErrInvalidRole)
	}
	return role, nil
}

// ListMembers returns the company roster ordered by name.
func (r *MemberRepository) ListMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error) {
	query := `
		SELECT user_id, company_id, name, email, role, created_at
		FROM company_members
		WHERE company_id = $1
		ORDER BY lower(name), email
	`

	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query company members: %w", err)
	}
	defer rows.Close()

	members := []domain.CompanyMember{}
	for rows.Next() {
		var m domain.CompanyMember
		if err := rows.Scan(&m.UserID, &m.CompanyID, &m.Name, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company members: %w", err)
	}
	return members, nil
}

// GetMemberByEmail looks a member up by e-mail (case-insensitive).
func (r *MemberRepository) GetMemberByEmail(ctx context.Context, companyID, email string) (*domain.CompanyMember, error) {
	query := `
		SELECT user_id, company_id, name, email, role, created_at
		FROM company_members
		WHERE company_id = $1 AND lower(email) = lower($2)
	`

	var m domain.CompanyMember
	err := r.pool.QueryRow(ctx, query, companyID, strings.TrimSpace(email)).Scan(
		&m.UserID, &m.CompanyID, &m.Name, &m.Email, &m.Role, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("query company member by email: %w", err)
	}
	return &m, nil
}

// AddMember inserts or updates a membership.
func (r *MemberRepository) AddMember(ctx context.Context, m *domain.CompanyMember) error {
	if !m.Role.IsValid() {
		return ErrInvalidRole
	}

	query := `
		INSERT INTO company_members (company_id, user_id, name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, user_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, m.CompanyID, m.UserID, m.Name, m.Email, m.Role).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert company member: %w", err)
	}
	return nil
}
