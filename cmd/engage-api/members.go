package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"engage-api/internal/config"
	"engage-api/internal/database"
	"engage-api/internal/domain"
	"engage-api/internal/repo"

	"github.com/spf13/cobra"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage company members",
}

var memberAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a company member",
	Long:  `Upsert a membership (company, user, role). Roles: company_admin, company_manager, company_agent, company_viewer.`,
	RunE:  runMemberAdd,
}

var memberFlags struct {
	companyID string
	userID    string
	name      string
	email     string
	role      string
}

func init() {
	f := memberAddCmd.Flags()
	f.StringVar(&memberFlags.companyID, "company", "", "company id")
	f.StringVar(&memberFlags.userID, "user", "", "user id (JWT actor id)")
	f.StringVar(&memberFlags.name, "name", "", "display name")
	f.StringVar(&memberFlags.email, "email", "", "e-mail used for ticket assignment")
	f.StringVar(&memberFlags.role, "role", string(domain.RoleAgent), "member role")

	membersCmd.AddCommand(memberAddCmd)
	rootCmd.AddCommand(membersCmd)
}

func runMemberAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("members add requires STORE_DRIVER=postgres; use MEMBER_SEED_FILE with the memory driver")
	}

	m := &domain.CompanyMember{
		CompanyID: memberFlags.companyID,
		UserID:    memberFlags.userID,
		Name:      memberFlags.name,
		Email:     strings.TrimSpace(memberFlags.email),
		Role:      domain.Role(memberFlags.role),
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid member: %s", formatFields(domain.ValidationFields(err)))
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := repo.NewMemberRepository(pool).AddMember(ctx, m); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is %s in %s\n", m.UserID, m.Role, m.CompanyID)
	return nil
}

// seedMembers carrega MEMBER_SEED_FILE: um array JSON de company members.
func seedMembers(ctx context.Context, store repo.MemberStore, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read member seed file: %w", err)
	}

	var members []domain.CompanyMember
	if err := json.Unmarshal(raw, &members); err != nil {
		return 0, fmt.Errorf("failed to decode member seed file: %w", err)
	}

	var errs []error
	for i := range members {
		m := &members[i]
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("member %d: %s", i, formatFields(domain.ValidationFields(err))))
			continue
		}
		if err := store.AddMember(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("member %d: %w", i, err))
		}
	}
	return len(members) - len(errs), errors.Join(errs...)
}

func formatFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for field, msg := range fields {
		parts = append(parts, field+" "+msg)
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
