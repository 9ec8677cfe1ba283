package domain

import (
	"database/sql/driver"
	"time"
)

// =====================================================
// Company Role Constants
// =====================================================

// Role é o papel do usuário dentro da company (tenant).
type Role string

const (
	// RoleAdmin has full access including campaign lifecycle and member management
	RoleAdmin Role = "company_admin"

	// RoleManager manages campaigns, bookings and tickets
	RoleManager Role = "company_manager"

	// RoleAgent works tickets and can be assigned to them
	RoleAgent Role = "company_agent"

	// RoleViewer has read-only access to dashboards
	RoleViewer Role = "company_viewer"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent, RoleViewer:
		return true
	}
	return false
}

func (r *Role) Scan(src interface{}) error { return scanEnum(r, src, RoleViewer) }

func (r Role) Value() (driver.Value, error) { return enumValue(r) }

// =====================================================
// Membership
// =====================================================

// CompanyMember liga um usuário a uma company com um papel.
type CompanyMember struct {
	UserID    string    `json:"user_id" db:"user_id" validate:"required,max=128"`
	CompanyID string    `json:"company_id" db:"company_id" validate:"required,max=64"`
	Name      string    `json:"name" db:"name" validate:"required,max=200"`
	Email     string    `json:"email" db:"email" validate:"required,email,max=320"`
	Role      Role      `json:"role" db:"role" validate:"required,oneof=company_admin company_manager company_agent company_viewer"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Validate checks a membership before it is stored.
func (m *CompanyMember) Validate() error {
	return validate.Struct(m)
}

// TeamMember é a visão de roster usada na atribuição de tickets.
type TeamMember struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// ToTeamMember projects a membership to the roster view.
func (m CompanyMember) ToTeamMember() TeamMember {
	return TeamMember{UserID: m.UserID, Name: m.Name, Email: m.Email, Role: m.Role}
}

// TeamMembersResponse envelope do roster.
type TeamMembersResponse struct {
	Data []TeamMember `json:"data"`
}

// =====================================================
// RBAC Permission Helpers
// =====================================================

// CanView: any member can read dashboards.
func CanView(role Role) bool {
	return role.IsValid()
}

// CanManageCampaigns covers create/start/pause/complete and lead status updates.
func CanManageCampaigns(role Role) bool {
	return role == RoleAdmin || role == RoleManager
}

// CanManageBookings covers manual bookings.
func CanManageBookings(role Role) bool {
	return role == RoleAdmin || role == RoleManager
}

// CanWorkTickets covers ticket creation and every lifecycle mutation.
func CanWorkTickets(role Role) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleAgent
}

// IsAssignable: viewers are not offered as ticket assignees.
func IsAssignable(role Role) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleAgent
}

// =====================================================
// Permission Matrix
// =====================================================
//
// | Operation               | Admin | Manager | Agent | Viewer |
// |-------------------------|-------|---------|-------|--------|
// | View campaigns/tickets  | ✅    | ✅      | ✅    | ✅     |
// | Create/start/pause camp.| ✅    | ✅      | ❌    | ❌     |
// | Manual booking          | ✅    | ✅      | ❌    | ❌     |
// | Ticket create/mutate    | ✅    | ✅      | ✅    | ❌     |
// | Assignable to tickets   | ✅    | ✅      | ✅    | ❌     |
//
// s2s callers (automation) bypass membership; see service.authorize.
