package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"engage-api/internal/auth"
	"engage-api/internal/domain"
	"engage-api/internal/observability/logger"
	"engage-api/internal/repo"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized          = errors.New("user not authorized for this action")
	ErrMemberNotFound        = repo.ErrMemberNotFound
	ErrCampaignNotFound      = repo.ErrCampaignNotFound
	ErrLeadNotFound          = repo.ErrLeadNotFound
	ErrTicketNotFound        = repo.ErrTicketNotFound
	ErrBookingNotFound       = repo.ErrBookingNotFound
	ErrBookingConflict       = repo.ErrBookingConflict
	ErrInvalidTransition     = domain.ErrInvalidTransition
	ErrInvalidCommand        = domain.ErrInvalidCommand
	ErrInvalidCursor         = domain.ErrInvalidCursor
	ErrRequiredFieldUnmapped = domain.ErrRequiredFieldUnmapped
	ErrUnknownColumn         = domain.ErrUnknownColumn
	ErrInvalidAssignee       = errors.New("assignee is not a member of the company")
	ErrNoChanges             = errors.New("no fields to update")
)

// authorizer resolve o papel do ator na company. Chamadas s2s são confiáveis
// (o serviço interno já validou o usuário) e recebem RoleAdmin.
type authorizer struct {
	members repo.MemberStore
	log     *logger.Logger
	module  string
}

// getMemberRoleWithLogging wraps GetMemberRole with authorization audit logging.
func (a authorizer) getMemberRoleWithLogging(ctx context.Context, actorID, companyID string) (domain.Role, error) {
	if authCtx, ok := auth.GetAuthContext(ctx); ok && authCtx.IsService() {
		return domain.RoleAdmin, nil
	}

	role, err := a.members.GetMemberRole(ctx, actorID, companyID)
	if err != nil {
		a.log.Error(ctx, "failed to get member role",
			logger.Module(a.module),
			logger.Action("authorization"),
			zap.String("actor_id", actorID),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		if errors.Is(err, repo.ErrMemberNotFound) {
			return "", ErrMemberNotFound
		}
		return "", fmt.Errorf("get member role: %w", err)
	}

	a.log.Debug(ctx, "company access granted",
		logger.Module(a.module),
		logger.Action("authorization"),
		zap.String("actor_id", actorID),
		zap.String("company_id", companyID),
		zap.String("role", string(role)),
	)
	return role, nil
}

// require resolves the role and checks it with allowed.
func (a authorizer) require(ctx context.Context, actorID, companyID string, allowed func(domain.Role) bool) error {
	role, err := a.getMemberRoleWithLogging(ctx, actorID, companyID)
	if err != nil {
		return err
	}
	if !allowed(role) {
		a.log.Warn(ctx, "action denied for role",
			logger.Module(a.module),
			logger.Action("authorization"),
			zap.String("actor_id", actorID),
			zap.String("role", string(role)),
		)
		return ErrUnauthorized
	}
	return nil
}

// logAudit grava no audit log. Falha de auditoria nunca falha a operação.
func logAudit(ctx context.Context, audit repo.AuditLogger, log *logger.Logger, module, companyID, actorID, action, resourceType, resourceID string, metadata map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := repo.AuditEntry{
		CompanyID:    companyID,
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
	}
	if err := audit.LogAction(ctx, entry); err != nil {
		log.Warn(ctx, "failed to write audit log",
			logger.Module(module),
			logger.Action(action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
