package mockstore

import (
	"context"

	"engage-api/internal/repo"

	"github.com/stretchr/testify/mock"
)

type AuditLogger struct {
	mock.Mock
}

var _ repo.AuditLogger = &AuditLogger{}

func (m *AuditLogger) LogAction(ctx context.Context, entry repo.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
