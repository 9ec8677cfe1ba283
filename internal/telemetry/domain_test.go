package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainCounters_NilIsNoop(t *testing.T) {
	var c *DomainCounters
	ctx := context.Background()

	assert.NotPanics(t, func() {
		c.AddLeadsImported(ctx, 3, "strict")
		c.AddCampaignTransition(ctx, "active")
		c.AddTicketMutation(ctx, "update_status", true)
	})
}

func TestNewDomainCounters_GlobalProvider(t *testing.T) {
	c, err := NewDomainCounters()
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.NotPanics(t, func() {
		c.AddLeadsImported(context.Background(), 2, "permissive")
		c.AddTicketMutation(context.Background(), "add_note", false)
	})
}
