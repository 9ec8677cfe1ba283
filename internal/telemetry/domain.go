package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "engage-api"

// DomainCounters são os contadores de negócio. Criados a partir do meter
// global: sem InitMetrics viram no-op. Um *DomainCounters nil também é no-op.
type DomainCounters struct {
	LeadsImported       metric.Int64Counter
	CampaignTransitions metric.Int64Counter
	TicketMutations     metric.Int64Counter
}

// NewDomainCounters registers the business counters on the global meter provider.
func NewDomainCounters() (*DomainCounters, error) {
	meter := otel.Meter(meterName)

	leads, err := meter.Int64Counter(
		"leads_imported_total",
		metric.WithDescription("Leads materialized into campaigns"),
		metric.WithUnit("{lead}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create leads counter: %w", err)
	}

	transitions, err := meter.Int64Counter(
		"campaign_transitions_total",
		metric.WithDescription("Campaign status transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transitions counter: %w", err)
	}

	mutations, err := meter.Int64Counter(
		"ticket_mutations_total",
		metric.WithDescription("Ticket commands applied, by command and outcome"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket mutations counter: %w", err)
	}

	return &DomainCounters{
		LeadsImported:       leads,
		CampaignTransitions: transitions,
		TicketMutations:     mutations,
	}, nil
}

func (c *DomainCounters) AddLeadsImported(ctx context.Context, n int, mode string) {
	if c == nil || n <= 0 {
		return
	}
	c.LeadsImported.Add(ctx, int64(n), metric.WithAttributes(attribute.String("csv_mode", mode)))
}

func (c *DomainCounters) AddCampaignTransition(ctx context.Context, to string) {
	if c == nil {
		return
	}
	c.CampaignTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", to)))
}

func (c *DomainCounters) AddTicketMutation(ctx context.Context, command string, ok bool) {
	if c == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	c.TicketMutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}
