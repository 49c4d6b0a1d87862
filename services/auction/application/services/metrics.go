package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records auction instruments on an OTel meter. The Prometheus
// reader installed by telemetry.Setup exposes them on /metrics.
type Metrics struct {
	bidsAccepted  metric.Int64Counter
	bidsRejected  metric.Int64Counter
	closed        metric.Int64Counter
	sweepDuration metric.Float64Histogram
}

// NewMetrics creates the auction instruments on m.
func NewMetrics(m metric.Meter) (*Metrics, error) {
	accepted, err := m.Int64Counter("auction_bids_accepted_total",
		metric.WithDescription("Bids accepted by the bid engine"))
	if err != nil {
		return nil, fmt.Errorf("bids accepted counter: %w", err)
	}
	rejected, err := m.Int64Counter("auction_bids_rejected_total",
		metric.WithDescription("Bids rejected, by reason"))
	if err != nil {
		return nil, fmt.Errorf("bids rejected counter: %w", err)
	}
	closed, err := m.Int64Counter("auction_closed_total",
		metric.WithDescription("Auctions ended, by outcome"))
	if err != nil {
		return nil, fmt.Errorf("closed counter: %w", err)
	}
	sweep, err := m.Float64Histogram("auction_sweep_duration_seconds",
		metric.WithDescription("Duration of lifecycle sweep passes"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("sweep histogram: %w", err)
	}
	return &Metrics{
		bidsAccepted:  accepted,
		bidsRejected:  rejected,
		closed:        closed,
		sweepDuration: sweep,
	}, nil
}

func (m *Metrics) bidAccepted(ctx context.Context) {
	if m == nil {
		return
	}
	m.bidsAccepted.Add(ctx, 1)
}

func (m *Metrics) bidRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.bidsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) auctionClosed(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.closed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// ObserveSweep records one sweep pass of the given kind ("start" or "close").
func (m *Metrics) ObserveSweep(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("kind", kind)))
}
