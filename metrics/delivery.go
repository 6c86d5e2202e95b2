package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/wusul-core/webhook"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DeliveryMetrics records every delivery attempt outcome
type DeliveryMetrics struct {
	attempts metric.Int64Counter
	duration metric.Float64Histogram
}

// NewDeliveryMetrics creates the delivery instruments on meter
func NewDeliveryMetrics(meter metric.Meter) (*DeliveryMetrics, error) {
	attempts, err := meter.Int64Counter(
		"webhook.delivery.attempts",
		metric.WithDescription("Delivery attempts by event type and resulting state"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating attempts counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"webhook.delivery.duration",
		metric.WithDescription("Time spent on a single delivery attempt"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return &DeliveryMetrics{attempts: attempts, duration: duration}, nil
}

// ObserveAttempt implements webhook.Observer
func (m *DeliveryMetrics) ObserveAttempt(ctx context.Context, eventType string, state webhook.State, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("state", state.String()),
	)
	m.attempts.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

var _ webhook.Observer = (*DeliveryMetrics)(nil)
