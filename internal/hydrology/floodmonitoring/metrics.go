package floodmonitoring

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// requestMetrics holds the instruments for upstream calls.
type requestMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

func newRequestMetrics(meter metric.Meter, logger zerolog.Logger) *requestMetrics {
	m, err := buildRequestMetrics(meter)
	if err != nil {
		logger.Warn().Err(err).Msg("metrics unavailable, recording to noop meter")
		m, _ = buildRequestMetrics(noop.NewMeterProvider().Meter(tracerName)) //nolint:errcheck // noop never fails
	}
	return m
}

func buildRequestMetrics(meter metric.Meter) (*requestMetrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"floodmonitoring.request.duration",
		metric.WithDescription("Duration of flood-monitoring API operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"floodmonitoring.request.total",
		metric.WithDescription("Total number of flood-monitoring API operations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &requestMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// record stores one operation outcome. outcome is "ok" or an error kind name.
func (m *requestMetrics) record(ctx context.Context, operation, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)

	// Detached so a cancelled request still gets counted.
	ctx = context.WithoutCancel(ctx)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}
