// Package floodmonitoring provides a client for the Environment Agency
// flood-monitoring API. It implements hydrology.Provider: URL construction,
// status classification, structural checks and shape normalization all
// happen here, so the hydrology package only ever sees typed records.
package floodmonitoring

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/provider/resilience"
	"github.com/riverwatch/riverwatch/internal/result"
)

const (
	// DefaultBaseURL is the base URL for the flood-monitoring API.
	DefaultBaseURL = "https://environment.data.gov.uk/flood-monitoring"

	// ProviderName identifies this provider in the health registry.
	ProviderName = "flood-monitoring"

	tracerName = "github.com/riverwatch/riverwatch/internal/hydrology/floodmonitoring"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 64 << 20
)

// ClientConfig holds configuration for the flood-monitoring client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use.
	// If nil, a resilient client is created from Timeout and MaxRetries.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 30s).
	Timeout time.Duration

	// MaxRetries for the default client (default: 0, a single attempt).
	MaxRetries uint64

	// CircuitBreaker lets the default client's breaker open after repeated
	// failures. When false the breaker never trips and every call reaches
	// the API.
	CircuitBreaker bool

	// Registry receives the default client for health reporting.
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a flood-monitoring API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
	tracer     trace.Tracer
	metrics    *requestMetrics
}

var _ hydrology.Provider = (*Client)(nil)

// NewClient creates a new flood-monitoring client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := cfg.Logger.With().Str("provider", ProviderName).Logger()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		cb := resilience.DefaultCircuitBreakerConfig(ProviderName)
		cb.OnStateChange = resilience.LogStateChanges(logger)
		if !cfg.CircuitBreaker {
			cb.ReadyToTrip = resilience.NeverTrip
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			CircuitBreaker:  &cb,
			Registry:        cfg.Registry,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		metrics:    newRequestMetrics(otel.Meter(tracerName), logger),
	}
}

// BaseURL returns the API base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a fetched upstream body with its status.
type response struct {
	status int
	body   []byte
}

// get issues a GET for path under the base URL. Only transport failures are
// returned as errors; status handling is left to the caller.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", target).Msg("requesting")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", target, err)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

// instrument runs one upstream operation inside a client span and records
// its outcome.
func instrument[T any](ctx context.Context, c *Client, operation string, attrs []attribute.KeyValue, fn func(context.Context) result.Result[T]) result.Result[T] {
	ctx, span := c.tracer.Start(ctx, "floodmonitoring."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	start := time.Now()
	res := fn(ctx)

	outcome := "ok"
	if e, failed := res.Failure(); failed {
		outcome = e.Kind.String()
		span.SetAttributes(attribute.String("error.kind", outcome))
		span.SetStatus(codes.Error, e.Kind.Explain())
	}
	c.metrics.record(ctx, operation, outcome, time.Since(start))

	return res
}
