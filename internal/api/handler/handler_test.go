package handler_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/riverwatch/riverwatch/internal/api/handler"
	"github.com/riverwatch/riverwatch/internal/api/middleware"
	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/provider/resilience"
	"github.com/riverwatch/riverwatch/internal/result"
)

var sessionStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stubProvider struct {
	stations result.Result[[]hydrology.StationRecord]
	measures map[string]result.Result[[]hydrology.MeasureEntry]
	readings result.Result[hydrology.TimeSeries]

	lastReference string
	lastKind      hydrology.MeasureKind
	lastSince     time.Time
	readingsCalls int
}

func (p *stubProvider) BaseURL() string {
	return "http://flood.test"
}

func (p *stubProvider) ActiveStations(context.Context) result.Result[[]hydrology.StationRecord] {
	return p.stations
}

func (p *stubProvider) StationMeasures(_ context.Context, reference string) result.Result[[]hydrology.MeasureEntry] {
	if r, ok := p.measures[reference]; ok {
		return r
	}
	return result.Err[[]hydrology.MeasureEntry](result.KindAPIRejected,
		"non-200 on measure discovery for station "+reference+" (status 404)")
}

func (p *stubProvider) Readings(_ context.Context, reference string, kind hydrology.MeasureKind, since time.Time) result.Result[hydrology.TimeSeries] {
	p.readingsCalls++
	p.lastReference = reference
	p.lastKind = kind
	p.lastSince = since
	return p.readings
}

func str(s string) *string {
	return &s
}

func activeStations() result.Result[[]hydrology.StationRecord] {
	return result.Ok([]hydrology.StationRecord{
		{Notation: "1029TH", RiverName: "River Dikler", Town: "Bourton Dickler", CatchmentName: "Cotswolds", Label: "Bourton Dickler"},
		{Notation: "E2043", RiverName: "Surfleet Seas End", Town: "Surfleet Seas End", CatchmentName: "Welland", Label: "Surfleet Sluice"},
		{Notation: "E21136", RiverName: "River Thames", Town: "Oxford", CatchmentName: "Thames", Label: "Osney Lock"},
		{Notation: "E21137", RiverName: "River Thames", Town: "Oxford", CatchmentName: "Thames", Label: "Osney Lock"},
		{Notation: "52119", RiverName: "unknown", Town: "unknown", CatchmentName: "unknown", Label: "Borehole"},
	})
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		stations: activeStations(),
		measures: map[string]result.Result[[]hydrology.MeasureEntry]{
			"E21136": result.Ok([]hydrology.MeasureEntry{
				{Parameter: str("flow"), Unit: str("http://qudt.org/1.1/vocab/unit#CubicMeterPerSecond")},
				{Parameter: str("level"), Qualifier: str("Stage"), Unit: str("http://qudt.org/1.1/vocab/unit#Meter")},
				{Parameter: str("rainfall"), Unit: str("mm")},
			}),
			"E/21": result.Ok([]hydrology.MeasureEntry{
				{Parameter: str("wind"), Unit: nil},
			}),
			"BROKEN": result.Err[[]hydrology.MeasureEntry](result.KindMalformedResponse, "missing measures"),
		},
		readings: result.Ok(hydrology.TimeSeries{
			StationReference: "E21136",
			Kind:             hydrology.MeasureFlow,
			Readings: []hydrology.Reading{
				{Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Value: 1.25},
				{Time: time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC), Value: math.NaN()},
			},
		}),
	}
}

func newMonitor(p hydrology.Provider) *hydrology.Monitor {
	return hydrology.NewMonitor(context.Background(), hydrology.MonitorConfig{
		Provider: p,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return sessionStart },
	})
}

func newRouter(m *hydrology.Monitor, registry *resilience.Registry) http.Handler {
	ops := handler.NewOpsHandler("test", "2024-01-01T00:00:00Z", m, registry)
	stations := handler.NewStationsHandler(m)
	metadata := handler.NewMetadataHandler(m)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/v1/ops/health", ops.HealthCheck)
	r.Get("/v1/ops/ready", ops.ReadinessCheck)
	r.Get("/v1/ops/status", ops.SystemStatus)
	r.Get("/v1/metadata/measures", metadata.ListMeasureKinds)
	r.Get("/v1/metadata/rivers", metadata.ListRivers)
	r.Get("/v1/metadata/towns", metadata.ListTowns)
	r.Get("/v1/metadata/labels", metadata.ListLabels)
	r.Get("/v1/stations", stations.ListStations)
	r.Get("/v1/stations/{notation}/measures", stations.ListMeasures)
	r.Get("/v1/stations/{notation}/readings/{kind}", stations.GetReadings)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
