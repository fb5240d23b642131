package hydrology_test

import (
	"context"
	"time"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

// fakeProvider returns canned results and records the calls it receives.
type fakeProvider struct {
	stations result.Result[[]hydrology.StationRecord]
	measures map[string]result.Result[[]hydrology.MeasureEntry]
	readings result.Result[hydrology.TimeSeries]

	stationCalls  int
	measureCalls  []string
	readingsCalls []readingsCall
}

type readingsCall struct {
	reference string
	kind      hydrology.MeasureKind
	since     time.Time
}

func (f *fakeProvider) BaseURL() string {
	return "http://flood.test"
}

func (f *fakeProvider) ActiveStations(context.Context) result.Result[[]hydrology.StationRecord] {
	f.stationCalls++
	return f.stations
}

func (f *fakeProvider) StationMeasures(_ context.Context, reference string) result.Result[[]hydrology.MeasureEntry] {
	f.measureCalls = append(f.measureCalls, reference)
	if r, ok := f.measures[reference]; ok {
		return r
	}
	return result.Err[[]hydrology.MeasureEntry](result.KindAPIRejected, "non-200 on measure discovery for station "+reference)
}

func (f *fakeProvider) Readings(_ context.Context, reference string, kind hydrology.MeasureKind, since time.Time) result.Result[hydrology.TimeSeries] {
	f.readingsCalls = append(f.readingsCalls, readingsCall{reference: reference, kind: kind, since: since})
	return f.readings
}

func ptr(s string) *string {
	return &s
}

func entry(parameter, qualifier, unit *string) hydrology.MeasureEntry {
	return hydrology.MeasureEntry{Parameter: parameter, Qualifier: qualifier, Unit: unit}
}
