package hydrology_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

func newTestStation(t *testing.T, entries ...hydrology.MeasureEntry) (*hydrology.Station, *fakeProvider) {
	t.Helper()
	provider := &fakeProvider{
		measures: map[string]result.Result[[]hydrology.MeasureEntry]{
			"1029TH": result.Ok(entries),
		},
	}
	s := hydrology.NewStation(context.Background(), hydrology.StationConfig{
		Provider:  provider,
		Reference: "1029TH",
		Logger:    zerolog.Nop(),
	})
	return s, provider
}

func TestNewStation_Measures(t *testing.T) {
	s, _ := newTestStation(t,
		entry(ptr("flow"), nil, ptr("http://qudt.org/1.1/vocab/unit#CubicMeterPerSecond")),
		entry(ptr("level"), ptr("Stage"), ptr("http://qudt.org/1.1/vocab/unit#Meter")),
		entry(ptr("level"), ptr("Downstream Stage"), ptr("http://qudt.org/1.1/vocab/unit#mASD")),
		entry(ptr("wind"), nil, nil),
		entry(ptr("temperature"), nil, ptr("deg")),
	)

	require.True(t, s.GoodConstruction())
	assert.Nil(t, s.Err())
	assert.Empty(t, s.Issues())
	assert.Equal(t, []hydrology.Measure{
		{Kind: hydrology.MeasureFlow, Unit: "CubicMeterPerSecond"},
		{Kind: hydrology.MeasureStage, Unit: "Meter"},
		{Kind: hydrology.MeasureDownstreamStage, Unit: "mASD"},
		{Kind: hydrology.MeasureWind, Unit: hydrology.Unknown},
		{Kind: hydrology.MeasureTemperature, Unit: "deg"},
	}, s.Measures())
}

func TestNewStation_TidalQualifier(t *testing.T) {
	s, _ := newTestStation(t,
		entry(ptr("level"), ptr("Tidal"), ptr("http://qudt.org/1.1/vocab/unit#mAOD")),
	)

	require.True(t, s.GoodConstruction())
	assert.Empty(t, s.Issues())
	assert.True(t, s.Has(hydrology.MeasureTidalLevel))
	unit, ok := s.Unit(hydrology.MeasureTidalLevel)
	require.True(t, ok)
	assert.Equal(t, "mAOD", unit)
}

func TestNewStation_DuplicateKindKeepsFirstUnit(t *testing.T) {
	s, _ := newTestStation(t,
		entry(ptr("level"), ptr("Stage"), ptr("#m")),
		entry(ptr("flow"), nil, ptr("#m3/s")),
		entry(ptr("level"), ptr("stage"), ptr("#mAOD")),
	)

	assert.Equal(t, []hydrology.Measure{
		{Kind: hydrology.MeasureStage, Unit: "m"},
		{Kind: hydrology.MeasureFlow, Unit: "m3/s"},
	}, s.Measures())

	unit, ok := s.Unit(hydrology.MeasureStage)
	assert.True(t, ok)
	assert.Equal(t, "m", unit)
}

func TestNewStation_SkipsAndRecordsIssues(t *testing.T) {
	var buf bytes.Buffer
	provider := &fakeProvider{
		measures: map[string]result.Result[[]hydrology.MeasureEntry]{
			"1029TH": result.Ok([]hydrology.MeasureEntry{
				entry(nil, ptr("Stage"), ptr("#m")),
				entry(ptr("rainfall"), nil, ptr("#mm")),
				entry(ptr("level"), nil, ptr("#m")),
				entry(ptr("level"), ptr("Flow"), ptr("#m")),
				entry(ptr("level"), ptr("Groundwater"), ptr("#mAOD")),
			}),
		},
	}

	s := hydrology.NewStation(context.Background(), hydrology.StationConfig{
		Provider:  provider,
		Reference: "1029TH",
		Logger:    zerolog.New(&buf),
	})

	require.True(t, s.GoodConstruction(), "per-entry problems do not fail discovery")
	assert.Equal(t, []hydrology.Measure{{Kind: hydrology.MeasureGroundwater, Unit: "mAOD"}}, s.Measures())

	issues := s.Issues()
	require.Len(t, issues, 3)
	for _, issue := range issues {
		assert.Equal(t, result.KindUnrecognizedMeasure, issue.Kind)
	}
	assert.Contains(t, issues[0].Context, "rainfall")
	assert.Contains(t, issues[1].Context, "without qualifier")
	assert.Contains(t, issues[2].Context, "does not name a level measure")

	assert.Contains(t, buf.String(), "parameter descriptor not found in measurement, skipping")
	assert.Contains(t, buf.String(), `"station":"1029TH"`)
}

func TestNewStation_Degraded(t *testing.T) {
	provider := &fakeProvider{}
	s := hydrology.NewStation(context.Background(), hydrology.StationConfig{
		Provider:  provider,
		Reference: "missing",
		Logger:    zerolog.Nop(),
	})

	assert.False(t, s.GoodConstruction())
	assert.Empty(t, s.Measures())
	require.NotNil(t, s.Err())
	assert.Equal(t, result.KindAPIRejected, s.Err().Kind)
	assert.False(t, s.Has(hydrology.MeasureFlow))
}

func TestStation_DegradedCanStillQuery(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{
		readings: result.Ok(hydrology.TimeSeries{
			StationReference: "missing",
			Kind:             hydrology.MeasureFlow,
			Readings:         []hydrology.Reading{{Time: since, Value: 1.2}},
		}),
	}
	s := hydrology.NewStation(context.Background(), hydrology.StationConfig{
		Provider:  provider,
		Reference: "missing",
		Logger:    zerolog.Nop(),
	})
	require.False(t, s.GoodConstruction())

	ts, err := s.QueryMeasure(context.Background(), hydrology.MeasureFlow, since).Unpack()
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Len())

	require.Len(t, provider.readingsCalls, 1)
	assert.Equal(t, readingsCall{reference: "missing", kind: hydrology.MeasureFlow, since: since}, provider.readingsCalls[0])
}

func TestStation_QueryMeasureFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	provider := &fakeProvider{
		measures: map[string]result.Result[[]hydrology.MeasureEntry]{
			"1029TH": result.Ok([]hydrology.MeasureEntry{}),
		},
		readings: result.Err[hydrology.TimeSeries](result.KindMalformedResponse, "missing items for measure stage station 1029TH"),
	}
	s := hydrology.NewStation(context.Background(), hydrology.StationConfig{
		Provider:  provider,
		Reference: "1029TH",
		Logger:    zerolog.New(&buf),
	})

	r := s.QueryMeasure(context.Background(), hydrology.MeasureStage, time.Now())

	e, failed := r.Failure()
	require.True(t, failed)
	assert.Equal(t, result.KindMalformedResponse, e.Kind)
	assert.Contains(t, buf.String(), "API request did not return expected data")
	assert.Contains(t, buf.String(), `"measure":"stage"`)
}

func TestStation_DiscoverMeasuresResets(t *testing.T) {
	s, provider := newTestStation(t, entry(ptr("flow"), nil, ptr("#m3/s")))
	require.Len(t, s.Measures(), 1)

	provider.measures["1029TH"] = result.Ok([]hydrology.MeasureEntry{entry(ptr("wind"), nil, ptr("#knots"))})
	_, err := s.DiscoverMeasures(context.Background()).Unpack()
	require.NoError(t, err)

	assert.Equal(t, []hydrology.Measure{{Kind: hydrology.MeasureWind, Unit: "knots"}}, s.Measures())
	assert.Equal(t, []string{"1029TH", "1029TH"}, provider.measureCalls)
}

func TestStation_MeasuresIsACopy(t *testing.T) {
	s, _ := newTestStation(t, entry(ptr("flow"), nil, ptr("#m3/s")))

	measures := s.Measures()
	measures[0].Unit = "changed"

	unit, _ := s.Unit(hydrology.MeasureFlow)
	assert.Equal(t, "m3/s", unit)
}
