package hydrology_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

func TestMeasureKind_RoundTrip(t *testing.T) {
	for _, kind := range hydrology.AllMeasureKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			parsed, err := hydrology.ParseMeasureKind(kind.String()).Unpack()
			require.NoError(t, err)
			assert.Equal(t, kind, parsed)
		})
	}
}

func TestMeasureKind_DistinctNames(t *testing.T) {
	seen := make(map[string]hydrology.MeasureKind)
	for _, kind := range hydrology.AllMeasureKinds() {
		name := kind.String()
		_, dup := seen[name]
		assert.False(t, dup, "duplicate name %q", name)
		seen[name] = kind
	}
}

func TestParseMeasureKind(t *testing.T) {
	tests := []struct {
		input string
		want  hydrology.MeasureKind
	}{
		{"flow", hydrology.MeasureFlow},
		{"Flow", hydrology.MeasureFlow},
		{"  wind ", hydrology.MeasureWind},
		{"Tidal Level", hydrology.MeasureTidalLevel},
		{"Tidal", hydrology.MeasureTidalLevel},
		{"Stage", hydrology.MeasureStage},
		{"Downstream Stage", hydrology.MeasureDownstreamStage},
		{"GROUNDWATER", hydrology.MeasureGroundwater},
		{"temperature", hydrology.MeasureTemperature},
		{"Logged", hydrology.MeasureLogged},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := hydrology.ParseMeasureKind(tt.input).Unpack()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMeasureKind_AliasKeepsCanonicalName(t *testing.T) {
	kind, err := hydrology.ParseMeasureKind("tidal").Unpack()
	require.NoError(t, err)
	assert.Equal(t, "tidal level", kind.String())
	assert.Equal(t, "Tidal Level", kind.Qualifier())
}

func TestParseMeasureKind_Unrecognized(t *testing.T) {
	for _, input := range []string{"", "level", "rainfall", "tide", "stage height", "flows"} {
		t.Run(input, func(t *testing.T) {
			r := hydrology.ParseMeasureKind(input)
			assert.False(t, r.IsOk())

			_, err := r.Unpack()
			assert.True(t, errors.Is(err, result.ErrUnrecognizedMeasure))

			e, _ := r.Failure()
			assert.Contains(t, e.Context, input)
		})
	}
}

func TestMeasureKind_QueryValues(t *testing.T) {
	tests := []struct {
		kind    hydrology.MeasureKind
		encoded string
	}{
		{hydrology.MeasureFlow, "parameter=flow"},
		{hydrology.MeasureWind, "parameter=wind"},
		{hydrology.MeasureTemperature, "parameter=temperature"},
		{hydrology.MeasureTidalLevel, "parameter=level&qualifier=Tidal+Level"},
		{hydrology.MeasureStage, "parameter=level&qualifier=Stage"},
		{hydrology.MeasureDownstreamStage, "parameter=level&qualifier=Downstream+Stage"},
		{hydrology.MeasureGroundwater, "parameter=level&qualifier=Groundwater"},
		{hydrology.MeasureLogged, "parameter=level&qualifier=Logged"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.encoded, tt.kind.QueryValues().Encode())
			assert.Equal(t, tt.kind.Qualifier() != "", tt.kind.IsLevel())
		})
	}
}

func TestMeasureKind_Invalid(t *testing.T) {
	kind := hydrology.MeasureKind(99)

	assert.False(t, kind.Valid())
	assert.Equal(t, "MeasureKind(99)", kind.String())

	_, err := kind.MarshalText()
	assert.Error(t, err)
}

func TestMeasureKind_JSON(t *testing.T) {
	data, err := json.Marshal(hydrology.Measure{Kind: hydrology.MeasureDownstreamStage, Unit: "mAOD"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"downstream stage","unit":"mAOD"}`, string(data))

	var m hydrology.Measure
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"Tidal Level","unit":"m"}`), &m))
	assert.Equal(t, hydrology.MeasureTidalLevel, m.Kind)

	err = json.Unmarshal([]byte(`{"kind":"rainfall"}`), &m)
	assert.ErrorIs(t, err, result.ErrUnrecognizedMeasure)
}

func TestNewTimeWindow(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		start string
		end   string
	}{
		{
			name:  "midday utc",
			now:   time.Date(2024, 6, 15, 12, 30, 45, 999, time.UTC),
			start: "2024-06-14T12:30:45Z",
			end:   "2024-06-15T12:30:45Z",
		},
		{
			name:  "across spring forward",
			now:   time.Date(2024, 3, 31, 12, 0, 0, 0, time.FixedZone("BST", 60*60)),
			start: "2024-03-30T11:00:00Z",
			end:   "2024-03-31T11:00:00Z",
		},
		{
			name:  "across fall back",
			now:   time.Date(2024, 10, 27, 1, 30, 0, 0, time.FixedZone("GMT", 0)),
			start: "2024-10-26T01:30:00Z",
			end:   "2024-10-27T01:30:00Z",
		},
		{
			name:  "year boundary",
			now:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			start: "2024-12-31T00:00:00Z",
			end:   "2025-01-01T00:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := hydrology.NewTimeWindow(tt.now)

			assert.Equal(t, hydrology.WindowLength, w.End.Sub(w.Start))
			assert.Equal(t, 24*time.Hour, w.End.Sub(w.Start))
			assert.Equal(t, tt.start, w.StartParam())
			assert.Equal(t, tt.end, w.EndParam())
		})
	}
}
