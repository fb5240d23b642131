// Package hydrology provides station discovery, measure discovery and
// time-series retrieval over the flood-monitoring API.
package hydrology

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riverwatch/riverwatch/internal/result"
)

// Unknown replaces any display field or unit the API leaves out.
const Unknown = "unknown"

// TimeFormat is the layout the API expects for since= parameters.
const TimeFormat = "2006-01-02T15:04:05Z"

// WindowLength is the span of the rolling query window.
const WindowLength = 24 * time.Hour

// MeasureKind is a category of physical quantity a station can report.
type MeasureKind int

const (
	MeasureFlow MeasureKind = iota + 1
	MeasureWind
	MeasureTidalLevel
	MeasureStage
	MeasureDownstreamStage
	MeasureGroundwater
	MeasureTemperature
	MeasureLogged
)

// levelParameter is the parameter shared by every qualifier-disambiguated kind.
const levelParameter = "level"

type measureEncoding struct {
	kind      MeasureKind
	name      string
	parameter string
	qualifier string
}

// measureTable is the single source of truth for kind names and API encodings.
var measureTable = []measureEncoding{
	{MeasureFlow, "flow", "flow", ""},
	{MeasureWind, "wind", "wind", ""},
	{MeasureTidalLevel, "tidal level", levelParameter, "Tidal Level"},
	{MeasureStage, "stage", levelParameter, "Stage"},
	{MeasureDownstreamStage, "downstream stage", levelParameter, "Downstream Stage"},
	{MeasureGroundwater, "groundwater", levelParameter, "Groundwater"},
	{MeasureTemperature, "temperature", "temperature", ""},
	{MeasureLogged, "logged", levelParameter, "Logged"},
}

// measureAliases are extra names accepted by ParseMeasureKind. They never
// appear in output.
var measureAliases = map[string]MeasureKind{
	"tidal": MeasureTidalLevel,
}

var (
	kindByName     map[string]MeasureKind
	encodingByKind map[MeasureKind]measureEncoding
)

func init() {
	if err := buildMeasureIndex(measureTable); err != nil {
		panic(err)
	}
}

// buildMeasureIndex fills the lookup maps and fails if the table is not a
// bijection covering every kind.
func buildMeasureIndex(table []measureEncoding) error {
	byName := make(map[string]MeasureKind, len(table))
	byKind := make(map[MeasureKind]measureEncoding, len(table))

	for _, enc := range table {
		name := normalizeName(enc.name)
		if name == "" {
			return fmt.Errorf("measure kind %d has no name", enc.kind)
		}
		if _, dup := byName[name]; dup {
			return fmt.Errorf("measure name %q listed twice", enc.name)
		}
		if _, dup := byKind[enc.kind]; dup {
			return fmt.Errorf("measure kind %d listed twice", enc.kind)
		}
		if (enc.parameter == levelParameter) != (enc.qualifier != "") {
			return fmt.Errorf("measure %q: qualifier must be set exactly for level parameters", enc.name)
		}
		byName[name] = enc.kind
		byKind[enc.kind] = enc
	}

	for _, k := range AllMeasureKinds() {
		if _, ok := byKind[k]; !ok {
			return fmt.Errorf("measure kind %d missing from table", k)
		}
	}

	kindByName = byName
	encodingByKind = byKind
	return nil
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AllMeasureKinds lists every kind in declaration order.
func AllMeasureKinds() []MeasureKind {
	return []MeasureKind{
		MeasureFlow,
		MeasureWind,
		MeasureTidalLevel,
		MeasureStage,
		MeasureDownstreamStage,
		MeasureGroundwater,
		MeasureTemperature,
		MeasureLogged,
	}
}

// ParseMeasureKind maps a display string, parameter or qualifier onto its
// kind. Matching ignores case and surrounding whitespace.
func ParseMeasureKind(s string) result.Result[MeasureKind] {
	name := normalizeName(s)
	if k, ok := kindByName[name]; ok {
		return result.Ok(k)
	}
	if k, ok := measureAliases[name]; ok {
		return result.Ok(k)
	}
	return result.Err[MeasureKind](result.KindUnrecognizedMeasure, fmt.Sprintf("no measure kind for %q", s))
}

// String returns the canonical display string.
func (k MeasureKind) String() string {
	if enc, ok := encodingByKind[k]; ok {
		return enc.name
	}
	return fmt.Sprintf("MeasureKind(%d)", int(k))
}

// Valid reports whether k is a declared kind.
func (k MeasureKind) Valid() bool {
	_, ok := encodingByKind[k]
	return ok
}

// IsLevel reports whether the kind is one of the qualifier-disambiguated
// level quantities.
func (k MeasureKind) IsLevel() bool {
	return encodingByKind[k].parameter == levelParameter
}

// Parameter returns the API parameter for the kind.
func (k MeasureKind) Parameter() string {
	return encodingByKind[k].parameter
}

// Qualifier returns the API qualifier, empty for non-level kinds.
func (k MeasureKind) Qualifier() string {
	return encodingByKind[k].qualifier
}

// QueryValues returns the readings filter for the kind.
func (k MeasureKind) QueryValues() url.Values {
	v := url.Values{}
	v.Set("parameter", k.Parameter())
	if k.IsLevel() {
		v.Set("qualifier", k.Qualifier())
	}
	return v
}

// MarshalText implements encoding.TextMarshaler.
func (k MeasureKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid measure kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MeasureKind) UnmarshalText(text []byte) error {
	parsed, err := ParseMeasureKind(string(text)).Unpack()
	if err != nil {
		return fmt.Errorf("measure kind %q: %w", text, err)
	}
	*k = parsed
	return nil
}

// StationRecord is one row of station discovery output. Every field holds a
// usable display string; Notation is the only one safe as a path segment.
type StationRecord struct {
	Notation      string `json:"notation"`
	RiverName     string `json:"riverName"`
	Town          string `json:"town"`
	CatchmentName string `json:"catchmentName"`
	Label         string `json:"label"`
}

// Measure is a quantity a station reports, with its unit.
type Measure struct {
	Kind MeasureKind `json:"kind"`
	Unit string      `json:"unit"`
}

// MeasureEntry is one raw measure description as the API returned it.
// Pointer fields are nil when the key was absent or null.
type MeasureEntry struct {
	Parameter *string
	Qualifier *string
	Unit      *string
}

// Reading is a single timestamped value.
type Reading struct {
	Time  time.Time `json:"dateTime"`
	Value float64   `json:"value"`
}

// TimeSeries holds readings in the order the API returned them.
type TimeSeries struct {
	StationReference string      `json:"station"`
	Kind             MeasureKind `json:"kind"`
	Readings         []Reading   `json:"readings"`
}

// Len returns the number of readings.
func (ts TimeSeries) Len() int {
	return len(ts.Readings)
}

// TimeWindow is the rolling interval readings are requested for.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow returns the window ending at now, in UTC at second precision.
func NewTimeWindow(now time.Time) TimeWindow {
	end := now.UTC().Truncate(time.Second)
	return TimeWindow{
		Start: end.Add(-WindowLength),
		End:   end,
	}
}

// StartParam returns Start in the API time format.
func (w TimeWindow) StartParam() string {
	return w.Start.UTC().Format(TimeFormat)
}

// EndParam returns End in the API time format.
func (w TimeWindow) EndParam() string {
	return w.End.UTC().Format(TimeFormat)
}

// Provider performs the upstream requests. Implementations are responsible
// for status classification, structural checks and shape normalization.
type Provider interface {
	// BaseURL returns the API base address.
	BaseURL() string

	// ActiveStations lists every active station.
	ActiveStations(ctx context.Context) result.Result[[]StationRecord]

	// StationMeasures lists the raw measure entries of one station.
	StationMeasures(ctx context.Context, reference string) result.Result[[]MeasureEntry]

	// Readings fetches a station's readings for kind since the given instant.
	Readings(ctx context.Context, reference string, kind MeasureKind, since time.Time) result.Result[TimeSeries]
}
