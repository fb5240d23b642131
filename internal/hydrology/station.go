package hydrology

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/riverwatch/riverwatch/internal/result"
)

// StationConfig holds configuration for a Station.
type StationConfig struct {
	// Provider performs the upstream requests.
	Provider Provider

	// Reference is the station notation.
	Reference string

	// Logger for station operations.
	Logger zerolog.Logger
}

// Station is a single monitoring station and the measures it reports.
type Station struct {
	provider  Provider
	reference string
	logger    zerolog.Logger

	measures []Measure
	issues   []*result.Error
	good     bool
	err      *result.Error
}

// NewStation discovers the station's measures. A failed discovery leaves the
// Station degraded with an empty measure set; it can still be queried.
func NewStation(ctx context.Context, cfg StationConfig) *Station {
	s := &Station{
		provider:  cfg.Provider,
		reference: cfg.Reference,
		logger:    cfg.Logger.With().Str("station", cfg.Reference).Logger(),
	}

	s.DiscoverMeasures(ctx).Match(
		func(struct{}) {
			s.good = true
			s.logger.Info().
				Int("measures", len(s.measures)).
				Msg("collected measurement types for station")
		},
		func(e *result.Error) {
			s.err = e
			s.logger.Error().
				Str("kind", e.Kind.String()).
				Str("source", e.Context).
				Msg(e.Error() + ": could not find the available measurements for station")
		},
	)

	return s
}

// DiscoverMeasures rebuilds the measure set from the station's measure
// entries. Entries without a parameter or with an unrecognized kind are
// logged and skipped; only structural failures are returned.
func (s *Station) DiscoverMeasures(ctx context.Context) result.Result[struct{}] {
	s.measures = nil
	s.issues = nil

	r := s.provider.StationMeasures(ctx, s.reference)
	if e, failed := r.Failure(); failed {
		return result.Fail[struct{}](e)
	}
	entries, _ := r.Value()

	for i, entry := range entries {
		if entry.Parameter == nil {
			s.logger.Warn().
				Int("entry", i).
				Msg("parameter descriptor not found in measurement, skipping")
			continue
		}

		unit := unitFromURI(entry.Unit)

		classified := classify(entry)
		if e, failed := classified.Failure(); failed {
			s.issues = append(s.issues, e)
			s.logger.Warn().
				Int("entry", i).
				Str("kind", e.Kind.String()).
				Str("source", e.Context).
				Msg(e.Error())
			continue
		}
		kind, _ := classified.Value()

		if s.Has(kind) {
			continue
		}
		s.measures = append(s.measures, Measure{Kind: kind, Unit: unit})
	}

	return result.Ok(struct{}{})
}

// QueryMeasure fetches the readings of kind since the given instant.
func (s *Station) QueryMeasure(ctx context.Context, kind MeasureKind, since time.Time) result.Result[TimeSeries] {
	r := s.provider.Readings(ctx, s.reference, kind, since)
	if e, failed := r.Failure(); failed {
		s.logger.Error().
			Str("measure", kind.String()).
			Str("kind", e.Kind.String()).
			Str("source", e.Context).
			Msg(e.Error())
		return r
	}
	if ts, ok := r.Value(); ok {
		s.logger.Debug().
			Str("measure", kind.String()).
			Int("readings", ts.Len()).
			Msg("measure retrieved")
	}
	return r
}

// Reference returns the station notation.
func (s *Station) Reference() string {
	return s.reference
}

// GoodConstruction reports whether measure discovery succeeded.
func (s *Station) GoodConstruction() bool {
	return s.good
}

// Err returns the discovery failure of a degraded station, nil otherwise.
func (s *Station) Err() *result.Error {
	return s.err
}

// Measures returns a copy of the available measures in discovery order.
func (s *Station) Measures() []Measure {
	out := make([]Measure, len(s.measures))
	copy(out, s.measures)
	return out
}

// Issues returns the non-fatal per-entry failures of the last discovery.
func (s *Station) Issues() []*result.Error {
	out := make([]*result.Error, len(s.issues))
	copy(out, s.issues)
	return out
}

// Has reports whether the station reports kind.
func (s *Station) Has(kind MeasureKind) bool {
	_, ok := s.Unit(kind)
	return ok
}

// Unit returns the unit recorded for kind.
func (s *Station) Unit(kind MeasureKind) (string, bool) {
	for _, m := range s.measures {
		if m.Kind == kind {
			return m.Unit, true
		}
	}
	return "", false
}

// unitFromURI returns the text after the final '#' of a unit URI.
func unitFromURI(uri *string) string {
	if uri == nil {
		return Unknown
	}
	u := strings.TrimSpace(*uri)
	if i := strings.LastIndex(u, "#"); i >= 0 {
		u = u[i+1:]
	}
	if u == "" {
		return Unknown
	}
	return u
}

// classify maps an entry onto its kind. A level parameter alone is ambiguous,
// so level entries are resolved through their qualifier.
func classify(entry MeasureEntry) result.Result[MeasureKind] {
	param := strings.TrimSpace(*entry.Parameter)
	if normalizeName(param) != levelParameter {
		return ParseMeasureKind(param)
	}
	if entry.Qualifier == nil {
		return result.Err[MeasureKind](result.KindUnrecognizedMeasure, "level measure without qualifier")
	}
	r := ParseMeasureKind(*entry.Qualifier)
	if k, ok := r.Value(); ok && !k.IsLevel() {
		return result.Err[MeasureKind](result.KindUnrecognizedMeasure,
			fmt.Sprintf("qualifier %q does not name a level measure", *entry.Qualifier))
	}
	return r
}
