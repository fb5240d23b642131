package hydrology

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/riverwatch/riverwatch/internal/result"
)

// MonitorConfig holds configuration for a monitoring session.
type MonitorConfig struct {
	// Provider performs the upstream requests.
	Provider Provider

	// Logger for session operations.
	Logger zerolog.Logger

	// Now returns the current instant (default: time.Now).
	Now func() time.Time
}

// Monitor is a session over all active stations and the rolling time window.
// It is read-only after construction except for RefreshTimeWindow.
type Monitor struct {
	provider  Provider
	logger    zerolog.Logger
	now       func() time.Time
	sessionID string

	window   TimeWindow
	stations []StationRecord
	good     bool
	err      *result.Error
}

// NewMonitor refreshes the time window and runs station discovery. A failed
// discovery leaves the session degraded: GoodConstruction reports false and
// no stations are held.
func NewMonitor(ctx context.Context, cfg MonitorConfig) *Monitor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	sessionID := uuid.New().String()
	m := &Monitor{
		provider:  cfg.Provider,
		logger:    cfg.Logger.With().Str("session", sessionID).Logger(),
		now:       now,
		sessionID: sessionID,
	}

	m.RefreshTimeWindow()

	m.DiscoverActiveStations(ctx).Match(
		func(stations []StationRecord) {
			m.stations = stations
			m.good = true
			m.logger.Info().
				Int("stations", len(stations)).
				Str("since", m.StartTime()).
				Msg("monitoring session ready")
		},
		func(e *result.Error) {
			m.err = e
			m.logger.Error().
				Str("kind", e.Kind.String()).
				Str("source", e.Context).
				Msg(e.Error() + ": could not retrieve active stations, is the API down?")
		},
	)

	return m
}

// DiscoverActiveStations requests every active station.
func (m *Monitor) DiscoverActiveStations(ctx context.Context) result.Result[[]StationRecord] {
	m.logger.Debug().Str("base_url", m.BaseURL()).Msg("discovering active stations")
	return m.provider.ActiveStations(ctx)
}

// RefreshTimeWindow recomputes the window to end now and span 24 hours.
func (m *Monitor) RefreshTimeWindow() {
	m.window = NewTimeWindow(m.now())
}

// GoodConstruction reports whether station discovery succeeded.
func (m *Monitor) GoodConstruction() bool {
	return m.good
}

// Err returns the discovery failure of a degraded session, nil otherwise.
func (m *Monitor) Err() *result.Error {
	return m.err
}

// SessionID identifies the session in logs.
func (m *Monitor) SessionID() string {
	return m.sessionID
}

// BaseURL returns the API base address.
func (m *Monitor) BaseURL() string {
	return m.provider.BaseURL()
}

// Window returns the current time window.
func (m *Monitor) Window() TimeWindow {
	return m.window
}

// StartTime returns the window start in the API time format.
func (m *Monitor) StartTime() string {
	return m.window.StartParam()
}

// EndTime returns the window end in the API time format.
func (m *Monitor) EndTime() string {
	return m.window.EndParam()
}

// Stations returns a copy of the discovered stations.
func (m *Monitor) Stations() []StationRecord {
	out := make([]StationRecord, len(m.stations))
	copy(out, m.stations)
	return out
}

// Rivers returns the distinct known river names, sorted.
func (m *Monitor) Rivers() []string {
	return m.distinct(func(s StationRecord) (string, bool) {
		return s.RiverName, true
	})
}

// Towns returns the distinct known towns on a river, sorted. An empty river
// matches every station.
func (m *Monitor) Towns(river string) []string {
	return m.distinct(func(s StationRecord) (string, bool) {
		return s.Town, matches(river, s.RiverName)
	})
}

// Labels returns the distinct known station labels for a river and town,
// sorted. Empty arguments match anything.
func (m *Monitor) Labels(river, town string) []string {
	return m.distinct(func(s StationRecord) (string, bool) {
		return s.Label, matches(river, s.RiverName) && matches(town, s.Town)
	})
}

// FindStations returns every station matching the given display fields. An
// empty argument matches anything. One display tuple can map to several
// notations, so callers must handle more than one match.
func (m *Monitor) FindStations(river, town, label string) []StationRecord {
	var found []StationRecord
	for _, s := range m.stations {
		if matches(river, s.RiverName) && matches(town, s.Town) && matches(label, s.Label) {
			found = append(found, s)
		}
	}
	return found
}

// OpenStation constructs a Station that shares this session's provider and
// logger.
func (m *Monitor) OpenStation(ctx context.Context, reference string) *Station {
	return NewStation(ctx, StationConfig{
		Provider:  m.provider,
		Reference: reference,
		Logger:    m.logger,
	})
}

// matches treats an empty filter as a wildcard.
func matches(filter, value string) bool {
	return filter == "" || filter == value
}

func (m *Monitor) distinct(pick func(StationRecord) (string, bool)) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range m.stations {
		v, ok := pick(s)
		if !ok || v == Unknown {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
