package handler

import (
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/riverwatch/riverwatch/internal/api/models"
	"github.com/riverwatch/riverwatch/internal/api/response"
	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

// StationsHandler serves station search, measure discovery and readings.
// Each measure or readings request opens its own Station, so handlers share
// only the read-only Monitor.
type StationsHandler struct {
	monitor *hydrology.Monitor
}

// NewStationsHandler creates a new StationsHandler.
func NewStationsHandler(monitor *hydrology.Monitor) *StationsHandler {
	return &StationsHandler{monitor: monitor}
}

// ListStations handles GET /v1/stations?river=&town=&label=.
func (h *StationsHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	if !requireSession(w, r, h.monitor) {
		return
	}

	q := r.URL.Query()
	found := h.monitor.FindStations(q.Get("river"), q.Get("town"), q.Get("label"))

	items := make([]models.Station, 0, len(found))
	for _, s := range found {
		items = append(items, models.Station{
			Notation:      s.Notation,
			RiverName:     s.RiverName,
			Town:          s.Town,
			CatchmentName: s.CatchmentName,
			Label:         s.Label,
		})
	}
	response.JSON(w, r, http.StatusOK, models.StationList{Count: len(items), Items: items})
}

// ListMeasures handles GET /v1/stations/{notation}/measures.
func (h *StationsHandler) ListMeasures(w http.ResponseWriter, r *http.Request) {
	notation := pathParam(r, "notation")

	station := h.monitor.OpenStation(r.Context(), notation)
	if !station.GoodConstruction() {
		response.Failure(w, r, station.Err())
		return
	}

	measures := station.Measures()
	out := models.MeasureList{
		Station:  station.Reference(),
		Measures: make([]models.Measure, 0, len(measures)),
	}
	for _, m := range measures {
		out.Measures = append(out.Measures, models.Measure{Kind: m.Kind.String(), Unit: m.Unit})
	}
	for _, e := range station.Issues() {
		out.Issues = append(out.Issues, models.Issue{
			ErrorKind: e.Kind.String(),
			Detail:    e.Error(),
			Source:    e.Context,
		})
	}
	response.JSON(w, r, http.StatusOK, out)
}

// GetReadings handles GET /v1/stations/{notation}/readings/{kind}?since=.
// since is RFC 3339 and defaults to the start of the session window.
func (h *StationsHandler) GetReadings(w http.ResponseWriter, r *http.Request) {
	notation := pathParam(r, "notation")

	parsed := hydrology.ParseMeasureKind(pathParam(r, "kind"))
	if e, failed := parsed.Failure(); failed {
		response.Failure(w, r, e)
		return
	}
	kind, _ := parsed.Value()

	since := h.monitor.Window().Start
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, r, "invalid since parameter", []models.FieldError{{
				Field:   "since",
				Message: "must be an RFC 3339 timestamp",
				Code:    "INVALID_FORMAT",
			}})
			return
		}
		since = t
	}

	station := h.monitor.OpenStation(r.Context(), notation)

	var ts hydrology.TimeSeries
	var failure *result.Error
	station.QueryMeasure(r.Context(), kind, since).Match(
		func(v hydrology.TimeSeries) { ts = v },
		func(e *result.Error) { failure = e },
	)
	if failure != nil {
		response.Failure(w, r, failure)
		return
	}

	out := models.TimeSeries{
		Station:  station.Reference(),
		Kind:     kind.String(),
		Since:    models.Timestamp(since),
		Count:    ts.Len(),
		Readings: make([]models.Reading, 0, ts.Len()),
	}
	if unit, ok := station.Unit(kind); ok {
		out.Unit = unit
	}
	for _, rd := range ts.Readings {
		reading := models.Reading{Time: models.Timestamp(rd.Time)}
		if !math.IsNaN(rd.Value) {
			v := rd.Value
			reading.Value = &v
		}
		out.Readings = append(out.Readings, reading)
	}
	response.JSON(w, r, http.StatusOK, out)
}

// requireSession writes a 503 and returns false when station discovery
// failed at startup.
func requireSession(w http.ResponseWriter, r *http.Request, m *hydrology.Monitor) bool {
	if m.GoodConstruction() {
		return true
	}
	detail := "station discovery failed; the session holds no stations"
	if e := m.Err(); e != nil {
		detail = e.Error() + ": " + e.Context
	}
	response.ServiceUnavailable(w, r, detail)
	return false
}

// pathParam returns the decoded route parameter. chi hands back the escaped
// segment when the request path carried encoded slashes.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
