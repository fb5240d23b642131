package floodmonitoring

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

// stationColumns must appear in at least one discovered station.
var stationColumns = []string{"riverName", "notation", "label", "town"}

// ActiveStations lists every station with status Active.
func (c *Client) ActiveStations(ctx context.Context) result.Result[[]hydrology.StationRecord] {
	return instrument(ctx, c, "active_stations", nil, c.activeStations)
}

func (c *Client) activeStations(ctx context.Context) result.Result[[]hydrology.StationRecord] {
	resp, err := c.get(ctx, "/id/stations", url.Values{"status": {"Active"}})
	if err != nil {
		return result.Err[[]hydrology.StationRecord](result.KindAPIRejected,
			fmt.Sprintf("station discovery request failed: %v", err))
	}
	if resp.status != http.StatusOK {
		return result.Err[[]hydrology.StationRecord](result.KindAPIRejected,
			fmt.Sprintf("non-200 on station discovery (status %d)", resp.status))
	}

	rows, res := decodeItems[[]hydrology.StationRecord](resp.body, "missing items key")
	if res != nil {
		return *res
	}

	if missing := missingColumn(rows, stationColumns); missing != "" {
		return result.Err[[]hydrology.StationRecord](result.KindMalformedResponse,
			fmt.Sprintf("missing station identifier column %q", missing))
	}

	stations := make([]hydrology.StationRecord, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, hydrology.StationRecord{
			Notation:      row.displayMember("notation"),
			RiverName:     row.displayMember("riverName"),
			Town:          row.displayMember("town"),
			CatchmentName: row.displayMember("catchmentName"),
			Label:         row.displayMember("label"),
		})
	}

	c.logger.Debug().Int("count", len(stations)).Msg("decoded active stations")
	return result.Ok(stations)
}

// decodeItems extracts the items of a list response as rows; a lone object
// counts as a one-row list. A failed Result is returned when the body is not
// an object, items is absent, or an item is not an object.
func decodeItems[T any](body []byte, missingContext string) ([]object, *result.Result[T]) {
	fail := func(kind result.Kind, detail string) ([]object, *result.Result[T]) {
		r := result.Err[T](kind, detail)
		return nil, &r
	}

	envelope, ok := decodeObject(body)
	if !ok {
		return fail(result.KindMalformedResponse, "response body is not a JSON object")
	}
	raw, ok := envelope.member("items")
	if !ok {
		return fail(result.KindMalformedResponse, missingContext)
	}

	items, ok := oneOrMany(raw)
	if !ok {
		return fail(result.KindMalformedResponse, "items is not an array")
	}

	rows := make([]object, 0, len(items))
	for i, item := range items {
		row, ok := decodeObject(item)
		if !ok {
			return fail(result.KindMalformedResponse, fmt.Sprintf("item %d is not an object", i))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// missingColumn returns the first required column no row carries. A column
// is present when any row has the key, so an empty list lacks every column.
func missingColumn(rows []object, required []string) string {
	for _, column := range required {
		found := false
		for _, row := range rows {
			if _, ok := row[column]; ok {
				found = true
				break
			}
		}
		if !found {
			return column
		}
	}
	return ""
}
