package floodmonitoring

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

// StationMeasures lists the raw measure descriptions of one station. The
// measures field arrives as a single object for one-measure stations and as
// an array otherwise; both come back as a slice.
func (c *Client) StationMeasures(ctx context.Context, reference string) result.Result[[]hydrology.MeasureEntry] {
	attrs := []attribute.KeyValue{attribute.String("station.reference", reference)}
	return instrument(ctx, c, "station_measures", attrs, func(ctx context.Context) result.Result[[]hydrology.MeasureEntry] {
		return c.stationMeasures(ctx, reference)
	})
}

func (c *Client) stationMeasures(ctx context.Context, reference string) result.Result[[]hydrology.MeasureEntry] {
	resp, err := c.get(ctx, stationPath(reference), nil)
	if err != nil {
		return result.Err[[]hydrology.MeasureEntry](result.KindAPIRejected,
			fmt.Sprintf("measure discovery request for station %s failed: %v", reference, err))
	}
	if resp.status != http.StatusOK {
		return result.Err[[]hydrology.MeasureEntry](result.KindAPIRejected,
			fmt.Sprintf("non-200 on measure discovery for station %s (status %d)", reference, resp.status))
	}

	envelope, ok := decodeObject(resp.body)
	if !ok {
		return result.Err[[]hydrology.MeasureEntry](result.KindMalformedResponse, "response body is not a JSON object")
	}
	rawItems, ok := envelope.member("items")
	if !ok {
		return result.Err[[]hydrology.MeasureEntry](result.KindMalformedResponse, "missing items")
	}
	items, ok := decodeObject(rawItems)
	if !ok {
		return result.Err[[]hydrology.MeasureEntry](result.KindMalformedResponse, "missing measures")
	}
	rawMeasures, ok := items.member("measures")
	if !ok {
		return result.Err[[]hydrology.MeasureEntry](result.KindMalformedResponse, "missing measures")
	}
	measures, ok := oneOrMany(rawMeasures)
	if !ok {
		return result.Err[[]hydrology.MeasureEntry](result.KindMalformedResponse, "missing measures")
	}

	entries := make([]hydrology.MeasureEntry, 0, len(measures))
	for i, raw := range measures {
		m, ok := decodeObject(raw)
		if !ok {
			c.logger.Warn().
				Str("station", reference).
				Int("index", i).
				Msg("measure entry is not an object, skipping")
			continue
		}
		entries = append(entries, hydrology.MeasureEntry{
			Parameter: m.stringMember("parameter"),
			Qualifier: m.stringMember("qualifier"),
			Unit:      m.stringMember("unit"),
		})
	}

	return result.Ok(entries)
}

func stationPath(reference string) string {
	return "/id/stations/" + url.PathEscape(reference)
}
