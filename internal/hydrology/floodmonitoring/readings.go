package floodmonitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riverwatch/riverwatch/internal/hydrology"
	"github.com/riverwatch/riverwatch/internal/result"
)

var readingColumns = []string{"dateTime", "value"}

// Readings fetches the readings of kind for a station since the given
// instant, in the order the API returns them.
func (c *Client) Readings(ctx context.Context, reference string, kind hydrology.MeasureKind, since time.Time) result.Result[hydrology.TimeSeries] {
	attrs := []attribute.KeyValue{
		attribute.String("station.reference", reference),
		attribute.String("measure.kind", kind.String()),
	}
	return instrument(ctx, c, "readings", attrs, func(ctx context.Context) result.Result[hydrology.TimeSeries] {
		return c.readings(ctx, reference, kind, since)
	})
}

func (c *Client) readings(ctx context.Context, reference string, kind hydrology.MeasureKind, since time.Time) result.Result[hydrology.TimeSeries] {
	subject := fmt.Sprintf("for measure %s station %s", kind, reference)

	if !kind.Valid() {
		return result.Err[hydrology.TimeSeries](result.KindUnrecognizedMeasure,
			fmt.Sprintf("invalid measure kind %d", int(kind)))
	}

	query := kind.QueryValues()
	query.Set("since", since.UTC().Format(hydrology.TimeFormat))

	resp, err := c.get(ctx, stationPath(reference)+"/readings", query)
	if err != nil {
		return result.Err[hydrology.TimeSeries](result.KindAPIRejected,
			fmt.Sprintf("readings request %s failed: %v", subject, err))
	}
	if resp.status != http.StatusOK {
		return result.Err[hydrology.TimeSeries](result.KindAPIRejected,
			fmt.Sprintf("non-200 on readings %s (status %d)", subject, resp.status))
	}

	rows, res := decodeItems[hydrology.TimeSeries](resp.body, "missing items "+subject)
	if res != nil {
		return *res
	}
	if missing := missingColumn(rows, readingColumns); missing != "" {
		return result.Err[hydrology.TimeSeries](result.KindMalformedResponse,
			fmt.Sprintf("missing %s column %s", missing, subject))
	}

	readings := make([]hydrology.Reading, 0, len(rows))
	for i, row := range rows {
		stamp := row.stringMember("dateTime")
		if stamp == nil {
			return result.Err[hydrology.TimeSeries](result.KindMalformedResponse,
				fmt.Sprintf("reading %d has no dateTime %s", i, subject))
		}
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(*stamp))
		if err != nil {
			return result.Err[hydrology.TimeSeries](result.KindMalformedResponse,
				fmt.Sprintf("reading %d has unparseable dateTime %q %s", i, *stamp, subject))
		}
		readings = append(readings, hydrology.Reading{
			Time:  at,
			Value: readingValue(row),
		})
	}

	return result.Ok(hydrology.TimeSeries{
		StationReference: reference,
		Kind:             kind,
		Readings:         readings,
	})
}

// readingValue returns the numeric value of a reading, NaN when it is null,
// absent or not a number.
func readingValue(row object) float64 {
	raw, ok := row.member("value")
	if !ok {
		return math.NaN()
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return math.NaN()
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
