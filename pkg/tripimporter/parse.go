// Package tripimporter ingests raw Divvy trip exports: it buckets trips into
// per-station hourly counts for the feature store and keeps the geo registry
// up to date, reverse geocoding stations that arrive with coordinates but no
// name.
package tripimporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

// tripRow mirrors the columns of a raw Divvy trip export. Everything is a
// string because the exports routinely ship empty cells.
type tripRow struct {
	RideID string `csv:"ride_id"`

	StartedAt string `csv:"started_at"`
	EndedAt   string `csv:"ended_at"`

	StartStationName string `csv:"start_station_name"`
	EndStationName   string `csv:"end_station_name"`

	StartLat string `csv:"start_lat"`
	StartLng string `csv:"start_lng"`
	EndLat   string `csv:"end_lat"`
	EndLng   string `csv:"end_lng"`
}

// tripEvent is one endpoint of one trip, for whichever scenario is being
// imported.
type tripEvent struct {
	StationName   string
	Coordinate    geocoding.Coordinate
	HasCoordinate bool
	At            time.Time
}

const divvyTimeLayout = "2006-01-02 15:04:05"

// parseTrips reads a raw export and keeps the endpoint the scenario asks
// for. Rows with no usable timestamp are skipped.
func parseTrips(reader io.Reader, scenario string) ([]tripEvent, error) {
	// Divvy exports occasionally have short rows
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	var rows []*tripRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("parse trips csv: %w", err)
	}

	var events []tripEvent
	for _, row := range rows {
		var timestamp, name, latitude, longitude string

		switch scenario {
		case "start":
			timestamp, name = row.StartedAt, row.StartStationName
			latitude, longitude = row.StartLat, row.StartLng
		case "end":
			timestamp, name = row.EndedAt, row.EndStationName
			latitude, longitude = row.EndLat, row.EndLng
		default:
			return nil, fmt.Errorf(`scenario must be "start" or "end", got %q`, scenario)
		}

		at, err := time.Parse(divvyTimeLayout, timestamp)
		if err != nil {
			continue
		}

		event := tripEvent{
			StationName: name,
			At:          at.Truncate(time.Hour),
		}

		if lat, err := strconv.ParseFloat(latitude, 64); err == nil {
			if lng, err := strconv.ParseFloat(longitude, 64); err == nil {
				event.Coordinate = geocoding.Coordinate{Latitude: lat, Longitude: lng}
				event.HasCoordinate = true
			}
		}

		events = append(events, event)
	}

	return events, nil
}
