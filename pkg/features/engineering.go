// Package features turns hourly trip series into the model's feature tables:
// calendar features, the rolling 4 week average, optional station
// coordinates, and the sliding window reshaping of raw series into lagged
// training rows.
package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

// ErrValidation marks a postcondition failure after feature engineering.
// It aborts the pipeline run; it is a data quality defect, not something to
// recover from.
var ErrValidation = errors.New("feature validation failed")

const hoursPerWeek = 7 * 24

// AverageTripsColumn is the rolling 4 week average feature.
const AverageTripsColumn = "average_trips_last_4_weeks"

func LagColumn(hours int) string {
	return fmt.Sprintf("trips_previous_%d_hour", hours)
}

func HourColumn(scenario string) string {
	return fmt.Sprintf("%s_hour", scenario)
}

func StationIDColumn(scenario string) string {
	return fmt.Sprintf("%s_station_id", scenario)
}

func StationNameColumn(scenario string) string {
	return fmt.Sprintf("%s_station_name", scenario)
}

// AddAvgTripsLast4Weeks appends the mean of the four weekly lag columns as
// the table's last column. It is a no-op when the column already exists.
func AddAvgTripsLast4Weeks(table *frame.Table) error {
	if table.HasColumn(AverageTripsColumn) {
		return nil
	}

	averages := make([]any, table.Len())
	for row := 0; row < table.Len(); row++ {
		sum := 0.0
		complete := true

		for week := 1; week <= 4; week++ {
			trips, ok := table.Float(LagColumn(week*hoursPerWeek), row)
			if !ok {
				complete = false
				break
			}
			sum += trips
		}

		if complete {
			averages[row] = 0.25 * sum
		}
	}

	return table.AddColumn(AverageTripsColumn, averages)
}

// AddHoursAndDays derives hour (0-23) and day_of_the_week (0=Monday through
// 6=Sunday, matching the convention the training data was built with) from
// the scenario's hour column, then drops that column. Unparseable timestamps
// become nulls rather than errors.
func AddHoursAndDays(table *frame.Table, scenario string) error {
	timestamps, exists := table.Column(HourColumn(scenario))
	if !exists {
		return fmt.Errorf("table has no %s column", HourColumn(scenario))
	}

	hours := make([]any, len(timestamps))
	days := make([]any, len(timestamps))

	for row, value := range timestamps {
		parsed, ok := parseTimestamp(value)
		if !ok {
			continue
		}

		hours[row] = float64(parsed.Hour())
		days[row] = float64(mondayIndexedWeekday(parsed))
	}

	if err := table.AddColumn("hour", hours); err != nil {
		return err
	}
	if err := table.AddColumn("day_of_the_week", days); err != nil {
		return err
	}

	return table.DropColumn(HourColumn(scenario))
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed, true
			}
		}
	}

	return time.Time{}, false
}

// mondayIndexedWeekday maps time.Weekday (Sunday=0) onto the Monday=0
// numbering the original training features use.
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// AddCoordinates geocodes the scenario's station names and appends latitude
// and longitude columns, aligned positionally with the distinct place name
// list and padded with nulls. Latitude and longitude are taken from their
// own components; the upstream implementation wrote the latitude into both
// columns, which was a defect.
func AddCoordinates(ctx context.Context, table *frame.Table, scenario string, geocoder *geocoding.Geocoder) error {
	placesAndPoints := geocoder.Geocode(ctx)

	latitudes := make([]any, table.Len())
	longitudes := make([]any, table.Len())

	row := 0
	for _, place := range geocoder.PlaceNames() {
		coordinate, present := placesAndPoints[place]
		if !present {
			continue
		}

		latitudes[row] = coordinate.Latitude
		longitudes[row] = coordinate.Longitude
		row++
	}

	if err := table.AddColumn(fmt.Sprintf("%s_latitude", scenario), latitudes); err != nil {
		return err
	}

	return table.AddColumn(fmt.Sprintf("%s_longitude", scenario), longitudes)
}

// FinishFeatureEngineering runs the full chain: calendar features, the 4
// week average, and optionally coordinates when a geocoder is supplied. The
// engineered columns must come out present and null-free or the run fails.
func FinishFeatureEngineering(ctx context.Context, table *frame.Table, scenario string, geocoder *geocoding.Geocoder) error {
	log.Info().Msgf("Initiating feature engineering for the %s", strings.ToLower(config.DisplayedScenarioName(scenario)))

	if err := AddHoursAndDays(table, scenario); err != nil {
		return err
	}
	if err := AddAvgTripsLast4Weeks(table); err != nil {
		return err
	}

	for _, column := range []string{"day_of_the_week", AverageTripsColumn} {
		if !table.HasColumn(column) {
			return fmt.Errorf("%w: column %s is missing", ErrValidation, column)
		}
		if nulls := table.CountNulls(column); nulls != 0 {
			return fmt.Errorf("%w: column %s has %d null values", ErrValidation, column, nulls)
		}
	}

	if geocoder != nil {
		return AddCoordinates(ctx, table, scenario, geocoder)
	}

	return nil
}
