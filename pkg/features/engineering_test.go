package features

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

func floats(values ...float64) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func tableWithLags(t *testing.T) *frame.Table {
	t.Helper()

	table := frame.New()
	require.NoError(t, table.AddColumn(LagColumn(168), floats(10, 8)))
	require.NoError(t, table.AddColumn(LagColumn(336), floats(20, 8)))
	require.NoError(t, table.AddColumn(LagColumn(504), floats(30, 8)))
	require.NoError(t, table.AddColumn(LagColumn(672), floats(40, 8)))

	return table
}

func TestAddAvgTripsLast4Weeks(t *testing.T) {
	t.Run("Average of the four weekly lags", func(t *testing.T) {
		table := tableWithLags(t)

		require.NoError(t, AddAvgTripsLast4Weeks(table))

		average, ok := table.Float(AverageTripsColumn, 0)
		require.True(t, ok)
		assert.Equal(t, 25.0, average)

		// appended as the last column
		columns := table.Columns()
		assert.Equal(t, AverageTripsColumn, columns[len(columns)-1])
	})

	t.Run("Idempotent", func(t *testing.T) {
		table := tableWithLags(t)

		require.NoError(t, AddAvgTripsLast4Weeks(table))
		before := table.Columns()

		require.NoError(t, AddAvgTripsLast4Weeks(table))
		assert.Equal(t, before, table.Columns())
	})
}

func TestAddHoursAndDays(t *testing.T) {
	table := frame.New()
	require.NoError(t, table.AddColumn("start_hour", []any{
		"2024-01-01 14:00:00", // a Monday
		"2024-01-07 23:00:00", // a Sunday
		"not a timestamp",
	}))

	require.NoError(t, AddHoursAndDays(table, "start"))

	assert.False(t, table.HasColumn("start_hour"))

	hour, ok := table.Float("hour", 0)
	require.True(t, ok)
	assert.Equal(t, 14.0, hour)

	// Monday is day 0, Sunday day 6 - pinned to the convention the original
	// training features were built with.
	day, ok := table.Float("day_of_the_week", 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, day)

	day, ok = table.Float("day_of_the_week", 1)
	require.True(t, ok)
	assert.Equal(t, 6.0, day)

	// unparseable rows become nulls, not errors
	_, ok = table.Float("hour", 2)
	assert.False(t, ok)
	assert.Equal(t, 1, table.CountNulls("day_of_the_week"))
}

type stubService struct {
	coordinates map[string]geocoding.Coordinate
}

func (s *stubService) Name() string { return "stub" }

func (s *stubService) Geocode(ctx context.Context, place string) (geocoding.Coordinate, bool, error) {
	coordinate, known := s.coordinates[place]
	return coordinate, known, nil
}

func (s *stubService) Reverse(ctx context.Context, coordinate geocoding.Coordinate) (string, bool, error) {
	return "", false, nil
}

func TestAddCoordinates(t *testing.T) {
	table := frame.New()
	require.NoError(t, table.AddColumn("start_station_name", []any{
		"Millennium Park", "Navy Pier", "Millennium Park",
	}))

	service := &stubService{coordinates: map[string]geocoding.Coordinate{
		"Millennium Park": {Latitude: 41.884, Longitude: -87.625},
		"Navy Pier":       {Latitude: 41.891, Longitude: -87.607},
	}}
	geocoder := geocoding.NewGeocoder(table, "start", service, service, time.Second)

	require.NoError(t, AddCoordinates(context.Background(), table, "start", geocoder))

	latitude, ok := table.Float("start_latitude", 0)
	require.True(t, ok)
	assert.Equal(t, 41.884, latitude)

	// longitude carries the longitude component, not a copy of the latitude
	longitude, ok := table.Float("start_longitude", 0)
	require.True(t, ok)
	assert.Equal(t, -87.625, longitude)
}

func TestFinishFeatureEngineering(t *testing.T) {
	t.Run("Produces the engineered columns", func(t *testing.T) {
		table := tableWithLags(t)
		require.NoError(t, table.AddColumn("end_hour", []any{
			"2024-03-04 08:00:00",
			"2024-03-05 09:00:00",
		}))

		require.NoError(t, FinishFeatureEngineering(context.Background(), table, "end", nil))

		assert.True(t, table.HasColumn("hour"))
		assert.True(t, table.HasColumn("day_of_the_week"))
		assert.True(t, table.HasColumn(AverageTripsColumn))
		assert.False(t, table.HasColumn("end_hour"))
	})

	t.Run("Nulls in the engineered columns abort the run", func(t *testing.T) {
		table := tableWithLags(t)
		require.NoError(t, table.AddColumn("end_hour", []any{
			"2024-03-04 08:00:00",
			"garbage",
		}))

		err := FinishFeatureEngineering(context.Background(), table, "end", nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
