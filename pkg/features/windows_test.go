package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlySeries(stationID int, start time.Time, counts []float64) []SeriesPoint {
	points := make([]SeriesPoint, len(counts))
	for i, count := range counts {
		points[i] = SeriesPoint{
			StationID: stationID,
			Hour:      start.Add(time.Duration(i) * time.Hour),
			Trips:     count,
		}
	}
	return points
}

func TestMakeTrainingTable(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Windows slide by the step size", func(t *testing.T) {
		series := hourlySeries(7, start, []float64{1, 2, 3, 4, 5, 6, 7, 8})

		table, err := MakeTrainingTable(series, "start", 4, 2)
		require.NoError(t, err)

		// windows: [1 2 3 4]->5, [3 4 5 6]->7
		require.Equal(t, 2, table.Len())

		oldest, ok := table.Float(LagColumn(4), 0)
		require.True(t, ok)
		assert.Equal(t, 1.0, oldest)

		newest, ok := table.Float(LagColumn(1), 0)
		require.True(t, ok)
		assert.Equal(t, 4.0, newest)

		target, ok := table.Float("trips_next_hour", 0)
		require.True(t, ok)
		assert.Equal(t, 5.0, target)

		target, ok = table.Float("trips_next_hour", 1)
		require.True(t, ok)
		assert.Equal(t, 7.0, target)

		stationID, ok := table.Float(StationIDColumn("start"), 0)
		require.True(t, ok)
		assert.Equal(t, 7.0, stationID)
	})

	t.Run("Stations are windowed independently", func(t *testing.T) {
		series := append(
			hourlySeries(2, start, []float64{1, 1, 1, 1, 1}),
			hourlySeries(1, start, []float64{9, 9, 9, 9, 9})...,
		)

		table, err := MakeTrainingTable(series, "end", 4, 24)
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())

		// rows come out ordered by station ID
		first, ok := table.Float(StationIDColumn("end"), 0)
		require.True(t, ok)
		assert.Equal(t, 1.0, first)
	})

	t.Run("Too short a series yields no rows", func(t *testing.T) {
		series := hourlySeries(1, start, []float64{1, 2, 3})

		table, err := MakeTrainingTable(series, "start", 4, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("Invalid parameters are rejected", func(t *testing.T) {
		_, err := MakeTrainingTable(nil, "start", 0, 24)
		assert.Error(t, err)
	})
}
