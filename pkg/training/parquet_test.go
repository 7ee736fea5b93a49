package training

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

func TestTrainingParquetRoundTrip(t *testing.T) {
	table := frame.New()
	require.NoError(t, table.AddColumn("start_station_id", []any{1.0, 2.0}))
	require.NoError(t, table.AddColumn("trips_next_hour", []any{5.0, 7.5}))

	path := filepath.Join(t.TempDir(), "starts.parquet")
	require.NoError(t, writeTrainingParquet(path, table))

	loaded, err := readTrainingParquet(path, []string{"start_station_id", "trips_next_hour"})
	require.NoError(t, err)

	require.Equal(t, 2, loaded.Len())

	value, ok := loaded.Float("trips_next_hour", 1)
	require.True(t, ok)
	assert.Equal(t, 7.5, value)
}

func TestWriteTrainingParquetRejectsNulls(t *testing.T) {
	table := frame.New()
	require.NoError(t, table.AddColumn("start_station_id", []any{1.0, nil}))

	path := filepath.Join(t.TempDir(), "starts.parquet")
	assert.Error(t, writeTrainingParquet(path, table))
}
