package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

func TestEnsureGeodata(t *testing.T) {
	t.Run("Missing file triggers exactly one rebuild", func(t *testing.T) {
		directory := t.TempDir()
		rebuilds := 0

		registry, err := EnsureGeodata(directory, "start", func() error {
			rebuilds++
			return geocoding.SaveRegistry(directory, "start", []geocoding.StationRecord{
				{StationID: 1, StationName: "Clark St & Lake St"},
			})
		})

		require.NoError(t, err)
		assert.Equal(t, 1, rebuilds)
		require.Len(t, registry, 1)
		assert.Equal(t, "Clark St & Lake St", registry[0].StationName)
	})

	t.Run("Existing file skips the rebuild", func(t *testing.T) {
		directory := t.TempDir()
		require.NoError(t, geocoding.SaveRegistry(directory, "end", []geocoding.StationRecord{
			{StationID: 2, StationName: "Navy Pier"},
		}))

		registry, err := EnsureGeodata(directory, "end", func() error {
			t.Fatal("rebuild must not run when the file exists")
			return nil
		})

		require.NoError(t, err)
		assert.Len(t, registry, 1)
	})

	t.Run("Failing rebuild propagates", func(t *testing.T) {
		boom := errors.New("importer failed")

		_, err := EnsureGeodata(t.TempDir(), "start", func() error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("A second miss after rebuild is returned", func(t *testing.T) {
		_, err := EnsureGeodata(t.TempDir(), "start", func() error {
			return nil // claims success but writes nothing
		})

		assert.ErrorIs(t, err, geocoding.ErrMissingGeodata)
	})
}

func TestEnsureRegistryForPredictions(t *testing.T) {
	t.Run("Existing geodata is served without a trips export", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Paths.Geodata = t.TempDir()

		require.NoError(t, geocoding.SaveRegistry(cfg.Paths.Geodata, "start", []geocoding.StationRecord{
			{StationID: 7, StationName: "Millennium Park"},
		}))

		registry, err := ensureRegistryForPredictions(context.Background(), cfg, "start", "")

		require.NoError(t, err)
		require.Len(t, registry, 1)
		assert.Equal(t, "Millennium Park", registry[0].StationName)
	})

	t.Run("Missing geodata with no trips export to rebuild from fails", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Paths.Geodata = t.TempDir()

		_, err := ensureRegistryForPredictions(context.Background(), cfg, "start", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no raw trips export")
	})
}
