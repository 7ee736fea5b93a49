package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

func setupTestApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()

	cfg := config.Defaults()
	cfg.Paths.Geodata = t.TempDir()

	require.NoError(t, geocoding.SaveRegistry(cfg.Paths.Geodata, "start", []geocoding.StationRecord{
		{
			StationID:   1,
			StationName: "Millennium Park",
			Coordinate:  geocoding.Coordinate{Latitude: 41.884, Longitude: -87.625},
		},
	}))

	app := fiber.New()
	StationsRouter(app.Group("/stations"), cfg)
	GeodataRouter(app.Group("/geodata"), cfg)

	return app, cfg
}

func TestStationsRoute(t *testing.T) {
	app, _ := setupTestApp(t)

	response, err := app.Test(httptest.NewRequest("GET", "/stations/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	var stations map[string][]geocoding.StationRecord
	require.NoError(t, json.Unmarshal(body, &stations))

	require.Len(t, stations["start"], 1)
	assert.Equal(t, "Millennium Park", stations["start"][0].StationName)

	// no geodata for the end scenario yet, still listed as empty
	assert.Empty(t, stations["end"])
}

func TestGeodataRoute(t *testing.T) {
	app, _ := setupTestApp(t)

	t.Run("Returns the scenario's registry", func(t *testing.T) {
		response, err := app.Test(httptest.NewRequest("GET", "/geodata/start", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, response.StatusCode)

		body, err := io.ReadAll(response.Body)
		require.NoError(t, err)

		var registry []geocoding.StationRecord
		require.NoError(t, json.Unmarshal(body, &registry))
		require.Len(t, registry, 1)
		assert.Equal(t, 1, registry[0].StationID)
	})

	t.Run("Rejects unknown scenarios", func(t *testing.T) {
		response, err := app.Test(httptest.NewRequest("GET", "/geodata/sideways", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, response.StatusCode)
	})

	t.Run("Missing geodata is a 404", func(t *testing.T) {
		response, err := app.Test(httptest.NewRequest("GET", "/geodata/end", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, response.StatusCode)
	})
}
