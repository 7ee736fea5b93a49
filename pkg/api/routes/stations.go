package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

// StationsRouter lists every known station, grouped by scenario. A scenario
// with no geodata yet shows up as an empty list rather than an error.
func StationsRouter(router fiber.Router, cfg *config.Config) {
	router.Get("/", func(c *fiber.Ctx) error {
		stations := fiber.Map{}

		for _, scenario := range []string{"start", "end"} {
			registry, err := geocoding.LoadRegistry(cfg.Paths.Geodata, scenario)
			if err != nil {
				if !errors.Is(err, geocoding.ErrMissingGeodata) {
					return err
				}
				registry = []geocoding.StationRecord{}
			}

			stations[scenario] = registry
		}

		return c.JSON(stations)
	})
}
