package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

func GeodataRouter(router fiber.Router, cfg *config.Config) {
	router.Get("/:scenario", func(c *fiber.Ctx) error {
		scenario := c.Params("scenario")
		if scenario != "start" && scenario != "end" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": `scenario must be "start" or "end"`,
			})
		}

		registry, err := geocoding.LoadRegistry(cfg.Paths.Geodata, scenario)
		if err != nil {
			if errors.Is(err, geocoding.ErrMissingGeodata) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "No geodata has been generated for this scenario yet",
				})
			}
			return err
		}

		return c.JSON(registry)
	})
}
