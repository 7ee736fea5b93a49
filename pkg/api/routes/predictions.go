package routes

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/featurestore"
)

func PredictionsRouter(router fiber.Router, cfg *config.Config, predictionsCache *PredictionsCache) {
	router.Get("/:scenario", func(c *fiber.Ctx) error {
		scenario := c.Params("scenario")
		if scenario != "start" && scenario != "end" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": `scenario must be "start" or "end"`,
			})
		}

		modelName := c.Query("model", "base")

		now := time.Now().UTC().Truncate(time.Hour)
		from := now.Add(-24 * time.Hour)
		to := now.Add(time.Hour)

		cacheKey := fmt.Sprintf("predictions:%s:%s:%d", scenario, modelName, now.Unix())
		if records, cached := predictionsCache.Get(c.Context(), cacheKey); cached {
			return c.JSON(records)
		}

		group := featurestore.SetupFeatureGroup(
			featurestore.PredictionsGroupName(scenario),
			fmt.Sprintf("Model predictions for trip %ss", scenario),
			cfg.Features.FeatureGroupVersion,
		)

		records, err := group.GetPredictions(c.Context(), modelName, from, to)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No predictions are stored for this model and scenario",
			})
		}

		predictionsCache.Set(c.Context(), cacheKey, records)

		return c.JSON(records)
	})
}
