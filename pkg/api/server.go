// Package api is the dashboard backend: it serves the geo registry and the
// stored model predictions over HTTP.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/api/routes"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
)

func SetupServer(listen string, cfg *config.Config) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	predictionsCache := &routes.PredictionsCache{}
	predictionsCache.Setup()

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.StationsRouter(group.Group("/stations"), cfg)
	routes.GeodataRouter(group.Group("/geodata"), cfg)
	routes.PredictionsRouter(group.Group("/predictions"), cfg, predictionsCache)

	return webApp.Listen(listen)
}
