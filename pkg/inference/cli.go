package inference

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/database"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/modelregistry"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Predict hourly trip counts using the registered model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenario",
				Usage:    `"start" for departures or "end" for arrivals`,
				Required: true,
			},
			&cli.StringFlag{
				Name:  "status",
				Value: modelregistry.StatusProduction,
				Usage: "registry status of the model to use",
			},
			&cli.TimestampFlag{
				Name:   "target-hour",
				Layout: time.RFC3339,
				Usage:  "hour to predict, defaults to the next full hour",
			},
			&cli.StringFlag{
				Name:  "trips-file",
				Usage: "raw trips export used to rebuild the geo registry if it is missing",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			if err := database.Connect(cfg.Mongo); err != nil {
				return err
			}

			targetHour := time.Now().UTC().Truncate(time.Hour).Add(time.Hour)
			if c.Timestamp("target-hour") != nil {
				targetHour = *c.Timestamp("target-hour")
			}

			service, err := NewService(c.String("scenario"), cfg)
			if err != nil {
				return err
			}

			registry, err := ensureRegistryForPredictions(
				context.Background(), cfg, c.String("scenario"), c.String("trips-file"),
			)
			if err != nil {
				return err
			}

			log.Info().Int("stations", len(registry)).Msg("Geo registry ready")

			records, err := service.Predict(context.Background(), c.String("status"), targetHour)
			if err != nil {
				return err
			}

			log.Info().Int("stations", len(records)).Msg("Stored predictions")

			return nil
		},
	}
}
