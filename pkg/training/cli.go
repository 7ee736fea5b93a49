package training

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/database"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/elastic_client"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train candidate models and register the best performer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenario",
				Usage:    `"start" for departures or "end" for arrivals`,
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "models",
				Usage:    "names of the models to train",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "version",
				Value: "1.0.0",
				Usage: "version to register the best model under",
			},
			&cli.StringFlag{
				Name:  "status",
				Value: "production",
				Usage: `"staging" or "production"`,
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
			if err := elastic_client.Connect(cfg.Elasticsearch, false); err != nil {
				return err
			}
			defer elastic_client.WaitUntilQueueEmpty()

			trainer, err := NewTrainer(c.String("scenario"), cfg)
			if err != nil {
				return err
			}

			return trainer.TrainModelsAndRegisterBest(
				context.Background(),
				c.StringSlice("models"),
				c.String("version"),
				c.String("status"),
			)
		},
	}
}
