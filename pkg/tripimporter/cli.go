package tripimporter

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/database"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Convert raw Divvy trip exports into hourly series",
		Subcommands: []*cli.Command{
			{
				Name:  "trips",
				Usage: "Import a raw trips CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "path to the raw trips export",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "scenario",
						Usage:    `"start" for departures or "end" for arrivals`,
						Required: true,
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

					importer := NewImporter(c.String("scenario"), cfg)

					return importer.Import(context.Background(), c.String("file"))
				},
			},
		},
	}
}
