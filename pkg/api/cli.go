package api

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/database"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/redis_client"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the dashboard web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
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
					if err := redis_client.Connect(cfg.Redis); err != nil {
						log.Fatal().Err(err).Msg("Failed to connect to Redis")
					}

					return SetupServer(c.String("listen"), cfg)
				},
			},
		},
	}
}
