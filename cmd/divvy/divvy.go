package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/api"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/inference"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/training"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/tripimporter"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("DIVVY_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("DIVVY_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "divvy",
		Description: "Single binary of truth for the Divvy trip predictor - import, train, predict, serve",

		Commands: []*cli.Command{
			tripimporter.RegisterCLI(),
			training.RegisterCLI(),
			inference.RegisterCLI(),
			api.RegisterCLI(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}
