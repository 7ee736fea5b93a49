package inference

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/tripimporter"
)

// EnsureGeodata loads a scenario's geo registry. When the file is missing it
// calls rebuild to regenerate the artifact and retries the load exactly
// once. Any other failure, including a second miss, is returned as is.
func EnsureGeodata(directory string, scenario string, rebuild func() error) ([]geocoding.StationRecord, error) {
	registry, err := geocoding.LoadRegistry(directory, scenario)
	if err == nil {
		return registry, nil
	}

	if !errors.Is(err, geocoding.ErrMissingGeodata) {
		return nil, err
	}

	log.Warn().Err(err).Msg("The geodata file is missing. Regenerating it...")

	if err := rebuild(); err != nil {
		return nil, err
	}

	return geocoding.LoadRegistry(directory, scenario)
}

// ensureRegistryForPredictions guarantees the scenario's geodata artifact
// exists before predictions are stored, so the dashboard can place them on
// the map. A missing registry is rebuilt by re-running the importer over a
// raw trips export.
func ensureRegistryForPredictions(ctx context.Context, cfg *config.Config, scenario string, tripsPath string) ([]geocoding.StationRecord, error) {
	importer := tripimporter.NewImporter(scenario, cfg)

	return EnsureGeodata(cfg.Paths.Geodata, scenario, func() error {
		if tripsPath == "" {
			return errors.New("the geodata file is missing and no raw trips export was given to rebuild it from")
		}

		return importer.Import(ctx, tripsPath)
	})
}
