// Package inference turns the latest stored series into features, runs the
// registered model over them, and writes the per-station predictions back to
// their own feature group.
package inference

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/features"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/featurestore"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/modelregistry"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/training"
)

// lookbackDays is how much prior series the feature rebuild fetches. Four
// weeks of lags only need 28 days, but windowing wants the slack.
const lookbackDays = 168

type Service struct {
	scenario string
	cfg      *config.Config
	registry *modelregistry.Registry

	seriesGroup      *featurestore.FeatureGroup
	predictionsGroup *featurestore.FeatureGroup
}

func NewService(scenario string, cfg *config.Config) (*Service, error) {
	if scenario != "start" && scenario != "end" {
		return nil, fmt.Errorf(`scenario must be "start" or "end", got %q`, scenario)
	}

	return &Service{
		scenario: scenario,
		cfg:      cfg,
		registry: modelregistry.NewRegistry(cfg.Paths.Models),
		seriesGroup: featurestore.SetupFeatureGroup(
			featurestore.SeriesGroupName(scenario),
			fmt.Sprintf("Hourly time series data showing when trips %s", scenario),
			cfg.Features.FeatureGroupVersion,
		),
		predictionsGroup: featurestore.SetupFeatureGroup(
			featurestore.PredictionsGroupName(scenario),
			fmt.Sprintf("Model predictions for trip %ss", scenario),
			cfg.Features.FeatureGroupVersion,
		),
	}, nil
}

// FetchTimeSeriesAndMakeFeatures reads the series leading up to the target
// hour from the offline feature store and rebuilds the feature table the
// model was trained on.
func (s *Service) FetchTimeSeriesAndMakeFeatures(ctx context.Context, targetHour time.Time) (*frame.Table, error) {
	start := targetHour.Add(-lookbackDays * 24 * time.Hour)

	log.Info().Time("from", start).Time("to", targetHour).Msg("Fetching time series data from the offline feature store...")

	series, err := s.seriesGroup.GetBatchData(ctx, start, targetHour)
	if err != nil {
		return nil, err
	}

	table, err := features.MakeInferenceTable(series, s.scenario, s.cfg.Features.InputSeqLen, targetHour)
	if err != nil {
		return nil, err
	}

	if err := features.FinishFeatureEngineering(ctx, table, s.scenario, nil); err != nil {
		return nil, err
	}

	return table, nil
}

// GetModelPredictions runs the model over the feature table and shapes the
// output into one record per station, rounded to whole trips.
func (s *Service) GetModelPredictions(model training.Model, table *frame.Table, targetHour time.Time) ([]featurestore.PredictionRecord, error) {
	predictions, err := model.Predict(table)
	if err != nil {
		return nil, err
	}

	records := make([]featurestore.PredictionRecord, len(predictions))
	for row, prediction := range predictions {
		stationID, ok := table.Float(features.StationIDColumn(s.scenario), row)
		if !ok {
			return nil, fmt.Errorf("row %d has no station ID", row)
		}

		records[row] = featurestore.PredictionRecord{
			ModelName:      model.Name(),
			StationID:      int(stationID),
			Hour:           targetHour,
			PredictedTrips: math.Round(prediction),
		}
	}

	return records, nil
}

// Predict runs the full inference pass for one hour using the most recently
// registered model of the given status, and stores the results.
func (s *Service) Predict(ctx context.Context, status string, targetHour time.Time) ([]featurestore.PredictionRecord, error) {
	record, err := s.registry.Latest(ctx, s.scenario, status)
	if err != nil {
		return nil, err
	}

	contents, err := s.registry.LoadArtifact(record.ArtifactPath)
	if err != nil {
		return nil, fmt.Errorf("load model artifact: %w", err)
	}

	model, err := training.UnmarshalModel(contents)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("model", record.Name).
		Str("version", record.Version).
		Msgf("Predicting %s for %s", config.DisplayedScenarioName(s.scenario), targetHour.Format(time.RFC3339))

	table, err := s.FetchTimeSeriesAndMakeFeatures(ctx, targetHour)
	if err != nil {
		return nil, err
	}

	records, err := s.GetModelPredictions(model, table, targetHour)
	if err != nil {
		return nil, err
	}

	if err := s.predictionsGroup.PushPredictions(ctx, records); err != nil {
		return nil, err
	}

	return records, nil
}

// LoadPredictionsFromStore reads a model's stored predictions between two
// hours.
func (s *Service) LoadPredictionsFromStore(ctx context.Context, modelName string, from time.Time, to time.Time) ([]featurestore.PredictionRecord, error) {
	log.Info().Msgf(
		"Fetching predicted %s between %d:00 and %d:00",
		config.DisplayedScenarioName(s.scenario), from.Hour(), to.Hour(),
	)

	return s.predictionsGroup.GetPredictions(ctx, modelName, from, to)
}
