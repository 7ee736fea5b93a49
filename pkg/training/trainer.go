// Package training builds the training dataset from the feature store,
// fits candidate models, scores them on a held-out tail, and registers the
// best performer.
package training

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/experiment"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/features"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/featurestore"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/modelregistry"
)

type Trainer struct {
	scenario string
	cfg      *config.Config
	registry *modelregistry.Registry
}

func NewTrainer(scenario string, cfg *config.Config) (*Trainer, error) {
	if scenario != "start" && scenario != "end" {
		return nil, fmt.Errorf(`scenario must be "start" or "end", got %q`, scenario)
	}

	return &Trainer{
		scenario: scenario,
		cfg:      cfg,
		registry: modelregistry.NewRegistry(cfg.Paths.Models),
	}, nil
}

func (t *Trainer) trainingDataPath() string {
	return filepath.Join(t.cfg.Paths.TrainingData, fmt.Sprintf("%ss.parquet", t.scenario))
}

// trainingColumns is the column layout of a cached training table, in the
// order the pipeline produced it.
func (t *Trainer) trainingColumns() []string {
	columns := []string{features.StationIDColumn(t.scenario)}
	for k := t.cfg.Features.InputSeqLen; k >= 1; k-- {
		columns = append(columns, features.LagColumn(k))
	}

	return append(columns, TargetColumn, "hour", "day_of_the_week", features.AverageTripsColumn)
}

// GetOrMakeTrainingData loads the cached training table, or builds it from
// the feature store and caches it when no parquet file exists yet.
func (t *Trainer) GetOrMakeTrainingData(ctx context.Context) (*frame.Table, error) {
	path := t.trainingDataPath()

	if _, err := os.Stat(path); err == nil {
		log.Info().Str("path", path).Msg("The training data has already been created and saved. Fetching it...")
		return readTrainingParquet(path, t.trainingColumns())
	}

	log.Warn().Msg("No training data is stored. Creating the dataset will take a while...")

	group := featurestore.SetupFeatureGroup(
		featurestore.SeriesGroupName(t.scenario),
		fmt.Sprintf("Hourly time series data showing when trips %s", t.scenario),
		t.cfg.Features.FeatureGroupVersion,
	)

	series, err := group.GetBatchData(ctx, time.Unix(0, 0), time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}

	table, err := features.MakeTrainingTable(series, t.scenario, t.cfg.Features.InputSeqLen, t.cfg.Features.StepSize)
	if err != nil {
		return nil, err
	}

	if err := features.FinishFeatureEngineering(ctx, table, t.scenario, nil); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(t.cfg.Paths.TrainingData, 0755); err != nil {
		return nil, err
	}
	if err := writeTrainingParquet(path, table); err != nil {
		return nil, err
	}

	log.Info().Int("rows", table.Len()).Str("path", path).Msg("Training data produced successfully")

	return table, nil
}

// Train fits one model, evaluates it on the chronological tail 10% of rows,
// logs an experiment run, and saves the fitted artifact. It returns the test
// MAE and the artifact path.
func (t *Trainer) Train(ctx context.Context, modelName string) (float64, string, error) {
	model, err := GetModel(modelName)
	if err != nil {
		return 0, "", err
	}

	table, err := t.GetOrMakeTrainingData(ctx)
	if err != nil {
		return 0, "", err
	}

	target, err := columnValues(table, TargetColumn)
	if err != nil {
		return 0, "", err
	}
	if err := table.DropColumn(TargetColumn); err != nil {
		return 0, "", err
	}

	trainSize := int(0.9 * float64(table.Len()))
	trainTable, err := table.Slice(0, trainSize)
	if err != nil {
		return 0, "", err
	}
	testTable, err := table.Slice(trainSize, table.Len())
	if err != nil {
		return 0, "", err
	}

	run := experiment.StartRun(
		fmt.Sprintf("%s model for the %ss of trips", modelName, t.scenario),
		t.scenario,
		modelName,
	)

	log.Info().Str("model", modelName).Msg("Fitting model...")
	if err := model.Fit(trainTable, target[:trainSize]); err != nil {
		return 0, "", err
	}

	predictions, err := model.Predict(testTable)
	if err != nil {
		return 0, "", err
	}

	testMAE, err := MeanAbsoluteError(target[trainSize:], predictions)
	if err != nil {
		return 0, "", err
	}

	run.LogMetric("test_mae", testMAE)
	run.End()

	contents, err := MarshalModel(model)
	if err != nil {
		return 0, "", err
	}

	artifactPath, err := t.registry.SaveArtifact(fmt.Sprintf("%s_for_%ss.json", modelName, t.scenario), contents)
	if err != nil {
		return 0, "", err
	}

	return testMAE, artifactPath, nil
}

// TrainModelsAndRegisterBest trains every named model and registers the one
// with the lowest test MAE under the given version and status.
func (t *Trainer) TrainModelsAndRegisterBest(ctx context.Context, modelNames []string, version string, status string) error {
	if status != modelregistry.StatusStaging && status != modelregistry.StatusProduction {
		return fmt.Errorf("%w: got %q", modelregistry.ErrInvalidStatus, status)
	}

	var best *modelregistry.ModelRecord
	for _, modelName := range modelNames {
		testMAE, artifactPath, err := t.Train(ctx, modelName)
		if err != nil {
			return fmt.Errorf("train %s: %w", modelName, err)
		}

		if best == nil || testMAE < best.TestMAE {
			best = &modelregistry.ModelRecord{
				Name:         modelName,
				Scenario:     t.scenario,
				Version:      version,
				Status:       status,
				TestMAE:      testMAE,
				ArtifactPath: artifactPath,
			}
		}
	}

	if best == nil {
		return fmt.Errorf("no models were trained")
	}

	log.Info().Str("model", best.Name).Float64("testmae", best.TestMAE).Msg("The best performing model is being pushed to the registry")

	return t.registry.Push(ctx, *best)
}

// MeanAbsoluteError is the evaluation metric for every model.
func MeanAbsoluteError(observed []float64, predicted []float64) (float64, error) {
	if len(observed) != len(predicted) {
		return 0, fmt.Errorf("observed rows (%d) do not match predicted rows (%d)", len(observed), len(predicted))
	}

	absoluteErrors := make([]float64, len(observed))
	for i := range observed {
		absoluteErrors[i] = math.Abs(observed[i] - predicted[i])
	}

	return stats.Mean(absoluteErrors)
}
