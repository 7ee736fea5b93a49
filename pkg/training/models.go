// Trip demand models. Model selection and hyperparameter search are out of
// scope here - models are an opaque fit/predict capability, and the built-in
// ones are deliberately simple baselines over the lag features.
package training

import (
	"encoding/json"
	"fmt"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/features"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

const TargetColumn = "trips_next_hour"

type Model interface {
	Name() string
	Fit(table *frame.Table, target []float64) error
	Predict(table *frame.Table) ([]float64, error)
}

// GetModel returns a fresh, unfitted model by name.
func GetModel(name string) (Model, error) {
	switch name {
	case "base":
		return &BaseModel{}, nil
	case "average":
		return &AverageModel{}, nil
	case "scaledaverage":
		return &ScaledAverageModel{Scale: 1}, nil
	default:
		return nil, fmt.Errorf("unknown model %q", name)
	}
}

// BaseModel predicts the count seen at the same hour one week earlier.
type BaseModel struct{}

func (m *BaseModel) Name() string { return "base" }

func (m *BaseModel) Fit(table *frame.Table, target []float64) error { return nil }

func (m *BaseModel) Predict(table *frame.Table) ([]float64, error) {
	return columnValues(table, features.LagColumn(168))
}

// AverageModel predicts the 4 week rolling average.
type AverageModel struct{}

func (m *AverageModel) Name() string { return "average" }

func (m *AverageModel) Fit(table *frame.Table, target []float64) error { return nil }

func (m *AverageModel) Predict(table *frame.Table) ([]float64, error) {
	return columnValues(table, features.AverageTripsColumn)
}

// ScaledAverageModel predicts the 4 week rolling average scaled by the ratio
// of observed to average demand learned during fitting.
type ScaledAverageModel struct {
	Scale float64 `json:"scale"`
}

func (m *ScaledAverageModel) Name() string { return "scaledaverage" }

func (m *ScaledAverageModel) Fit(table *frame.Table, target []float64) error {
	averages, err := columnValues(table, features.AverageTripsColumn)
	if err != nil {
		return err
	}
	if len(averages) != len(target) {
		return fmt.Errorf("feature rows (%d) do not match target rows (%d)", len(averages), len(target))
	}

	var targetSum, averageSum float64
	for i := range target {
		targetSum += target[i]
		averageSum += averages[i]
	}

	if averageSum == 0 {
		m.Scale = 1
		return nil
	}

	m.Scale = targetSum / averageSum
	return nil
}

func (m *ScaledAverageModel) Predict(table *frame.Table) ([]float64, error) {
	averages, err := columnValues(table, features.AverageTripsColumn)
	if err != nil {
		return nil, err
	}

	predictions := make([]float64, len(averages))
	for i, average := range averages {
		predictions[i] = m.Scale * average
	}

	return predictions, nil
}

func columnValues(table *frame.Table, name string) ([]float64, error) {
	if !table.HasColumn(name) {
		return nil, fmt.Errorf("table has no %s column", name)
	}

	values := make([]float64, table.Len())
	for row := 0; row < table.Len(); row++ {
		value, ok := table.Float(name, row)
		if !ok {
			return nil, fmt.Errorf("column %s row %d is null or not numeric", name, row)
		}
		values[row] = value
	}

	return values, nil
}

type modelArtifact struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

// MarshalModel serialises a model for the registry's artifact store.
func MarshalModel(model Model) ([]byte, error) {
	params, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(modelArtifact{Name: model.Name(), Params: params}, "", "  ")
}

// UnmarshalModel rebuilds a fitted model from a registry artifact.
func UnmarshalModel(contents []byte) (Model, error) {
	var artifact modelArtifact
	if err := json.Unmarshal(contents, &artifact); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	model, err := GetModel(artifact.Name)
	if err != nil {
		return nil, err
	}

	if len(artifact.Params) > 0 {
		if err := json.Unmarshal(artifact.Params, model); err != nil {
			return nil, fmt.Errorf("parse %s params: %w", artifact.Name, err)
		}
	}

	return model, nil
}
