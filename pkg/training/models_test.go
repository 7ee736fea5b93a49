package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/features"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

func featureTable(t *testing.T) *frame.Table {
	t.Helper()

	table := frame.New()
	require.NoError(t, table.AddColumn(features.LagColumn(168), []any{10.0, 20.0}))
	require.NoError(t, table.AddColumn(features.AverageTripsColumn, []any{8.0, 16.0}))

	return table
}

func TestBaseModel(t *testing.T) {
	model, err := GetModel("base")
	require.NoError(t, err)

	predictions, err := model.Predict(featureTable(t))
	require.NoError(t, err)

	// same hour last week
	assert.Equal(t, []float64{10, 20}, predictions)
}

func TestAverageModel(t *testing.T) {
	model, err := GetModel("average")
	require.NoError(t, err)

	predictions, err := model.Predict(featureTable(t))
	require.NoError(t, err)

	assert.Equal(t, []float64{8, 16}, predictions)
}

func TestScaledAverageModel(t *testing.T) {
	model, err := GetModel("scaledaverage")
	require.NoError(t, err)

	table := featureTable(t)
	require.NoError(t, model.Fit(table, []float64{16, 32}))

	predictions, err := model.Predict(table)
	require.NoError(t, err)

	// fitted scale is 2x
	assert.Equal(t, []float64{16, 32}, predictions)
}

func TestModelArtifactRoundTrip(t *testing.T) {
	model := &ScaledAverageModel{Scale: 1.5}

	contents, err := MarshalModel(model)
	require.NoError(t, err)

	loaded, err := UnmarshalModel(contents)
	require.NoError(t, err)

	scaled, ok := loaded.(*ScaledAverageModel)
	require.True(t, ok)
	assert.Equal(t, 1.5, scaled.Scale)
}

func TestUnknownModel(t *testing.T) {
	_, err := GetModel("xgboost")
	assert.Error(t, err)
}

func TestMeanAbsoluteError(t *testing.T) {
	mae, err := MeanAbsoluteError([]float64{1, 2, 3}, []float64{2, 2, 5})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mae, 1e-9)

	_, err = MeanAbsoluteError([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
}
