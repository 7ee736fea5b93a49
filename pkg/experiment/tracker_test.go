package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	run := StartRun("base model for the starts of trips", "start", "base")

	// the scenario is its own field, tags only carry what the caller adds
	assert.Equal(t, "start", run.Scenario)
	assert.Equal(t, []string{"base"}, run.Tags)
	assert.False(t, run.StartedAt.IsZero())

	run.LogMetric("test_mae", 2.5)
	require.Contains(t, run.Metrics, "test_mae")
	assert.Equal(t, 2.5, run.Metrics["test_mae"])

	// without an Elasticsearch connection End only stamps the run
	run.End()
	assert.False(t, run.EndedAt.IsZero())
}
