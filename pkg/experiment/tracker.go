// Package experiment records training runs. Runs and their metrics are
// indexed into Elasticsearch when it is configured; otherwise they only
// appear in the logs.
package experiment

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/elastic_client"
)

const runsIndexName = "divvy-experiment-runs-1"

type Run struct {
	Name     string             `json:"name"`
	Scenario string             `json:"scenario"`
	Tags     []string           `json:"tags"`
	Metrics  map[string]float64 `json:"metrics"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

func StartRun(name string, scenario string, tags ...string) *Run {
	log.Info().Str("run", name).Str("scenario", scenario).Msg("Starting experiment run")

	return &Run{
		Name:      name,
		Scenario:  scenario,
		Tags:      tags,
		Metrics:   map[string]float64{},
		StartedAt: time.Now(),
	}
}

func (r *Run) LogMetric(name string, value float64) {
	r.Metrics[name] = value
	log.Info().Str("run", r.Name).Float64(name, value).Msg("Logged metric")
}

// End closes the run and ships it to the experiment index.
func (r *Run) End() {
	r.EndedAt = time.Now()

	document, err := json.Marshal(r)
	if err != nil {
		log.Error().Err(err).Str("run", r.Name).Msg("Failed to serialise experiment run")
		return
	}

	elastic_client.IndexRequest(runsIndexName, bytes.NewReader(document))
}
