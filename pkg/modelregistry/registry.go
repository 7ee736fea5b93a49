// Package modelregistry versions trained models: metadata documents live in
// MongoDB, model artifacts live as JSON files under the models directory.
package modelregistry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/database"
)

const (
	StatusStaging    = "staging"
	StatusProduction = "production"
)

var ErrInvalidStatus = errors.New(`model status must be "staging" or "production"`)
var ErrModelNotFound = errors.New("no registered model matches")

type ModelRecord struct {
	Name             string    `bson:"name"`
	Scenario         string    `bson:"scenario"`
	Version          string    `bson:"version"`
	Status           string    `bson:"status"`
	TestMAE          float64   `bson:"testmae"`
	ArtifactPath     string    `bson:"artifactpath"`
	CreationDateTime time.Time `bson:"creationdatetime"`
}

type Registry struct {
	collection *mongo.Collection
	modelsDir  string
}

func NewRegistry(modelsDir string) *Registry {
	return &Registry{
		collection: database.GetCollection("model_registry"),
		modelsDir:  modelsDir,
	}
}

// Push registers a model. The record's artifact must already be saved.
func (r *Registry) Push(ctx context.Context, record ModelRecord) error {
	if record.Status != StatusStaging && record.Status != StatusProduction {
		return fmt.Errorf("%w: got %q", ErrInvalidStatus, record.Status)
	}

	record.CreationDateTime = time.Now()

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("register model %s: %w", record.Name, err)
	}

	log.Info().
		Str("model", record.Name).
		Str("scenario", record.Scenario).
		Str("version", record.Version).
		Str("status", record.Status).
		Msg("Pushed model to the registry")

	return nil
}

// Latest returns the most recently registered model for a scenario and
// status.
func (r *Registry) Latest(ctx context.Context, scenario string, status string) (*ModelRecord, error) {
	var record ModelRecord
	err := r.collection.FindOne(ctx,
		bson.M{"scenario": scenario, "status": status},
		options.FindOne().SetSort(bson.D{{Key: "creationdatetime", Value: -1}}),
	).Decode(&record)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: scenario %s, status %s", ErrModelNotFound, scenario, status)
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// SaveArtifact writes a serialised model to the models directory and returns
// its path.
func (r *Registry) SaveArtifact(fileName string, contents []byte) (string, error) {
	if err := os.MkdirAll(r.modelsDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(r.modelsDir, fileName)
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return "", err
	}

	log.Info().Str("path", path).Msg("Saved model to disk")

	return path, nil
}

func (r *Registry) LoadArtifact(path string) ([]byte, error) {
	return os.ReadFile(path)
}
