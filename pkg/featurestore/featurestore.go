// Package featurestore persists the hourly trip series and the model
// predictions as versioned feature groups in MongoDB, and reads batches of
// them back by event-time range.
package featurestore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/database"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/features"
)

// FeatureGroup is one collection of time-indexed rows, keyed by station and
// event time.
type FeatureGroup struct {
	Name        string
	Description string
	Version     int

	collection *mongo.Collection
}

// SetupFeatureGroup binds a feature group to its backing collection,
// creating it implicitly on first write.
func SetupFeatureGroup(name string, description string, version int) *FeatureGroup {
	return &FeatureGroup{
		Name:        name,
		Description: description,
		Version:     version,
		collection:  database.GetCollection(name),
	}
}

// SeriesGroupName is the feature group holding a scenario's hourly series.
func SeriesGroupName(scenario string) string {
	return fmt.Sprintf("%s_feature_group", scenario)
}

// PredictionsGroupName is the feature group holding a scenario's model
// predictions.
func PredictionsGroupName(scenario string) string {
	return fmt.Sprintf("%s_predictions_feature_group", scenario)
}

// PushSeries upserts hourly series points, keyed by (station, hour), so
// re-imports of overlapping months stay idempotent.
func (group *FeatureGroup) PushSeries(ctx context.Context, points []features.SeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	var operations []mongo.WriteModel
	for _, point := range points {
		operations = append(operations, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"station_id": point.StationID, "timestamp": point.Hour}).
			SetReplacement(bson.M{
				"station_id": point.StationID,
				"timestamp":  point.Hour,
				"trips":      point.Trips,
			}).
			SetUpsert(true))
	}

	result, err := group.collection.BulkWrite(ctx, operations)
	if err != nil {
		return fmt.Errorf("push series to %s: %w", group.Name, err)
	}

	log.Info().
		Str("featuregroup", group.Name).
		Int64("inserted", result.UpsertedCount).
		Int64("modified", result.ModifiedCount).
		Msg("Pushed series to the feature store")

	return nil
}

// GetBatchData reads every series point whose event time falls inside
// [start, end), ordered by station then hour.
func (group *FeatureGroup) GetBatchData(ctx context.Context, start time.Time, end time.Time) ([]features.SeriesPoint, error) {
	cursor, err := group.collection.Find(ctx,
		bson.M{"timestamp": bson.M{"$gte": start, "$lt": end}},
		options.Find().SetSort(bson.D{
			{Key: "station_id", Value: 1},
			{Key: "timestamp", Value: 1},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", group.Name, err)
	}

	var points []features.SeriesPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("decode %s batch: %w", group.Name, err)
	}

	return points, nil
}
