package featurestore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PredictionRecord is one model's predicted trip count for one station and
// hour.
type PredictionRecord struct {
	ModelName      string    `bson:"model_name" json:"model_name"`
	StationID      int       `bson:"station_id" json:"station_id"`
	Hour           time.Time `bson:"timestamp" json:"hour"`
	PredictedTrips float64   `bson:"predicted_trips" json:"predicted_trips"`
}

// PushPredictions upserts prediction rows keyed by (model, station, hour) so
// a re-run of inference for the same hour overwrites rather than duplicates.
func (group *FeatureGroup) PushPredictions(ctx context.Context, records []PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	var operations []mongo.WriteModel
	for _, record := range records {
		operations = append(operations, mongo.NewReplaceOneModel().
			SetFilter(bson.M{
				"model_name": record.ModelName,
				"station_id": record.StationID,
				"timestamp":  record.Hour,
			}).
			SetReplacement(record).
			SetUpsert(true))
	}

	result, err := group.collection.BulkWrite(ctx, operations)
	if err != nil {
		return fmt.Errorf("push predictions to %s: %w", group.Name, err)
	}

	log.Info().
		Str("featuregroup", group.Name).
		Int64("inserted", result.UpsertedCount).
		Int64("modified", result.ModifiedCount).
		Msg("Pushed predictions to the feature store")

	return nil
}

// GetPredictions reads one model's predictions whose hour falls inside
// [from, to], ordered by hour then station.
func (group *FeatureGroup) GetPredictions(ctx context.Context, modelName string, from time.Time, to time.Time) ([]PredictionRecord, error) {
	cursor, err := group.collection.Find(ctx,
		bson.M{
			"model_name": modelName,
			"timestamp":  bson.M{"$gte": from, "$lte": to},
		},
		options.Find().SetSort(bson.D{
			{Key: "timestamp", Value: 1},
			{Key: "station_id", Value: 1},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", group.Name, err)
	}

	var records []PredictionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode %s predictions: %w", group.Name, err)
	}

	return records, nil
}
