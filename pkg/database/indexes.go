package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createFeatureGroupIndexes()
	createModelRegistryIndexes()
}

func createFeatureGroupIndexes() {
	for _, scenario := range []string{"start", "end"} {
		seriesCollection := GetCollection(fmt.Sprintf("%s_feature_group", scenario))
		_, err := seriesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "station_id", Value: 1},
					{Key: "timestamp", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "timestamp", Value: 1}},
			},
		}, options.CreateIndexes())
		if err != nil {
			log.Error().Err(err).Msg("Creating Index")
		}

		predictionsCollection := GetCollection(fmt.Sprintf("%s_predictions_feature_group", scenario))
		_, err = predictionsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "model_name", Value: 1},
					{Key: "station_id", Value: 1},
					{Key: "timestamp", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "timestamp", Value: 1}},
			},
		}, options.CreateIndexes())
		if err != nil {
			log.Error().Err(err).Msg("Creating Index")
		}
	}
}

func createModelRegistryIndexes() {
	modelsCollection := GetCollection("model_registry")
	_, err := modelsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "scenario", Value: 1},
				{Key: "status", Value: 1},
				{Key: "creationdatetime", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
