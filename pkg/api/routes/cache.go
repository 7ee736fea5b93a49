package routes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/featurestore"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/redis_client"
)

// PredictionsCache keeps recently served prediction batches in Redis so that
// dashboard refreshes do not hammer the feature store.
type PredictionsCache struct {
	Cache *cache.Cache[string]
}

func (p *PredictionsCache) Setup() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(30*time.Minute))

	p.Cache = cache.New[string](redisStore)
}

func (p *PredictionsCache) Get(ctx context.Context, key string) ([]featurestore.PredictionRecord, bool) {
	cacheValue, err := p.Cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var records []featurestore.PredictionRecord
	if err := json.Unmarshal([]byte(cacheValue), &records); err != nil {
		return nil, false
	}

	return records, true
}

func (p *PredictionsCache) Set(ctx context.Context, key string, records []featurestore.PredictionRecord) {
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return
	}

	p.Cache.Set(ctx, key, string(recordsJSON))
}
