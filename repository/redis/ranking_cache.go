package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

const rankingKey = "teamboard:ranking:v1"

type rankingCache struct {
	client *redislib.Client
	ttl    time.Duration
}

// NewRankingCache stores the computed ranking as a JSON blob with a short TTL.
func NewRankingCache(client *redislib.Client, ttl time.Duration) repository.RankingCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &rankingCache{client: client, ttl: ttl}
}

func (c *rankingCache) Get(ctx context.Context) ([]domain.RankingEntry, bool, error) {
	raw, err := c.client.Get(ctx, rankingKey).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entries []domain.RankingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *rankingCache) Set(ctx context.Context, entries []domain.RankingEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, rankingKey, payload, c.ttl).Err()
}

func (c *rankingCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rankingKey).Err()
}
