package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRecentKey = "supply-sim:recent-runs"
	bestKeyPrefix    = "supply-sim:best:"
)

// RecentCache keeps the latest run records on a capped Redis list so
// other tools can pick up fresh results without touching the database.
type RecentCache struct {
	client *redis.Client
	key    string
	size   int64
}

// NewRecentCache wraps an existing Redis client. size caps how many
// records the list retains; key falls back to a shared default.
func NewRecentCache(client *redis.Client, key string, size int64) *RecentCache {
	if key == "" {
		key = defaultRecentKey
	}
	if size <= 0 {
		size = 50
	}
	return &RecentCache{client: client, key: key, size: size}
}

// Push prepends a record and trims the list to the configured size.
func (c *RecentCache) Push(ctx context.Context, rec *RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding run record: %w", err)
	}
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, c.key, data)
	pipe.LTrim(ctx, c.key, 0, c.size-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pushing run record: %w", err)
	}
	return nil
}

// Recent returns up to n of the latest records, newest first.
func (c *RecentCache) Recent(ctx context.Context, n int64) ([]*RunRecord, error) {
	if n <= 0 {
		n = c.size
	}
	raw, err := c.client.LRange(ctx, c.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading recent runs: %w", err)
	}
	recs := make([]*RunRecord, 0, len(raw))
	for _, item := range raw {
		var rec RunRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decoding run record: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

// PushBest stores rec under the scenario's best-run key when its total
// cost beats the record already there (or when none exists yet). Returns
// true when rec became the new best.
func (c *RecentCache) PushBest(ctx context.Context, rec *RunRecord) (bool, error) {
	if rec == nil || rec.Scenario == "" || rec.Summary == nil {
		return false, nil
	}
	key := bestKeyPrefix + rec.Scenario
	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// first run for this scenario
	case err != nil:
		return false, fmt.Errorf("reading best run: %w", err)
	default:
		var best RunRecord
		if err := json.Unmarshal([]byte(raw), &best); err == nil &&
			best.Summary != nil && best.Summary.TotalCost <= rec.Summary.TotalCost {
			return false, nil
		}
		// undecodable entries are overwritten
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encoding run record: %w", err)
	}
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		return false, fmt.Errorf("storing best run: %w", err)
	}
	return true, nil
}

// Best returns the lowest-cost record stored for a scenario, nil when the
// scenario has no recorded run.
func (c *RecentCache) Best(ctx context.Context, scenarioName string) (*RunRecord, error) {
	raw, err := c.client.Get(ctx, bestKeyPrefix+scenarioName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading best run: %w", err)
	}
	var rec RunRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decoding best run: %w", err)
	}
	return &rec, nil
}
