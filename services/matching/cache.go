package matching

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"m3allem/models"

	"github.com/go-redis/redis/v8"
)

// MatchCache stores ranked results keyed by job and pool fingerprint.
type MatchCache interface {
	Get(ctx context.Context, key string) ([]models.MatchResult, bool, error)
	Set(ctx context.Context, key string, results []models.MatchResult, ttl time.Duration) error
}

type RedisMatchCache struct {
	Client *redis.Client
}

func NewRedisMatchCache(client *redis.Client) *RedisMatchCache {
	return &RedisMatchCache{Client: client}
}

func (c *RedisMatchCache) Get(ctx context.Context, key string) ([]models.MatchResult, bool, error) {
	cached, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var results []models.MatchResult
	if err := json.Unmarshal([]byte(cached), &results); err != nil {
		return nil, false, fmt.Errorf("corrupt cached matches for %s: %w", key, err)
	}
	return results, true, nil
}

func (c *RedisMatchCache) Set(ctx context.Context, key string, results []models.MatchResult, ttl time.Duration) error {
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	if err := c.Client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// cacheKey changes whenever anything that feeds the score changes: the job, a
// technician's profile, its booking record, or the client's history.
func cacheKey(job models.Job, pool []models.Technician, history []models.Booking, stats map[string]models.TechnicianStats) (string, error) {
	type techPrint struct {
		ID        string
		UpdatedAt time.Time
		Rating    float64
		Reviews   int
		Available bool
		Stats     models.TechnicianStats
	}
	type historyPrint struct {
		ID     string
		Status models.BookingStatus
	}
	fp := struct {
		Job     models.Job
		Pool    []techPrint
		History []historyPrint
	}{Job: job}
	for _, t := range pool {
		fp.Pool = append(fp.Pool, techPrint{t.ID, t.UpdatedAt, t.Rating, t.ReviewCount, t.IsAvailable, stats[t.ID]})
	}
	for _, b := range history {
		fp.History = append(fp.History, historyPrint{b.ID, b.Status})
	}
	sort.Slice(fp.History, func(i, j int) bool { return fp.History[i].ID < fp.History[j].ID })

	raw, err := json.Marshal(fp)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint match input: %w", err)
	}
	return fmt.Sprintf("match:%s:%x", job.ID, sha256.Sum256(raw)), nil
}
