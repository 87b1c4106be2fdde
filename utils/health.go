package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     *bool     `json:"mongo,omitempty"`
	Redis     *bool     `json:"redis,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthMonitor keeps the latest health snapshot of the optional backends.
type HealthMonitor struct {
	redis *redis.Client
	mongo *mongo.Client

	mu      sync.RWMutex
	current HealthStatus
}

// NewHealthMonitor accepts nil clients for backends that are not configured.
func NewHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client) *HealthMonitor {
	return &HealthMonitor{redis: redisClient, mongo: mongoClient}
}

// Status returns latest stored health snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Check pings every configured backend once and stores the result.
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now().UTC()}
	if h.redis != nil {
		ok := h.redis.Ping(ctx).Err() == nil
		status.Redis = &ok
	}
	if h.mongo != nil {
		ok := h.mongo.Ping(ctx, nil) == nil
		status.Mongo = &ok
	}
	h.mu.Lock()
	h.current = status
	h.mu.Unlock()
	return status
}

// Start performs periodic health checks until ctx is cancelled.
func (h *HealthMonitor) Start(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		h.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}
