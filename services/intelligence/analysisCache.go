package intelligence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"m3allem/models"
	"m3allem/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const analysisPrefix = "analysis:"

// RedisAnalysisCache remembers analyzer answers so that resubmitting the same request
// does not call the model twice.
type RedisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAnalysisCache(client *redis.Client, ttl time.Duration) *RedisAnalysisCache {
	return &RedisAnalysisCache{client: client, ttl: ttl}
}

func (s *RedisAnalysisCache) Get(ctx context.Context, key string) (*models.AnalysisSignal, error) {
	data, err := s.client.Get(ctx, analysisPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var signal models.AnalysisSignal
	if err := json.Unmarshal([]byte(data), &signal); err != nil {
		return nil, err
	}
	return &signal, nil
}

func (s *RedisAnalysisCache) Set(ctx context.Context, key string, signal models.AnalysisSignal) error {
	b, err := json.Marshal(signal)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, analysisPrefix+key, b, s.ttl).Err()
}

// CachedAnalyzer fronts an Analyzer with the redis cache. Cache failures are logged
// and the analyzer is called directly.
type CachedAnalyzer struct {
	Analyzer Analyzer
	Cache    *RedisAnalysisCache
	Logger   *zap.Logger
}

func (c *CachedAnalyzer) Analyze(ctx context.Context, in models.AnalysisInput) (models.AnalysisSignal, error) {
	logger := utils.LoggerOr(c.Logger)
	key := analysisKey(in)

	if cached, err := c.Cache.Get(ctx, key); err != nil {
		logger.Warn("Analyze: cache read failed", zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	signal, err := c.Analyzer.Analyze(ctx, in)
	if err != nil {
		return signal, err
	}
	if err := c.Cache.Set(ctx, key, signal); err != nil {
		logger.Warn("Analyze: cache write failed", zap.Error(err))
	}
	return signal, nil
}

func analysisKey(in models.AnalysisInput) string {
	h := sha256.New()
	h.Write([]byte(models.NormalizeKey(in.Text)))
	h.Write([]byte{0})
	h.Write([]byte(in.ImageMIME))
	h.Write([]byte{0})
	h.Write(in.Image)
	return hex.EncodeToString(h.Sum(nil))
}
