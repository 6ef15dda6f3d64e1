package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultAnalysisTTL is how long a computed analysis stays valid without
// new events arriving.
const DefaultAnalysisTTL = time.Hour

// ErrCacheMiss reports that no analysis is cached for the student. It is not
// an infrastructure failure; callers recompute on miss.
var ErrCacheMiss = errors.New("analysis not cached")

// AnalysisCache memoizes analysis results keyed by student id with a fixed
// expiry. There is no single-flight guard: two concurrent requests for the
// same uncached student may both recompute and both write; last writer wins,
// which is acceptable because results are idempotent given identical inputs.
type AnalysisCache interface {
	Get(ctx context.Context, studentID int64) (*models.StudentAnalytics, error)
	Set(ctx context.Context, studentID int64, analysis *models.StudentAnalytics, ttl time.Duration) error
	Delete(ctx context.Context, studentID int64) error
}

type redisCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, logger *slog.Logger) AnalysisCache {
	return &redisCache{
		client: client,
		logger: logger,
	}
}

func analysisKey(studentID int64) string {
	return fmt.Sprintf("analytics:%d", studentID)
}

func (r *redisCache) Get(ctx context.Context, studentID int64) (*models.StudentAnalytics, error) {
	data, err := r.client.Get(ctx, analysisKey(studentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var analysis models.StudentAnalytics
	if err := json.Unmarshal(data, &analysis); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		r.logger.Warn("Dropping unreadable cache entry", "student_id", studentID, "error", err)
		return nil, ErrCacheMiss
	}
	return &analysis, nil
}

func (r *redisCache) Set(ctx context.Context, studentID int64, analysis *models.StudentAnalytics, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	if err := r.client.Set(ctx, analysisKey(studentID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (r *redisCache) Delete(ctx context.Context, studentID int64) error {
	if err := r.client.Del(ctx, analysisKey(studentID)).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}
