package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"synergy-alloc/internal/config"
	"synergy-alloc/internal/models"
	"synergy-alloc/internal/reporter"
)

// ErrNoResult is returned when no allocation run has been published yet.
var ErrNoResult = errors.New("no cached allocation result")

// NewRedisClient creates a Redis client from the service configuration.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping tests the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// RunSnapshot is the cached view of one allocation run. Downstream
// consumers (dashboards, the intake bot) read it instead of querying
// the database.
type RunSnapshot struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Report      *reporter.Report          `json:"report"`
	Allocations []models.AllocationRecord `json:"allocations"`
	Shipments   []models.ShipmentRecord   `json:"shipments,omitempty"`
}

// ResultCache publishes the latest allocation run to Redis. Each run is
// stored under its own key and the "latest" key is repointed, so a
// consumer mid-read never sees a half-written result.
type ResultCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

func NewResultCache(client *redis.Client, keyPrefix string, ttlSeconds int, logger *zap.Logger) *ResultCache {
	return &ResultCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       time.Duration(ttlSeconds) * time.Second,
		logger:    logger,
	}
}

func (c *ResultCache) runKey(runID string) string {
	return c.keyPrefix + "run:" + runID
}

func (c *ResultCache) latestKey() string {
	return c.keyPrefix + "latest"
}

// PublishRun stores the run snapshot and marks it as the latest.
func (c *ResultCache) PublishRun(ctx context.Context, snapshot *RunSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal run snapshot: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.runKey(snapshot.RunID), data, c.ttl)
	pipe.Set(ctx, c.latestKey(), snapshot.RunID, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish run %s: %w", snapshot.RunID, err)
	}

	c.logger.Debug("Published allocation run to cache",
		zap.String("run_id", snapshot.RunID),
		zap.Duration("ttl", c.ttl),
	)
	return nil
}

// LatestRun returns the most recently published run snapshot.
func (c *ResultCache) LatestRun(ctx context.Context) (*RunSnapshot, error) {
	runID, err := c.client.Get(ctx, c.latestKey()).Result()
	if err == redis.Nil {
		return nil, ErrNoResult
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest run id: %w", err)
	}
	return c.GetRun(ctx, runID)
}

// GetRun returns one published run snapshot by id.
func (c *ResultCache) GetRun(ctx context.Context, runID string) (*RunSnapshot, error) {
	data, err := c.client.Get(ctx, c.runKey(runID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoResult
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}

	var snapshot RunSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", runID, err)
	}
	return &snapshot, nil
}
