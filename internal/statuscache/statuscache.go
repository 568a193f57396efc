// Package statuscache caches the last evaluation result for a submission
// id so repeated lookups (e.g. a client that missed the synchronous
// response) do not have to re-run the sandbox. It is not the system of
// record: evaluation itself never reads from it, only writes after the
// fact, so its absence or unavailability never changes an outcome.
package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"judgecore/internal/evaluation"

	"github.com/redis/go-redis/v9"
)

// Config holds connection settings for the backing Redis instance.
type Config struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TTL          time.Duration
}

// DefaultConfig returns a Config with sensible connection timeouts and a
// one-hour result TTL.
func DefaultConfig() Config {
	return Config{
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		TTL:          time.Hour,
	}
}

// Cache stores evaluation results in Redis keyed by submission id.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New dials Redis and verifies connectivity before returning.
func New(cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("statuscache: addr is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultConfig().DialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("statuscache: ping redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an already-configured redis.Client, mainly for tests
// that run against miniredis.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultConfig().TTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

func key(submissionID string) string {
	return "judgecore:result:" + submissionID
}

// Store saves an evaluation result under its submission id. Errors here
// are never fatal to the caller's evaluation flow; they should be logged
// and swallowed.
func (c *Cache) Store(ctx context.Context, result evaluation.EvaluationResult) error {
	if result.SubmissionID == "" {
		return fmt.Errorf("statuscache: submission id is required")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("statuscache: encode result: %w", err)
	}
	if err := c.client.Set(ctx, key(result.SubmissionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("statuscache: set: %w", err)
	}
	return nil
}

// Fetch returns the cached result for a submission id. found is false
// when nothing is cached, including when the TTL has expired.
func (c *Cache) Fetch(ctx context.Context, submissionID string) (result evaluation.EvaluationResult, found bool, err error) {
	payload, err := c.client.Get(ctx, key(submissionID)).Bytes()
	if err == redis.Nil {
		return evaluation.EvaluationResult{}, false, nil
	}
	if err != nil {
		return evaluation.EvaluationResult{}, false, fmt.Errorf("statuscache: get: %w", err)
	}
	if err := json.Unmarshal(payload, &result); err != nil {
		return evaluation.EvaluationResult{}, false, fmt.Errorf("statuscache: decode result: %w", err)
	}
	return result, true, nil
}
