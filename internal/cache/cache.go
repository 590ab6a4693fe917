/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for playlist settings.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/radiostream/internal/telemetry"
)

// Default TTL values for different cache types
const (
	DefaultRulesTTL        = 1 * time.Hour
	DefaultPlaylistTTL     = 1 * time.Hour
	DefaultPlaylistListTTL = 5 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyRules        = "radiostream:cache:rules"
	KeyPlaylistList = "radiostream:cache:playlists"
	KeyPlaylist     = "radiostream:cache:playlist:" // + playlist name
	keyPattern      = "radiostream:cache:*"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	RulesTTL        time.Duration
	PlaylistTTL     time.Duration
	PlaylistListTTL time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:       "localhost:6379",
		RulesTTL:        DefaultRulesTTL,
		PlaylistTTL:     DefaultPlaylistTTL,
		PlaylistListTTL: DefaultPlaylistListTTL,
		DisableOnError:  true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. A nil *Cache
// behaves like a disabled one.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance. An unreachable server yields a
// disabled cache, not an error.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	logger = logger.With().Str("component", "cache").Logger()
	if cfg.RedisAddr == "" {
		return Disabled(logger), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		_ = client.Close()
		return &Cache{logger: logger, config: cfg, disabled: true}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger,
		config: cfg,
	}, nil
}

// Disabled returns a cache that never stores anything.
func Disabled(logger zerolog.Logger) *Cache {
	return &Cache{logger: logger, disabled: true}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, kind, key string, dest any) bool {
	if !c.IsAvailable() {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		telemetry.CacheRequests.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err != nil {
		c.handleError(err, "get")
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		telemetry.CacheRequests.WithLabelValues(kind, "miss").Inc()
		return false
	}

	telemetry.CacheRequests.WithLabelValues(kind, "hit").Inc()
	return true
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes keys from cache.
func (c *Cache) delete(ctx context.Context, keys ...string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// Use SCAN to find keys (safer than KEYS for production)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// Rule settings caching methods

// GetRules retrieves the cached rule settings document.
func (c *Cache) GetRules(ctx context.Context) (map[string]float64, bool) {
	var values map[string]float64
	if !c.get(ctx, "rules", KeyRules, &values) {
		return nil, false
	}
	return values, true
}

// SetRules caches the rule settings document.
func (c *Cache) SetRules(ctx context.Context, values map[string]float64) error {
	if !c.IsAvailable() {
		return nil
	}
	return c.set(ctx, KeyRules, values, c.config.RulesTTL)
}

// InvalidateRules drops the cached rule settings.
func (c *Cache) InvalidateRules(ctx context.Context) error {
	return c.delete(ctx, KeyRules)
}

// Playlist caching methods

// CachedPlaylist represents a cached playlist definition.
type CachedPlaylist struct {
	Name      string `json:"name"`
	Query     string `json:"query"`
	CanDelete bool   `json:"can_delete"`
}

// GetPlaylistList retrieves the cached list of playlists.
func (c *Cache) GetPlaylistList(ctx context.Context) ([]CachedPlaylist, bool) {
	var playlists []CachedPlaylist
	if !c.get(ctx, "playlist_list", KeyPlaylistList, &playlists) {
		return nil, false
	}
	c.logger.Debug().Int("count", len(playlists)).Msg("playlist list cache hit")
	return playlists, true
}

// SetPlaylistList caches the list of playlists.
func (c *Cache) SetPlaylistList(ctx context.Context, playlists []CachedPlaylist) error {
	if !c.IsAvailable() {
		return nil
	}
	return c.set(ctx, KeyPlaylistList, playlists, c.config.PlaylistListTTL)
}

// GetPlaylist retrieves a cached playlist definition.
func (c *Cache) GetPlaylist(ctx context.Context, name string) (*CachedPlaylist, bool) {
	var playlist CachedPlaylist
	if !c.get(ctx, "playlist", KeyPlaylist+name, &playlist) {
		return nil, false
	}
	return &playlist, true
}

// SetPlaylist caches a playlist definition.
func (c *Cache) SetPlaylist(ctx context.Context, playlist CachedPlaylist) error {
	if !c.IsAvailable() {
		return nil
	}
	return c.set(ctx, KeyPlaylist+playlist.Name, playlist, c.config.PlaylistTTL)
}

// InvalidatePlaylist drops one playlist and the playlist list.
func (c *Cache) InvalidatePlaylist(ctx context.Context, name string) error {
	return c.delete(ctx, KeyPlaylist+name, KeyPlaylistList)
}

// FlushAll removes every key written by this cache.
func (c *Cache) FlushAll(ctx context.Context) error {
	return c.deletePattern(ctx, keyPattern)
}
