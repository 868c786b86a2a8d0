package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/dannynerezov/motor-mutual-sub001/internal/database/postgres"
	"github.com/dannynerezov/motor-mutual-sub001/internal/models"
)

const (
	activeSchemeCacheKey = "pricing:active_scheme"
	activeSchemeCacheTTL = 5 * time.Minute
)

// PricingSchemeRepository reads pricing schemes. Schemes are created and
// versioned by the admin workflow; the quoting service only ever needs the
// single active one, cached briefly in Redis.
type PricingSchemeRepository struct {
	db          *postgres.Handle
	redisClient *redis.Client
}

func NewPricingSchemeRepository(db *postgres.Handle, redisClient *redis.Client) *PricingSchemeRepository {
	return &PricingSchemeRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// GetActiveScheme returns the currently active pricing scheme, preferring
// the Redis cache.
func (r *PricingSchemeRepository) GetActiveScheme(ctx context.Context) (*models.PricingScheme, error) {
	if r.redisClient != nil {
		data, err := r.redisClient.Get(ctx, activeSchemeCacheKey).Bytes()
		if err == nil {
			cached, decodeErr := decodeCachedScheme(data)
			if decodeErr == nil {
				return cached, nil
			}
			slog.Warn("Discarding unreadable cached pricing scheme", "error", decodeErr)
		} else if !errors.Is(err, redis.Nil) {
			slog.Warn("Redis read for active scheme failed, falling back to database", "error", err)
		}
	}

	db := r.db.Get()
	if db == nil {
		return nil, fmt.Errorf("database connection not ready")
	}

	var scheme models.PricingScheme
	query := `
		SELECT id, floor_price, floor_point, ceiling_price, ceiling_point,
		       active, created_at, updated_at, created_by
		FROM pricing_scheme
		WHERE active = true
		ORDER BY updated_at DESC
		LIMIT 1`
	if err := db.GetContext(ctx, &scheme, query); err != nil {
		return nil, fmt.Errorf("failed to load active pricing scheme: %w", err)
	}

	if r.redisClient != nil {
		if data, err := json.Marshal(scheme); err == nil {
			if err := r.redisClient.Set(ctx, activeSchemeCacheKey, data, activeSchemeCacheTTL).Err(); err != nil {
				slog.Warn("Failed to cache active pricing scheme", "error", err)
			}
		}
	}

	return &scheme, nil
}

// InvalidateActiveSchemeCache drops the cached scheme, forcing the next
// read through to the database. Called when the admin workflow activates a
// new scheme version.
func (r *PricingSchemeRepository) InvalidateActiveSchemeCache(ctx context.Context) error {
	if r.redisClient == nil {
		return nil
	}
	return r.redisClient.Del(ctx, activeSchemeCacheKey).Err()
}

func decodeCachedScheme(data []byte) (*models.PricingScheme, error) {
	var cached models.PricingScheme
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached pricing scheme: %w", err)
	}
	return &cached, nil
}
