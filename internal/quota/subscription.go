package quota

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DharitG/jobs/internal/common/logger"
)

const (
	tierKeyPrefix = "tier:"
	tierCacheTTL  = 5 * time.Minute
)

const tierQuery = `
	SELECT tier
	FROM user_subscriptions
	WHERE user_id = $1`

// TierStore resolves a user's subscription tier, caching lookups in Redis so
// hot users do not hit Postgres on every task.
type TierStore struct {
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

func NewTierStore(db *sql.DB, cache *redis.Client, log logger.Logger) *TierStore {
	return &TierStore{db: db, cache: cache, logger: log}
}

// Tier returns the user's subscription tier. Users with no subscription row
// are free-tier. Cache errors degrade to a database read, never to a failure.
func (s *TierStore) Tier(ctx context.Context, userID string) (Tier, error) {
	key := tierKeyPrefix + userID

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil && cached != "" {
			return Tier(cached), nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			s.logger.WithError(err).Debug("tier cache read failed", map[string]interface{}{"userId": userID})
		}
	}

	var tier string
	err := s.db.QueryRowContext(ctx, tierQuery, userID).Scan(&tier)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		tier = string(TierFree)
	case err != nil:
		return "", fmt.Errorf("look up subscription tier for %s: %w", userID, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, tier, tierCacheTTL).Err(); err != nil {
			s.logger.WithError(err).Debug("tier cache write failed", map[string]interface{}{"userId": userID})
		}
	}
	return Tier(tier), nil
}
