// Package quota enforces the monthly auto-apply allowance per subscription
// tier before a submission task is allowed to run.
package quota

import (
	"context"

	"github.com/DharitG/jobs/internal/common/logger"
)

// Tier is a user's subscription level.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierElite Tier = "elite"
)

const (
	// FreeMonthlyLimit is the default monthly allowance on the free tier.
	FreeMonthlyLimit = 50
	// UnlimitedSentinel is the remaining-count reported for paid tiers. Paid
	// tiers are effectively unlimited; the sentinel keeps the admission
	// contract a single integer.
	UnlimitedSentinel = 10000
)

// User identifies the applicant being admitted.
type User struct {
	ID   string
	Tier Tier
}

// UsageFunc counts a user's confirmed submissions in the current calendar
// month (UTC).
type UsageFunc func(ctx context.Context, userID string) (int, error)

// Gate computes the remaining allowance for a user. Zero means deny.
type Gate struct {
	freeLimit int
	usage     UsageFunc
	logger    logger.Logger
}

func NewGate(freeLimit int, usage UsageFunc, log logger.Logger) *Gate {
	if freeLimit <= 0 {
		freeLimit = FreeMonthlyLimit
	}
	return &Gate{freeLimit: freeLimit, usage: usage, logger: log}
}

// Remaining returns how many submissions the user may still make this month.
// Paid tiers short-circuit without touching storage. A usage-count failure
// fails closed: an unknown count admits nobody.
func (g *Gate) Remaining(ctx context.Context, user User) int {
	switch user.Tier {
	case TierPro, TierElite:
		return UnlimitedSentinel
	}

	used, err := g.usage(ctx, user.ID)
	if err != nil {
		g.logger.WithError(err).Warn("usage count unavailable, denying admission", map[string]interface{}{
			"userId": user.ID,
		})
		return 0
	}

	remaining := g.freeLimit - used
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Allow reports whether the user may submit now.
func (g *Gate) Allow(ctx context.Context, user User) bool {
	return g.Remaining(ctx, user) > 0
}
