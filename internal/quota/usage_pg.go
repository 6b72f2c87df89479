package quota

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const usageQuery = `
	SELECT COUNT(*)
	FROM applications
	WHERE user_id = $1
	  AND status = 'applied'
	  AND applied_at >= $2`

// NewPostgresUsage counts confirmed submissions since the start of the
// current calendar month, UTC. The window resets implicitly at month
// rollover; no stored counter to reconcile.
func NewPostgresUsage(db *sql.DB) UsageFunc {
	return func(ctx context.Context, userID string) (int, error) {
		var count int
		err := db.QueryRowContext(ctx, usageQuery, userID, startOfCurrentMonthUTC()).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("count monthly submissions for %s: %w", userID, err)
		}
		return count, nil
	}
}

func startOfCurrentMonthUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
