// Package artifacts persists the diagnostic page snapshots a failed
// submission run leaves behind.
package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store writes one artifact blob and returns its stable location.
type Store interface {
	Save(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// KeyFor builds a collision-free artifact key for an application run.
func KeyFor(applicationID int, kind, ext string) string {
	return fmt.Sprintf("applications/%d/%s/%s-%s.%s",
		applicationID,
		time.Now().UTC().Format("2006-01-02"),
		kind,
		uuid.NewString(),
		ext,
	)
}
