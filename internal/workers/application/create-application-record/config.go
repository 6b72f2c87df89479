// internal/workers/application/create-application-record/config.go
package createapplicationrecord

import "time"

// No per-worker tuning needed yet, struct kept for consistency with the
// other workers.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
