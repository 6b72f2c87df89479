// internal/workers/application/submit-application/config.go
package submitapplication

import "time"

type Config struct {
	// Timeout bounds one full browser run including verification.
	Timeout time.Duration
	// ArtifactsEnabled controls failure-snapshot upload.
	ArtifactsEnabled bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          5 * time.Minute,
		ArtifactsEnabled: true,
	}
}
