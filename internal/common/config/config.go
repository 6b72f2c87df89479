// Package config holds the worker-process configuration for the auto-submit
// engine and its supporting services.
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Browser       BrowserConfig           `mapstructure:"browser"`
	Embeddings    EmbeddingsConfig        `mapstructure:"embeddings"`
	Quota         QuotaConfig             `mapstructure:"quota"`
	Artifacts     ArtifactsConfig         `mapstructure:"artifacts"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Captcha       CaptchaConfig           `mapstructure:"captcha"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BrowserConfig controls the Playwright session used for submissions.
type BrowserConfig struct {
	Headless          bool   `mapstructure:"headless"`
	NavigationTimeout int    `mapstructure:"navigation_timeout"` // milliseconds
	SelectorTimeout   int    `mapstructure:"selector_timeout"`   // milliseconds
	VerifyTimeout     int    `mapstructure:"verify_timeout"`     // milliseconds
	SelectorDir       string `mapstructure:"selector_dir"`
}

// EmbeddingsConfig configures the shared semantic-matching model.
type EmbeddingsConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type QuotaConfig struct {
	FreeMonthlyLimit int `mapstructure:"free_monthly_limit"`
}

// ArtifactsConfig selects the blob backend for failure diagnostics.
type ArtifactsConfig struct {
	Backend  string `mapstructure:"backend"` // "local" or "s3"
	LocalDir string `mapstructure:"local_dir"`
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

type NotificationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Sender    string `mapstructure:"sender"`
	SNSTopic  string `mapstructure:"sns_topic"`
	ReplyTo   string `mapstructure:"reply_to"`
}

type CaptchaConfig struct {
	EscalationURL string `mapstructure:"escalation_url"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
