// Package config defines the configuration for the envmonitor binaries.
// Configuration is loaded once at process start and is immutable thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// A missing required value or an invalid format aborts startup.
package config

import (
	"time"

	"envmonitor/internal/types"
)

// SecretString is an alias for types.SecretString so config structs can
// declare redacted fields without importing types directly.
type SecretString = types.SecretString

// IngestConfig configures cmd/ingest-api: the endpoint that synthesizes a
// reading and persists it to PostgreSQL.
type IngestConfig struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"envmonitor-ingest"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server    ServerConfig
	Database  DatabaseConfig
	Generator GeneratorConfig
	Influx    InfluxConfig
	Metrics   MetricsConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo `ignored:"true"`
}

// DashboardConfig configures cmd/dashboard: the poll loop, the rolling window
// and the projection API.
type DashboardConfig struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"envmonitor-dashboard"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server  ServerConfig
	Poller  PollerConfig
	Window  WindowConfig
	Metrics MetricsConfig

	Build BuildInfo `ignored:"true"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port               string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"5" validate:"gte=1"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"0" validate:"gte=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`     // Bounds the connectivity probe
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
	AutoMigrate       bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// GeneratorConfig fixes the location stamped on every synthesized reading.
type GeneratorConfig struct {
	Latitude  float64 `envconfig:"SENSOR_LATITUDE" default:"1.3521" validate:"gte=-90,lte=90"`
	Longitude float64 `envconfig:"SENSOR_LONGITUDE" default:"103.8198" validate:"gte=-180,lte=180"`
}

// InfluxConfig enables the optional InfluxDB mirror. The mirror is off when
// URL is empty.
type InfluxConfig struct {
	URL    string       `envconfig:"INFLUX_URL" validate:"omitempty,url"`
	Token  SecretString `envconfig:"INFLUX_TOKEN"`
	Org    string       `envconfig:"INFLUX_ORG" default:"envmonitor"`
	Bucket string       `envconfig:"INFLUX_BUCKET" default:"environmental_data"`
}

// Enabled reports whether readings should be mirrored to InfluxDB.
func (c InfluxConfig) Enabled() bool {
	return c.URL != ""
}

// PollerConfig controls how the dashboard reaches the ingestion endpoint.
type PollerConfig struct {
	IngestURL      string        `envconfig:"INGEST_URL" default:"http://localhost:8080/api/data" validate:"required,url"`
	Interval       time.Duration `envconfig:"POLL_INTERVAL" default:"5s" validate:"gt=0"`
	RequestTimeout time.Duration `envconfig:"POLL_REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent      string        `envconfig:"POLL_USER_AGENT" default:"envmonitor-dashboard/1.0"`
}

// WindowConfig controls the rolling window and its durable snapshot.
type WindowConfig struct {
	Horizon     time.Duration `envconfig:"WINDOW_HORIZON" default:"5m" validate:"gt=0"`
	SnapshotDir string        `envconfig:"SNAPSHOT_DIR" default:".envmonitor" validate:"required"`
	SnapshotKey string        `envconfig:"SNAPSHOT_KEY" default:"environmentalData" validate:"required,excludesall=/\\"`
}

// MetricsConfig holds CloudWatch publishing settings. Metrics are disabled by
// default so local runs need no AWS credentials.
type MetricsConfig struct {
	Enabled     bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Namespace   string `envconfig:"METRIC_NAMESPACE" default:"EnvMonitor"`
	Region      string `envconfig:"AWS_REGION" default:"us-east-1"`
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"` // LocalStack
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed into its
	// target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
