// Package config defines the process configuration for the trailcast
// services. Configuration is loaded once at process start and is immutable
// thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format fails startup.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"trailcast/internal/regions"
	"trailcast/internal/types"
)

// Config is the top-level configuration struct. Sub-components receive only
// the subset they need.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"trailcast"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Prediction    PredictionConfig
	Weather       WeatherConfig
	Observability ObservabilityConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings for the read API.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	// Resolved from SSM or Env
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10" validate:"gte=1"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2" validate:"gte=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers. Empty identifiers disable the
// feature that uses them.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-west-2"`

	// ArchiveBucket receives compressed copies of each prediction run.
	ArchiveBucket string `envconfig:"ARCHIVE_BUCKET"`
	// RunEventsQueue receives a message when a run completes.
	RunEventsQueue string `envconfig:"SQS_RUN_EVENTS" validate:"omitempty,url"`

	// LocalStack Support (Empty in Prod)
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// PredictionConfig tunes the batch prediction run.
type PredictionConfig struct {
	WindowDays    int    `envconfig:"WINDOW_DAYS" default:"7" validate:"gte=1,lte=30"`
	Workers       int    `envconfig:"PREDICTION_WORKERS" default:"8" validate:"gte=1,lte=256"`
	DefaultRegion string `envconfig:"DEFAULT_REGION" default:"denver"`
	// RegionsJSON replaces the built-in region table when set. It is a JSON
	// array of {"name","lat","lon","station_elevation_m"} objects.
	RegionsJSON string `envconfig:"REGIONS_JSON" validate:"omitempty,json"`
	BikeOnly    bool   `envconfig:"BIKE_ONLY" default:"true"`
	// Timezone defines "today" for rain timing and access-date evaluation.
	Timezone string `envconfig:"PREDICTION_TIMEZONE" default:"America/Denver" validate:"timezone"`
}

// WeatherConfig configures the upstream daily-weather provider.
type WeatherConfig struct {
	BaseURL   string        `envconfig:"WEATHER_BASE_URL" default:"https://api.open-meteo.com" validate:"url"`
	Timeout   time.Duration `envconfig:"WEATHER_TIMEOUT" default:"15s"`
	UserAgent string        `envconfig:"WEATHER_USER_AGENT" default:"trailcast/1.0"`
	// RequestsPerSecond caps calls to the provider across all regions.
	// Zero disables throttling.
	RequestsPerSecond float64 `envconfig:"WEATHER_RPS" default:"5" validate:"gte=0"`
	Burst             int     `envconfig:"WEATHER_BURST" default:"2" validate:"gte=1"`
	// Refresh fetches the window from the provider before each run. When
	// false the run uses only what is already stored.
	Refresh bool `envconfig:"WEATHER_REFRESH" default:"true"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Trailcast"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// RegionTable returns the configured region table: REGIONS_JSON when set,
// otherwise the built-in table. DefaultRegion overrides the table's default.
func (c PredictionConfig) RegionTable() (*regions.Table, error) {
	if c.RegionsJSON == "" {
		table := regions.DefaultTable()
		if c.DefaultRegion != "" {
			table.DefaultRegion = c.DefaultRegion
		}
		if err := table.Validate(); err != nil {
			return nil, &ConfigError{Type: ErrValidation, Message: "invalid DEFAULT_REGION", Err: err}
		}
		return table, nil
	}

	var list []types.Region
	if err := json.Unmarshal([]byte(c.RegionsJSON), &list); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "failed to parse REGIONS_JSON", Err: err}
	}
	table, err := regions.NewTable(list, c.DefaultRegion)
	if err != nil {
		return nil, &ConfigError{Type: ErrValidation, Message: "invalid REGIONS_JSON", Err: err}
	}
	return table, nil
}

// Location resolves Timezone.
func (c PredictionConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: fmt.Sprintf("unknown timezone %q", c.Timezone), Err: err}
	}
	return loc, nil
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
