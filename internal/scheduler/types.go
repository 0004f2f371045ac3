// Package scheduler runs the daily prediction job: refresh regional weather,
// classify every trail and publish the run.
package scheduler

import (
	"context"
	"time"

	"trailcast/internal/types"
)

// JobPayload is the event sent by the EventBridge schedule (or piped on stdin
// in local mode).
//
//	{
//	  "reference_time": "2024-07-10T12:00:00Z",  // optional
//	  "dry_run": false
//	}
type JobPayload struct {
	// ReferenceTime replaces "now" for backfills and reproducible runs.
	ReferenceTime *time.Time `json:"reference_time,omitempty"`
	// DryRun classifies without persisting, archiving or publishing.
	DryRun bool `json:"dry_run,omitempty"`
}

// JobResult summarises one invocation.
type JobResult struct {
	RunID            string        `json:"run_id"`
	PredictedAt      time.Time     `json:"predicted_at"`
	TrailCount       int           `json:"trail_count"`
	Summary          types.Summary `json:"summary"`
	RegionsRefreshed int           `json:"regions_refreshed"`
	RegionsFailed    []string      `json:"regions_failed,omitempty"`
	ArchiveKey       string        `json:"archive_key,omitempty"`
	DryRun           bool          `json:"dry_run,omitempty"`
	// Skipped is set when another invocation holds the run lock.
	Skipped bool `json:"skipped,omitempty"`
	// Predictions is only returned for dry runs.
	Predictions []types.Prediction `json:"predictions,omitempty"`
}

// RunCompletedEvent is published once a run has been persisted.
type RunCompletedEvent struct {
	RunID       string        `json:"run_id"`
	PredictedAt time.Time     `json:"predicted_at"`
	WindowStart time.Time     `json:"window_start"`
	WindowEnd   time.Time     `json:"window_end"`
	TrailCount  int           `json:"trail_count"`
	Summary     types.Summary `json:"summary"`
	ArchiveKey  string        `json:"archive_key,omitempty"`
}

// TrailSource lists the trails to classify.
type TrailSource interface {
	ListTrails(ctx context.Context) ([]types.Trail, error)
}

// WeatherStore reads and writes stored daily weather.
type WeatherStore interface {
	GetWindows(ctx context.Context, from, to time.Time) (map[string][]types.WeatherDay, error)
	UpsertDays(ctx context.Context, region string, days []types.WeatherDay) (int64, error)
}

// PredictionStore persists a completed run.
type PredictionStore interface {
	SaveRun(ctx context.Context, run types.PredictionRun, predictions []types.Prediction) error
}

// WeatherFetcher pulls daily observations for one region.
type WeatherFetcher interface {
	FetchDaily(ctx context.Context, region types.Region, from, to time.Time) ([]types.WeatherDay, error)
}

// Archiver stores a copy of the run and returns its location.
type Archiver interface {
	Put(ctx context.Context, run types.PredictionRun, predictions []types.Prediction) (string, error)
}

// MetricPublisher emits run metrics (CloudWatch in production).
type MetricPublisher interface {
	PublishRunStats(ctx context.Context, run types.PredictionRun, regionsFailed int) error
}

// EventPublisher announces completed runs (SQS in production).
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, event RunCompletedEvent) error
}

// Locker is a lease lock that keeps overlapping invocations from running the
// same day twice.
type Locker interface {
	Acquire(ctx context.Context, lockID, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, lockID, holder string) error
}
