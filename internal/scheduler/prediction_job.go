package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trailcast/internal/prediction"
	"trailcast/internal/regions"
	"trailcast/internal/types"
)

// DefaultLockTTL bounds how long a crashed invocation can block the next one.
const DefaultLockTTL = 15 * time.Minute

// JobConfig holds the tunables of the prediction job.
type JobConfig struct {
	WindowDays     int
	BikeOnly       bool
	RefreshWeather bool
	Location       *time.Location
	LockTTL        time.Duration
	// Holder identifies this invocation in the lock table.
	Holder string
}

// PredictionJob wires the engine to storage and the side-effect publishers.
// Fetcher, Archiver, Metrics, Events and Locker are optional.
type PredictionJob struct {
	Config      JobConfig
	Log         *slog.Logger
	Table       *regions.Table
	Runner      *prediction.Runner
	Trails      TrailSource
	Weather     WeatherStore
	Predictions PredictionStore
	Fetcher     WeatherFetcher
	Archiver    Archiver
	Metrics     MetricPublisher
	Events      EventPublisher
	Locker      Locker

	// Clock and NewID are replaced in tests.
	Clock func() time.Time
	NewID func() string
}

// LockID is the lease name for the run of the calendar day containing now.
func LockID(now time.Time) string {
	return "prediction_run:" + now.Format("2006-01-02")
}

// Window returns the first and last calendar day of the weather window ending
// on the day containing now.
func Window(now time.Time, days int) (from, to time.Time) {
	if days < 1 {
		days = 1
	}
	to = types.DateOf(now)
	return to.AddDate(0, 0, -(days - 1)), to
}

// Run executes one prediction run. "now" is sampled once and shared by every
// trail. Failures to load inputs or persist the run are returned; weather
// refresh, archive, metric and event failures are logged and the run
// continues.
func (j *PredictionJob) Run(ctx context.Context, payload JobPayload) (*JobResult, error) {
	start := time.Now()
	now := j.now(payload.ReferenceTime)
	runID := j.newID()

	log := j.logger().With("run_id", runID, "dry_run", payload.DryRun)
	ctx = types.WithLogger(types.WithRunID(ctx, runID), log)

	if j.Locker != nil && !payload.DryRun {
		lockID := LockID(now)
		acquired, err := j.Locker.Acquire(ctx, lockID, j.holder(runID), j.lockTTL())
		if err != nil {
			return nil, fmt.Errorf("scheduler: failed to acquire run lock: %w", err)
		}
		if !acquired {
			log.InfoContext(ctx, "prediction run already in progress, skipping", "lock_id", lockID)
			return &JobResult{RunID: runID, PredictedAt: now, Skipped: true}, nil
		}
		defer func() {
			if err := j.Locker.Release(context.WithoutCancel(ctx), lockID, j.holder(runID)); err != nil {
				log.WarnContext(ctx, "failed to release run lock", "lock_id", lockID, "error", err)
			}
		}()
	}

	from, to := Window(now, j.Config.WindowDays)
	result := &JobResult{RunID: runID, PredictedAt: now, DryRun: payload.DryRun}

	refreshed := j.refreshWeather(ctx, from, to, payload.DryRun, result)

	trails, err := j.Trails.ListTrails(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: failed to load trails: %w", err)
	}
	if j.Config.BikeOnly {
		trails = filterBikeAccessible(trails)
	}

	windows, err := j.Weather.GetWindows(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("scheduler: failed to load weather: %w", err)
	}
	if windows == nil {
		windows = make(map[string][]types.WeatherDay)
	}
	// Dry runs never write what they fetched, so read it from memory instead.
	for region, days := range refreshed {
		windows[region] = days
	}

	batch, err := j.Runner.Run(ctx, trails, windows, now)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	run := types.PredictionRun{
		ID:          runID,
		PredictedAt: now,
		WindowStart: from,
		WindowEnd:   to,
		TrailCount:  len(batch.Predictions),
		Summary:     batch.Summary,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	result.TrailCount = run.TrailCount
	result.Summary = run.Summary

	log.InfoContext(ctx, "trails classified",
		"trail_count", run.TrailCount,
		"regions_with_weather", len(windows),
		"summary", run.Summary,
	)

	if payload.DryRun {
		result.Predictions = batch.Predictions
		return result, nil
	}

	if err := j.Predictions.SaveRun(ctx, run, batch.Predictions); err != nil {
		return nil, fmt.Errorf("scheduler: failed to persist run: %w", err)
	}

	j.publish(ctx, run, batch.Predictions, result)
	return result, nil
}

// refreshWeather fetches the window for every region and upserts it. A failed
// region keeps whatever is already stored. In dry runs nothing is written and
// the fetched days are returned for use in place of stored rows.
func (j *PredictionJob) refreshWeather(ctx context.Context, from, to time.Time, dryRun bool, result *JobResult) map[string][]types.WeatherDay {
	if !j.Config.RefreshWeather || j.Fetcher == nil {
		return nil
	}
	log := types.LoggerFromContext(ctx)

	var fetched map[string][]types.WeatherDay
	if dryRun {
		fetched = make(map[string][]types.WeatherDay)
	}
	for _, region := range j.Table.Regions {
		if ctx.Err() != nil {
			break
		}
		days, err := j.Fetcher.FetchDaily(ctx, region, from, to)
		if err != nil {
			log.WarnContext(ctx, "weather refresh failed", "region", region.Name, "error", err)
			result.RegionsFailed = append(result.RegionsFailed, region.Name)
			continue
		}
		if dryRun {
			fetched[region.Name] = days
			result.RegionsRefreshed++
			continue
		}
		n, err := j.Weather.UpsertDays(ctx, region.Name, days)
		if err != nil {
			log.WarnContext(ctx, "failed to store weather", "region", region.Name, "error", err)
			result.RegionsFailed = append(result.RegionsFailed, region.Name)
			continue
		}
		result.RegionsRefreshed++
		log.DebugContext(ctx, "weather refreshed", "region", region.Name, "days", n)
	}
	return fetched
}

func (j *PredictionJob) publish(ctx context.Context, run types.PredictionRun, predictions []types.Prediction, result *JobResult) {
	log := types.LoggerFromContext(ctx)

	if j.Archiver != nil {
		key, err := j.Archiver.Put(ctx, run, predictions)
		if err != nil {
			log.WarnContext(ctx, "failed to archive run", "error", err)
		} else {
			result.ArchiveKey = key
		}
	}

	if j.Metrics != nil {
		if err := j.Metrics.PublishRunStats(ctx, run, len(result.RegionsFailed)); err != nil {
			log.WarnContext(ctx, "failed to publish run metrics", "error", err)
		}
	}

	if j.Events != nil {
		event := RunCompletedEvent{
			RunID:       run.ID,
			PredictedAt: run.PredictedAt,
			WindowStart: run.WindowStart,
			WindowEnd:   run.WindowEnd,
			TrailCount:  run.TrailCount,
			Summary:     run.Summary,
			ArchiveKey:  result.ArchiveKey,
		}
		if err := j.Events.PublishRunCompleted(ctx, event); err != nil {
			log.WarnContext(ctx, "failed to publish run-completed event", "error", err)
		}
	}
}

func (j *PredictionJob) now(ref *time.Time) time.Time {
	var now time.Time
	switch {
	case ref != nil:
		now = *ref
	case j.Clock != nil:
		now = j.Clock()
	default:
		now = time.Now()
	}
	if j.Config.Location != nil {
		now = now.In(j.Config.Location)
	}
	return now
}

func (j *PredictionJob) newID() string {
	if j.NewID != nil {
		return j.NewID()
	}
	return uuid.NewString()
}

func (j *PredictionJob) holder(runID string) string {
	if j.Config.Holder != "" {
		return j.Config.Holder
	}
	return runID
}

func (j *PredictionJob) lockTTL() time.Duration {
	if j.Config.LockTTL > 0 {
		return j.Config.LockTTL
	}
	return DefaultLockTTL
}

func (j *PredictionJob) logger() *slog.Logger {
	if j.Log != nil {
		return j.Log
	}
	return slog.Default()
}

func filterBikeAccessible(trails []types.Trail) []types.Trail {
	out := make([]types.Trail, 0, len(trails))
	for _, t := range trails {
		if t.BikeAccessible {
			out = append(out, t)
		}
	}
	return out
}
