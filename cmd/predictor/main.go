// Package main is the entrypoint for the Predictor Lambda function.
//
// An EventBridge schedule invokes it once a day with a scheduler.JobPayload.
// It refreshes regional weather, classifies every trail and publishes the
// run. This file only wires dependencies; the job lives in internal/scheduler.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"trailcast/internal/archive"
	"trailcast/internal/config"
	"trailcast/internal/db"
	"trailcast/internal/external"
	"trailcast/internal/prediction"
	"trailcast/internal/scheduler"
	"trailcast/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel).With("service", cfg.Service, "component", "predictor")
	logger.Info("Predictor Lambda initializing (cold start)",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
	)

	table, err := cfg.Prediction.RegionTable()
	if err != nil {
		return err
	}
	loc, err := cfg.Prediction.Location()
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	predictionRepo := db.NewPredictionRepository(pool)
	weatherRepo := db.NewWeatherRepository(pool)

	job := &scheduler.PredictionJob{
		Config: scheduler.JobConfig{
			WindowDays:     cfg.Prediction.WindowDays,
			BikeOnly:       cfg.Prediction.BikeOnly,
			RefreshWeather: cfg.Weather.Refresh,
			Location:       loc,
		},
		Log:         logger,
		Table:       table,
		Runner:      prediction.NewRunner(table, cfg.Prediction.Workers),
		Trails:      db.NewTrailRepository(pool),
		Weather:     weatherRepo,
		Predictions: predictionRepo,
		Fetcher: weather.NewOpenMeteoClient(
			&http.Client{Timeout: cfg.Weather.Timeout},
			cfg.Weather.BaseURL,
			cfg.Weather.UserAgent,
			loc,
			external.WithRateLimiter(newWeatherLimiter(cfg.Weather)),
		),
		Locker: db.NewJobLockRepository(pool),
		Metrics: &liveMetricPublisher{
			client:    cloudwatch.NewFromConfig(awsCfg),
			namespace: cfg.Observability.MetricNamespace,
		},
	}
	if cfg.AWS.ArchiveBucket != "" {
		job.Archiver = archive.NewS3Archiver(newS3Client(awsCfg, cfg.AWS), cfg.AWS.ArchiveBucket, logger)
	}
	if cfg.AWS.RunEventsQueue != "" {
		job.Events = &liveEventPublisher{
			client:   sqs.NewFromConfig(awsCfg),
			queueURL: cfg.AWS.RunEventsQueue,
		}
	}

	logger.Info("Predictor Lambda initialized",
		"regions", len(table.Regions),
		"default_region", table.DefaultRegion,
		"window_days", cfg.Prediction.WindowDays,
		"archive_bucket", cfg.AWS.ArchiveBucket,
		"run_events_queue", cfg.AWS.RunEventsQueue,
	)

	handler := newHandler(job, logger)

	// Local mode: read the payload from stdin instead of starting the Lambda
	// runtime. Usage: echo '{"dry_run":true}' | go run ./cmd/predictor
	if cfg.Environment == "local" {
		logger.Info("APP_ENV=local: reading event from stdin")
		payload, err := readLocalPayload(os.Stdin)
		if err != nil {
			return err
		}
		result, err := handler(ctx, payload)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	lambda.Start(handler)
	return nil
}

// newHandler wraps PredictionJob.Run with invocation logging.
func newHandler(job *scheduler.PredictionJob, logger *slog.Logger) func(ctx context.Context, payload scheduler.JobPayload) (*scheduler.JobResult, error) {
	return func(ctx context.Context, payload scheduler.JobPayload) (*scheduler.JobResult, error) {
		logger.InfoContext(ctx, "Predictor handler invoked",
			"reference_time", payload.ReferenceTime,
			"dry_run", payload.DryRun,
		)

		result, err := job.Run(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "prediction run failed", "error", err)
			return nil, fmt.Errorf("prediction run failed: %w", err)
		}

		logger.InfoContext(ctx, "prediction run complete",
			"run_id", result.RunID,
			"skipped", result.Skipped,
			"trail_count", result.TrailCount,
			"regions_refreshed", result.RegionsRefreshed,
			"regions_failed", len(result.RegionsFailed),
			"archive_key", result.ArchiveKey,
		)
		return result, nil
	}
}

// readLocalPayload decodes a JobPayload from r. Empty input means the
// default payload.
func readLocalPayload(r io.Reader) (scheduler.JobPayload, error) {
	var payload scheduler.JobPayload
	raw, err := io.ReadAll(r)
	if err != nil {
		return payload, fmt.Errorf("reading stdin: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("decoding payload: %w", err)
	}
	return payload, nil
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

func loadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.EndpointURL))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS SDK config: %w", err)
	}
	return awsCfg, nil
}

func newS3Client(awsCfg aws.Config, cfg config.AWSConfig) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// LocalStack serves buckets by path.
		o.UsePathStyle = cfg.EndpointURL != ""
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// newWeatherLimiter returns nil when throttling is disabled.
func newWeatherLimiter(cfg config.WeatherConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
}
