package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trailcast/internal/types"
)

// PredictionRepository stores run metadata and the latest prediction for
// each trail. trail_predictions holds one row per trail; each run replaces it.
type PredictionRepository struct {
	db DBTX
}

// NewPredictionRepository creates a new PredictionRepository.
func NewPredictionRepository(db DBTX) *PredictionRepository {
	return &PredictionRepository{db: db}
}

const predictionColumns = `trail_id, condition, confidence, hours_since_rain,
	effective_dry_hours, factors, predicted_at`

// SaveRun writes the run row and upserts every prediction in one statement,
// so a failed save leaves neither behind.
func (r *PredictionRepository) SaveRun(ctx context.Context, run types.PredictionRun, predictions []types.Prediction) error {
	summary := run.Summary
	if summary == nil {
		summary = types.NewSummary()
	}

	n := len(predictions)
	trailIDs := make([]string, n)
	regions := make([]string, n)
	conditions := make([]string, n)
	confidences := make([]int32, n)
	hours := make([]int32, n)
	effective := make([]int32, n)
	factors := make([]string, n)
	for i, p := range predictions {
		b, err := json.Marshal(p.Factors)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalUnexpected,
				fmt.Sprintf("failed to encode factors for trail %s", p.TrailID), err)
		}
		trailIDs[i] = p.TrailID
		regions[i] = p.Factors.Region
		conditions[i] = string(p.Condition)
		confidences[i] = int32(p.Confidence)
		hours[i] = int32(p.HoursSinceRain)
		effective[i] = int32(p.EffectiveDryHours)
		factors[i] = string(b)
	}

	_, err := r.db.Exec(ctx,
		`WITH run AS (
		   INSERT INTO prediction_runs (id, predicted_at, window_start, window_end, trail_count, summary, duration_ms)
		   VALUES ($1, $2, $3, $4, $5, $6, $7)
		 )
		 INSERT INTO trail_predictions (trail_id, run_id, region, condition, confidence,
		   hours_since_rain, effective_dry_hours, factors, predicted_at)
		 SELECT u.trail_id, $1, u.region, u.condition, u.confidence,
		   u.hours_since_rain, u.effective_dry_hours, u.factors::jsonb, $2
		 FROM unnest($8::text[], $9::text[], $10::text[], $11::int4[], $12::int4[], $13::int4[], $14::text[])
		   AS u(trail_id, region, condition, confidence, hours_since_rain, effective_dry_hours, factors)
		 ON CONFLICT (trail_id) DO UPDATE SET
		   run_id = EXCLUDED.run_id,
		   region = EXCLUDED.region,
		   condition = EXCLUDED.condition,
		   confidence = EXCLUDED.confidence,
		   hours_since_rain = EXCLUDED.hours_since_rain,
		   effective_dry_hours = EXCLUDED.effective_dry_hours,
		   factors = EXCLUDED.factors,
		   predicted_at = EXCLUDED.predicted_at`,
		run.ID, run.PredictedAt, run.WindowStart, run.WindowEnd, run.TrailCount, summary, run.DurationMs,
		trailIDs, regions, conditions, confidences, hours, effective, factors,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to save prediction run", err)
	}
	return nil
}

// GetLatestRun returns the most recent run's metadata.
func (r *PredictionRepository) GetLatestRun(ctx context.Context) (*types.PredictionRun, error) {
	var run types.PredictionRun
	err := r.db.QueryRow(ctx,
		`SELECT id, predicted_at, window_start, window_end, trail_count, summary, duration_ms
		 FROM prediction_runs
		 ORDER BY predicted_at DESC
		 LIMIT 1`,
	).Scan(&run.ID, &run.PredictedAt, &run.WindowStart, &run.WindowEnd, &run.TrailCount, &run.Summary, &run.DurationMs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPredictionRun, "no prediction run has completed", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get latest prediction run", err)
	}
	return &run, nil
}

// GetByTrail returns the latest prediction for one trail.
func (r *PredictionRepository) GetByTrail(ctx context.Context, trailID string) (*types.Prediction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+predictionColumns+` FROM trail_predictions WHERE trail_id = $1`,
		trailID,
	)
	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTrail,
				fmt.Sprintf("no prediction for trail %s", trailID), nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get trail prediction", err)
	}
	return &p, nil
}

// ListByRegion returns the latest predictions of every trail assigned to
// region, ordered by trail id. An unknown region yields an empty slice.
func (r *PredictionRepository) ListByRegion(ctx context.Context, region string) ([]types.Prediction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+predictionColumns+` FROM trail_predictions WHERE region = $1 ORDER BY trail_id`,
		region,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list region predictions", err)
	}
	defer rows.Close()

	predictions := []types.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan prediction row", err)
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating prediction rows", err)
	}
	return predictions, nil
}

func scanPrediction(row pgx.Row) (types.Prediction, error) {
	var (
		p         types.Prediction
		condition string
	)
	err := row.Scan(
		&p.TrailID,
		&condition,
		&p.Confidence,
		&p.HoursSinceRain,
		&p.EffectiveDryHours,
		&p.Factors,
		&p.PredictedAt,
	)
	if err != nil {
		return types.Prediction{}, err
	}
	p.Condition = types.Condition(condition)
	return p, nil
}
