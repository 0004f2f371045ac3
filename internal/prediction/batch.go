package prediction

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"trailcast/internal/regions"
	"trailcast/internal/types"
)

// DefaultWorkers bounds how many trails are classified concurrently.
const DefaultWorkers = 8

// BatchResult is the output of one run: one prediction per input trail, in
// input order, and the count per condition label.
type BatchResult struct {
	Predictions []types.Prediction `json:"predictions"`
	Summary     types.Summary      `json:"summary"`
}

// Runner classifies every trail of a region set against per-region weather.
type Runner struct {
	table   *regions.Table
	workers int
}

// NewRunner creates a Runner over the given region table. workers <= 0 uses
// DefaultWorkers.
func NewRunner(table *regions.Table, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{table: table, workers: workers}
}

// Run classifies all trails concurrently. now is held constant for every
// trail. Trails are independent, so the only error is ctx cancellation.
func (r *Runner) Run(ctx context.Context, trails []types.Trail, weather map[string][]types.WeatherDay, now time.Time) (*BatchResult, error) {
	predictions := make([]types.Prediction, len(trails))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range trails {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			predictions[i] = r.predictTrail(trails[i], weather, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prediction: batch cancelled: %w", err)
	}

	return &BatchResult{Predictions: predictions, Summary: Summarize(predictions)}, nil
}

// PredictAll is the sequential form of Run: a pure function of trails,
// weather, the region table and now.
func PredictAll(trails []types.Trail, weather map[string][]types.WeatherDay, table *regions.Table, now time.Time) ([]types.Prediction, types.Summary) {
	r := NewRunner(table, 1)
	predictions := make([]types.Prediction, len(trails))
	for i, t := range trails {
		predictions[i] = r.predictTrail(t, weather, now)
	}
	return predictions, Summarize(predictions)
}

// Summarize counts predictions per condition. Every label is present.
func Summarize(predictions []types.Prediction) types.Summary {
	s := types.NewSummary()
	for _, p := range predictions {
		s[p.Condition]++
	}
	return s
}

// predictTrail assigns the trail to its nearest region and classifies it
// against that region's window, or the default region's window when the
// nearest region has no data.
func (r *Runner) predictTrail(t types.Trail, weather map[string][]types.WeatherDay, now time.Time) types.Prediction {
	region := r.table.Nearest(t.Lat, t.Lon)
	weatherRegion := region
	window := weather[region.Name]
	if len(window) == 0 {
		weatherRegion = r.table.Default()
		window = weather[weatherRegion.Name]
	}
	return Classify(Input{
		Trail:         t,
		Window:        window,
		Region:        region,
		WeatherRegion: weatherRegion,
		Now:           now,
	})
}
