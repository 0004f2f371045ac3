package prediction

import (
	"math"
	"slices"
	"time"

	"trailcast/internal/types"
)

const (
	// SignificantPrecipitationMM is the daily total that restarts the drying clock.
	SignificantPrecipitationMM = 2.5

	// RecentPrecipitationDays is the span reported in the precipitation factor.
	RecentPrecipitationDays = 7

	// rainHourOfDay is when rain is assumed to have fallen on a wet day.
	rainHourOfDay = 12
)

// HoursSinceSignificantRain returns the hours between now and local noon of
// the most recent day with at least SignificantPrecipitationMM. When no day
// qualifies it returns the window length in hours, which is 0 for an empty
// window. The result is never negative.
func HoursSinceSignificantRain(window []types.WeatherDay, now time.Time) int {
	for _, d := range sortedNewestFirst(window) {
		if d.PrecipitationMM < SignificantPrecipitationMM {
			continue
		}
		y, m, day := d.Date.Date()
		noon := time.Date(y, m, day, rainHourOfDay, 0, 0, 0, now.Location())
		hours := math.Round(now.Sub(noon).Hours())
		return max(0, int(hours))
	}
	return len(window) * 24
}

// RecentPrecipitationTotal sums precipitation over the newest days entries of
// the window. Negative readings count as zero.
func RecentPrecipitationTotal(window []types.WeatherDay, days int) float64 {
	sorted := sortedNewestFirst(window)
	if days < len(sorted) {
		sorted = sorted[:max(days, 0)]
	}
	total := 0.0
	for _, d := range sorted {
		total += math.Max(0, d.PrecipitationMM)
	}
	return total
}

// sortedNewestFirst returns a copy of the window ordered by date descending.
// The caller's slice is never reordered.
func sortedNewestFirst(window []types.WeatherDay) []types.WeatherDay {
	days := slices.Clone(window)
	slices.SortStableFunc(days, func(a, b types.WeatherDay) int {
		return b.Date.Compare(a.Date)
	})
	return days
}
