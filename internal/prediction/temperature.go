package prediction

import (
	"math"

	"trailcast/internal/types"
)

const (
	// LapseRateCPerKm is the standard environmental lapse rate.
	LapseRateCPerKm = 6.5

	// DefaultStationTempC is used when the weather window is empty.
	DefaultStationTempC = 15.0

	// stationTempDays is how many of the most recent days feed the station average.
	stationTempDays = 3
)

// StationAverageTemp averages temp_max over the most recent three days of
// the window, or over however many days exist when there are fewer.
func StationAverageTemp(window []types.WeatherDay) float64 {
	days := sortedNewestFirst(window)
	if len(days) == 0 {
		return DefaultStationTempC
	}
	n := min(len(days), stationTempDays)
	sum := 0.0
	for _, d := range days[:n] {
		sum += d.TempMaxC
	}
	return sum / float64(n)
}

// CorrectedTemp cools the station reading by the lapse rate for every metre
// the trail sits above the station. Trails below the station are not warmed.
func CorrectedTemp(stationAvgTempC float64, trailElevationM, stationElevationM int) float64 {
	gain := math.Max(0, float64(trailElevationM-stationElevationM))
	return stationAvgTempC - gain/1000*LapseRateCPerKm
}
