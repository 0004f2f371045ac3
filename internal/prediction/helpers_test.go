package prediction

import (
	"time"

	"trailcast/internal/types"
)

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func wx(d time.Time, precipMM, tempMaxC float64) types.WeatherDay {
	return types.WeatherDay{
		Date:            d,
		PrecipitationMM: precipMM,
		TempMaxC:        tempMaxC,
		TempMinC:        tempMaxC - 12,
		HumidityPct:     40,
	}
}

// dryWeek returns seven dry days ending on end, all at tempMaxC.
func dryWeek(end time.Time, tempMaxC float64) []types.WeatherDay {
	days := make([]types.WeatherDay, 0, 7)
	for i := 6; i >= 0; i-- {
		days = append(days, wx(end.AddDate(0, 0, -i), 0, tempMaxC))
	}
	return days
}

// withRain sets the precipitation of the day matching d.
func withRain(days []types.WeatherDay, d time.Time, mm float64) []types.WeatherDay {
	for i := range days {
		if days[i].Date.Equal(d) {
			days[i].PrecipitationMM = mm
		}
	}
	return days
}
