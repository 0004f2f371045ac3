package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trailcast/internal/types"
)

func TestHoursSinceSignificantRain(t *testing.T) {
	t.Run("empty window", func(t *testing.T) {
		assert.Equal(t, 0, HoursSinceSignificantRain(nil, time.Now()))
	})

	t.Run("dry week reports the window length", func(t *testing.T) {
		end := date(2024, time.July, 10)
		assert.Equal(t, 168, HoursSinceSignificantRain(dryWeek(end, 20), end.Add(15*time.Hour)))
	})

	t.Run("rain today", func(t *testing.T) {
		end := date(2024, time.July, 10)
		window := withRain(dryWeek(end, 20), end, 8)
		assert.Equal(t, 3, HoursSinceSignificantRain(window, end.Add(15*time.Hour)))
	})

	t.Run("rain later today clamps to zero", func(t *testing.T) {
		end := date(2024, time.July, 10)
		window := withRain(dryWeek(end, 20), end, 8)
		assert.Equal(t, 0, HoursSinceSignificantRain(window, end.Add(9*time.Hour)))
	})

	t.Run("newest qualifying day wins regardless of order", func(t *testing.T) {
		window := []types.WeatherDay{
			wx(date(2024, time.October, 12), 10, 15),
			wx(date(2024, time.October, 16), 1.0, 15),
			wx(date(2024, time.October, 15), 5, 15),
			wx(date(2024, time.October, 14), 0, 15),
		}
		now := date(2024, time.October, 17).Add(12 * time.Hour)
		assert.Equal(t, 48, HoursSinceSignificantRain(window, now))
		assert.Equal(t, date(2024, time.October, 12), window[0].Date, "input must not be reordered")
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		window := []types.WeatherDay{wx(date(2024, time.October, 15), SignificantPrecipitationMM, 15)}
		now := date(2024, time.October, 16).Add(12 * time.Hour)
		assert.Equal(t, 24, HoursSinceSignificantRain(window, now))
	})

	t.Run("half hours round away from zero", func(t *testing.T) {
		window := []types.WeatherDay{wx(date(2024, time.October, 15), 4, 15)}
		now := date(2024, time.October, 16).Add(12*time.Hour + 30*time.Minute)
		assert.Equal(t, 25, HoursSinceSignificantRain(window, now))
	})
}

func TestRecentPrecipitationTotal(t *testing.T) {
	end := date(2024, time.July, 10)
	window := dryWeek(end, 20)
	window = append(window, wx(end.AddDate(0, 0, -7), 50, 20))
	window = withRain(window, end, 2)
	window = withRain(window, end.AddDate(0, 0, -3), 0.5)
	window = withRain(window, end.AddDate(0, 0, -1), -1)

	assert.Equal(t, 2.5, RecentPrecipitationTotal(window, 7))
	assert.Equal(t, 52.5, RecentPrecipitationTotal(window, 30))
	assert.Equal(t, 0.0, RecentPrecipitationTotal(nil, 7))
}

func TestStationAverageTemp(t *testing.T) {
	assert.Equal(t, DefaultStationTempC, StationAverageTemp(nil))

	two := []types.WeatherDay{
		wx(date(2024, time.July, 9), 0, 10),
		wx(date(2024, time.July, 10), 0, 20),
	}
	assert.Equal(t, 15.0, StationAverageTemp(two))

	five := []types.WeatherDay{
		wx(date(2024, time.July, 10), 0, 30),
		wx(date(2024, time.July, 6), 0, -40),
		wx(date(2024, time.July, 8), 0, 24),
		wx(date(2024, time.July, 7), 0, -40),
		wx(date(2024, time.July, 9), 0, 27),
	}
	assert.Equal(t, 27.0, StationAverageTemp(five))
}

func TestCorrectedTemp(t *testing.T) {
	assert.Equal(t, 20.0, CorrectedTemp(20, 1500, 1609), "trails below the station are not warmed")
	assert.Equal(t, 20.0, CorrectedTemp(20, 1609, 1609))
	assert.InDelta(t, 13.5, CorrectedTemp(20, 2609, 1609), 1e-9)
	assert.InDelta(t, 9.7085, CorrectedTemp(22, 3500, 1609), 1e-9)
}

func TestInSnowSeason(t *testing.T) {
	snow := map[time.Month]bool{
		time.January: true, time.February: true, time.March: true, time.April: true,
		time.November: true, time.December: true,
	}
	for m := time.January; m <= time.December; m++ {
		assert.Equal(t, snow[m], InSnowSeason(date(2024, m, 15)), "month %s", m)
	}
}
