package db

import (
	"context"
	"fmt"
	"time"

	"trailcast/internal/types"
)

// WeatherRepository stores daily weather per region. The table's primary key
// is (region, date).
type WeatherRepository struct {
	db DBTX
}

// NewWeatherRepository creates a new WeatherRepository.
func NewWeatherRepository(db DBTX) *WeatherRepository {
	return &WeatherRepository{db: db}
}

// GetWindows returns the stored days with from <= date <= to, grouped by
// region and ordered by date. Regions without rows are absent from the map.
func (r *WeatherRepository) GetWindows(ctx context.Context, from, to time.Time) (map[string][]types.WeatherDay, error) {
	rows, err := r.db.Query(ctx,
		`SELECT region, date, precipitation_mm, temp_max_c, temp_min_c, humidity_pct
		 FROM weather_days
		 WHERE date BETWEEN $1 AND $2
		 ORDER BY region, date`,
		types.DateOf(from), types.DateOf(to),
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query weather windows", err)
	}
	defer rows.Close()

	windows := make(map[string][]types.WeatherDay)
	for rows.Next() {
		var d types.WeatherDay
		if err := rows.Scan(&d.Region, &d.Date, &d.PrecipitationMM, &d.TempMaxC, &d.TempMinC, &d.HumidityPct); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan weather row", err)
		}
		windows[d.Region] = append(windows[d.Region], d)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating weather rows", err)
	}
	return windows, nil
}

// UpsertDays writes days for one region, replacing any existing row for the
// same date. When days repeats a date the last entry wins. It returns the
// number of rows written.
func (r *WeatherRepository) UpsertDays(ctx context.Context, region string, days []types.WeatherDay) (int64, error) {
	if region == "" {
		return 0, types.NewAppError(types.ErrCodeValidationMissingField, "region is required", nil)
	}
	days = dedupeByDate(days)
	if len(days) == 0 {
		return 0, nil
	}

	dates := make([]time.Time, len(days))
	precip := make([]float64, len(days))
	tmax := make([]float64, len(days))
	tmin := make([]float64, len(days))
	humidity := make([]int32, len(days))
	for i, d := range days {
		dates[i] = d.Date
		precip[i] = d.PrecipitationMM
		tmax[i] = d.TempMaxC
		tmin[i] = d.TempMinC
		humidity[i] = int32(d.HumidityPct)
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO weather_days (region, date, precipitation_mm, temp_max_c, temp_min_c, humidity_pct, updated_at)
		 SELECT $1, u.date, u.precipitation_mm, u.temp_max_c, u.temp_min_c, u.humidity_pct, NOW()
		 FROM unnest($2::date[], $3::float8[], $4::float8[], $5::float8[], $6::int4[])
		   AS u(date, precipitation_mm, temp_max_c, temp_min_c, humidity_pct)
		 ON CONFLICT (region, date) DO UPDATE SET
		   precipitation_mm = EXCLUDED.precipitation_mm,
		   temp_max_c = EXCLUDED.temp_max_c,
		   temp_min_c = EXCLUDED.temp_min_c,
		   humidity_pct = EXCLUDED.humidity_pct,
		   updated_at = NOW()`,
		region, dates, precip, tmax, tmin, humidity,
	)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB,
			fmt.Sprintf("failed to upsert weather for region %s", region), err)
	}
	return tag.RowsAffected(), nil
}

// dedupeByDate keeps the last entry per calendar date, preserving the order
// in which each date first appears. Dates are normalised to midnight.
func dedupeByDate(days []types.WeatherDay) []types.WeatherDay {
	index := make(map[time.Time]int, len(days))
	out := make([]types.WeatherDay, 0, len(days))
	for _, d := range days {
		y, m, dd := d.Date.Date()
		d.Date = time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
		if i, ok := index[d.Date]; ok {
			out[i] = d
			continue
		}
		index[d.Date] = len(out)
		out = append(out, d)
	}
	return out
}
