package types

import "time"

// Trail is a trail segment with the static attributes sourced by ingestion.
// Optional attributes are pointers; nil means the enrichment step had no value.
type Trail struct {
	ID       string  `json:"id" db:"id"`
	SourceID string  `json:"source_id" db:"source_id"`
	Name     string  `json:"name" db:"name"`
	Lat      float64 `json:"lat" db:"centroid_lat"`
	Lon      float64 `json:"lon" db:"centroid_lon"`

	ElevationMinM     *int           `json:"elevation_min_m,omitempty" db:"elevation_min_m"`
	ElevationMaxM     *int           `json:"elevation_max_m,omitempty" db:"elevation_max_m"`
	DominantAspect    *Aspect        `json:"dominant_aspect,omitempty" db:"dominant_aspect"`
	SoilDrainageClass *DrainageClass `json:"soil_drainage_class,omitempty" db:"soil_drainage_class"`
	// BaseDryHours overrides the drainage-class lookup when present.
	BaseDryHours      *int           `json:"base_dry_hours,omitempty" db:"base_dry_hours"`
	Access            *string        `json:"access,omitempty" db:"access"`

	BikeAccessible bool `json:"bike_accessible" db:"bike_accessible"`
}

// WeatherDay is one day of observations for a region. At most one row exists
// per (Region, Date).
type WeatherDay struct {
	Region          string    `json:"region,omitempty" db:"region"`
	Date            time.Time `json:"date" db:"date"`
	PrecipitationMM float64   `json:"precipitation_mm" db:"precipitation_mm"`
	TempMaxC        float64   `json:"temp_max_c" db:"temp_max_c"`
	TempMinC        float64   `json:"temp_min_c" db:"temp_min_c"`
	HumidityPct     int       `json:"humidity_pct" db:"humidity_pct"`
}

// Region is a weather region: the station's representative centre and elevation.
type Region struct {
	Name              string  `json:"name" validate:"required,max=64"`
	Lat               float64 `json:"lat" validate:"latitude"`
	Lon               float64 `json:"lon" validate:"longitude"`
	StationElevationM int     `json:"station_elevation_m" validate:"gte=-500,lte=9000"`
}

// Factors records every input that contributed to a prediction, whichever
// branch of the classifier produced it.
type Factors struct {
	Region                string         `json:"region"`
	WeatherRegion         string         `json:"weather_region"`
	SoilDrainageClass     *DrainageClass `json:"soil_drainage_class"`
	DominantAspect        *Aspect        `json:"dominant_aspect"`
	ElevationMinM         *int           `json:"elevation_min_m"`
	ElevationMaxM         *int           `json:"elevation_max_m"`
	RecentPrecipitationMM float64        `json:"recent_precipitation_mm"`
	BaseDryHours          int            `json:"base_dry_hours"`
	StationAvgTempC       float64        `json:"station_avg_temp_c"`
	CorrectedTempC        float64        `json:"corrected_temp_c"`
	AspectModifier        float64        `json:"aspect_modifier"`
	ElevationModifier     float64        `json:"elevation_modifier"`
	TemperatureModifier   float64        `json:"temperature_modifier"`
	AccessRule            AccessRule     `json:"access_rule"`
	WeatherDays           int            `json:"weather_days"`
}

// Prediction is the engine output for one trail in one run.
type Prediction struct {
	TrailID           string    `json:"trail_id" db:"trail_id"`
	Condition         Condition `json:"condition" db:"condition"`
	Confidence        int       `json:"confidence" db:"confidence"`
	HoursSinceRain    int       `json:"hours_since_rain" db:"hours_since_rain"`
	EffectiveDryHours int       `json:"effective_dry_hours" db:"effective_dry_hours"`
	Factors           Factors   `json:"factors" db:"factors"`
	PredictedAt       time.Time `json:"predicted_at" db:"predicted_at"`
}

// Summary counts predictions per condition label for one run.
type Summary map[Condition]int

// NewSummary returns a summary with every label present at zero.
func NewSummary() Summary {
	s := make(Summary, len(AllConditions))
	for _, c := range AllConditions {
		s[c] = 0
	}
	return s
}

// Total is the number of predictions counted.
func (s Summary) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// PredictionRun is the metadata row written once per batch run.
type PredictionRun struct {
	ID          string    `json:"id" db:"id"`
	PredictedAt time.Time `json:"predicted_at" db:"predicted_at"`
	WindowStart time.Time `json:"window_start" db:"window_start"`
	WindowEnd   time.Time `json:"window_end" db:"window_end"`
	TrailCount  int       `json:"trail_count" db:"trail_count"`
	Summary     Summary   `json:"summary" db:"summary"`
	DurationMs  int64     `json:"duration_ms" db:"duration_ms"`
}

// DateOf truncates t to midnight of its calendar day in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
