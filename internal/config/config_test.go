package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionTable_BuiltIn(t *testing.T) {
	table, err := PredictionConfig{DefaultRegion: "denver"}.RegionTable()
	require.NoError(t, err)
	assert.Len(t, table.Regions, 12)
	assert.Equal(t, "denver", table.Default().Name)

	table, err = PredictionConfig{DefaultRegion: "boulder"}.RegionTable()
	require.NoError(t, err)
	assert.Equal(t, "boulder", table.Default().Name)

	_, err = PredictionConfig{DefaultRegion: "moab"}.RegionTable()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrValidation, cfgErr.Type)
}

func TestRegionTable_FromJSON(t *testing.T) {
	cfg := PredictionConfig{
		DefaultRegion: "moab",
		RegionsJSON: `[
			{"name": "moab", "lat": 38.573, "lon": -109.549, "station_elevation_m": 1227},
			{"name": "fruita", "lat": 39.159, "lon": -108.729, "station_elevation_m": 1377}
		]`,
	}
	table, err := cfg.RegionTable()
	require.NoError(t, err)
	require.Len(t, table.Regions, 2)
	assert.Equal(t, 1227, table.Default().StationElevationM)
	assert.Equal(t, "fruita", table.Nearest(39.2, -108.7).Name)

	cfg.RegionsJSON = `{"name": "moab"}`
	_, err = cfg.RegionTable()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrParsing, cfgErr.Type)

	cfg.RegionsJSON = `[{"name": "moab", "lat": 138, "lon": -109}]`
	_, err = cfg.RegionTable()
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrValidation, cfgErr.Type)
}

func TestLocation(t *testing.T) {
	loc, err := PredictionConfig{Timezone: "America/Denver"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", loc.String())

	_, err = PredictionConfig{Timezone: "Nowhere/Special"}.Location()
	assert.Error(t, err)
}

func TestSecretStringRedaction(t *testing.T) {
	s := SecretString("postgres://user:hunter2@db/trailcast")

	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))

	b, err := json.Marshal(DatabaseConfig{URL: s})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hunter2")

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("connecting", "database_url", s)
	assert.NotContains(t, buf.String(), "hunter2")

	assert.Equal(t, "postgres://user:hunter2@db/trailcast", s.Unmask())
}

func TestBuildInfo(t *testing.T) {
	info := NewBuildInfo()
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "none", info.Commit)
}
