package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcast/internal/archive"
	"trailcast/internal/types"
)

const sampleFixture = `{
  "now": "2024-07-10T12:00:00Z",
  "regions": [
    {"name": "denver", "lat": 39.74, "lon": -104.99, "station_elevation_m": 1609}
  ],
  "trails": [
    {"id": "dry", "lat": 39.7, "lon": -105.0, "bike_accessible": true},
    {"id": "closed", "lat": 39.7, "lon": -105.0, "access": "no", "bike_accessible": true}
  ],
  "weather": {
    "denver": [
      {"date": "2024-07-04", "temp_max_c": 28, "temp_min_c": 14},
      {"date": "2024-07-05", "temp_max_c": 28, "temp_min_c": 14},
      {"date": "2024-07-06", "temp_max_c": 28, "temp_min_c": 14},
      {"date": "2024-07-07", "temp_max_c": 28, "temp_min_c": 14},
      {"date": "2024-07-08", "temp_max_c": 28, "temp_min_c": 14},
      {"date": "2024-07-09", "temp_max_c": 28, "temp_min_c": 14},
      {"date": "2024-07-10", "temp_max_c": 28, "temp_min_c": 14}
    ]
  }
}`

func TestRun_Fixture(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, strings.NewReader(sampleFixture), &out))

	var got output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Predictions, 2)
	assert.Equal(t, "dry", got.Predictions[0].TrailID)
	assert.Equal(t, types.ConditionRideable, got.Predictions[0].Condition)
	assert.Equal(t, types.ConditionClosed, got.Predictions[1].Condition)
	assert.Equal(t, 2, got.Summary.Total())
	assert.Len(t, got.Summary, len(types.AllConditions))
}

func TestRun_FixtureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixture), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"--in", path, "--pretty"}, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "\n  \"predictions\"")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
	}{
		{"malformed", `{"now":`},
		{"missing now", `{"trails": []}`},
		{"bad date", `{"now": "2024-07-10T12:00:00Z", "weather": {"denver": [{"date": "07/10/2024"}]}}`},
		{"unknown default region", `{"now": "2024-07-10T12:00:00Z", "default_region": "moab"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, run(nil, strings.NewReader(tt.fixture), &out))
		})
	}
}

func TestRun_DecodeArchive(t *testing.T) {
	body, err := archive.Encode(archive.Document{
		Run:         types.PredictionRun{ID: "run-9", TrailCount: 1},
		Predictions: []types.Prediction{{TrailID: "a", Condition: types.ConditionSnow}},
	}, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "run-9.json.zst")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"--archive", path}, nil, &out))

	var doc archive.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "run-9", doc.Run.ID)
	assert.Equal(t, types.ConditionSnow, doc.Predictions[0].Condition)
}
