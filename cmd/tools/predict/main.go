// Package main implements the predict CLI, which runs the prediction engine
// offline against a JSON fixture, or decodes an archived run.
//
// Usage:
//
//	go run ./cmd/tools/predict --in fixture.json
//	cat fixture.json | go run ./cmd/tools/predict --pretty
//	go run ./cmd/tools/predict --archive 8c1f8a7e.json.zst
//
// Fixture format:
//
//	{
//	  "now": "2024-07-10T12:00:00-06:00",
//	  "default_region": "denver",          // optional
//	  "regions": [ ... ],                   // optional, built-in table when absent
//	  "trails": [ {"id": "...", "lat": 39.7, "lon": -105.2, ...} ],
//	  "weather": { "denver": [ {"date": "2024-07-09", "precipitation_mm": 4.2,
//	               "temp_max_c": 24, "temp_min_c": 11, "humidity_pct": 40} ] }
//	}
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"trailcast/internal/archive"
	"trailcast/internal/prediction"
	"trailcast/internal/regions"
	"trailcast/internal/types"
)

const dateLayout = "2006-01-02"

type fixtureDay struct {
	Date            string  `json:"date"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	TempMaxC        float64 `json:"temp_max_c"`
	TempMinC        float64 `json:"temp_min_c"`
	HumidityPct     int     `json:"humidity_pct"`
}

type fixture struct {
	Now           time.Time               `json:"now"`
	DefaultRegion string                  `json:"default_region"`
	Regions       []types.Region          `json:"regions"`
	Trails        []types.Trail           `json:"trails"`
	Weather       map[string][]fixtureDay `json:"weather"`
}

type output struct {
	Predictions []types.Prediction `json:"predictions"`
	Summary     types.Summary      `json:"summary"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "predict: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	in := fs.String("in", "", "fixture file (default stdin)")
	archivePath := fs.String("archive", "", "decode an archived run (.json.zst) instead of predicting")
	pretty := fs.Bool("pretty", false, "indent output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	if *archivePath != "" {
		f, err := os.Open(*archivePath)
		if err != nil {
			return err
		}
		defer f.Close()
		doc, err := archive.Decode(f)
		if err != nil {
			return err
		}
		return enc.Encode(doc)
	}

	r := stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var fx fixture
	if err := json.NewDecoder(r).Decode(&fx); err != nil {
		return fmt.Errorf("decoding fixture: %w", err)
	}

	out, err := predict(fx)
	if err != nil {
		return err
	}
	return enc.Encode(out)
}

func predict(fx fixture) (*output, error) {
	if fx.Now.IsZero() {
		return nil, fmt.Errorf("fixture: now is required")
	}

	table, err := fixtureTable(fx)
	if err != nil {
		return nil, err
	}

	weather := make(map[string][]types.WeatherDay, len(fx.Weather))
	for region, days := range fx.Weather {
		for _, d := range days {
			date, err := time.Parse(dateLayout, d.Date)
			if err != nil {
				return nil, fmt.Errorf("fixture: region %s: invalid date %q", region, d.Date)
			}
			weather[region] = append(weather[region], types.WeatherDay{
				Region:          region,
				Date:            date,
				PrecipitationMM: d.PrecipitationMM,
				TempMaxC:        d.TempMaxC,
				TempMinC:        d.TempMinC,
				HumidityPct:     d.HumidityPct,
			})
		}
	}

	predictions, summary := prediction.PredictAll(fx.Trails, weather, table, fx.Now)
	return &output{Predictions: predictions, Summary: summary}, nil
}

func fixtureTable(fx fixture) (*regions.Table, error) {
	if len(fx.Regions) == 0 {
		table := regions.DefaultTable()
		if fx.DefaultRegion != "" {
			table.DefaultRegion = fx.DefaultRegion
		}
		return table, table.Validate()
	}
	def := fx.DefaultRegion
	if def == "" {
		def = fx.Regions[0].Name
	}
	return regions.NewTable(fx.Regions, def)
}
