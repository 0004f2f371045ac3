// Package regions holds the fixed table of weather regions and the
// nearest-region assignment used to pair each trail with a weather window.
package regions

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/golang/geo/s2"

	"trailcast/internal/types"
)

// Table is an ordered set of regions plus the designated fallback region.
// Order matters: distance ties resolve to the earlier entry.
type Table struct {
	Regions       []types.Region
	DefaultRegion string
}

// NewTable builds a Table and validates it.
func NewTable(regions []types.Region, defaultRegion string) (*Table, error) {
	t := &Table{Regions: regions, DefaultRegion: defaultRegion}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks every region's fields, rejects duplicate names and
// requires DefaultRegion to name an entry in the table.
func (t *Table) Validate() error {
	if len(t.Regions) == 0 {
		return types.NewAppError(types.ErrCodeValidationInvalidRegion, "region table is empty", nil)
	}
	v := validator.New()
	seen := make(map[string]bool, len(t.Regions))
	for i, r := range t.Regions {
		if err := v.Struct(r); err != nil {
			return types.NewAppError(types.ErrCodeValidationInvalidRegion,
				fmt.Sprintf("region %d (%q) is invalid", i, r.Name), err)
		}
		if seen[r.Name] {
			return types.NewAppError(types.ErrCodeValidationInvalidRegion,
				fmt.Sprintf("duplicate region name %q", r.Name), nil)
		}
		seen[r.Name] = true
	}
	if !seen[t.DefaultRegion] {
		return types.NewAppError(types.ErrCodeValidationInvalidRegion,
			fmt.Sprintf("default region %q is not in the table", t.DefaultRegion), nil)
	}
	return nil
}

// Lookup returns the region with the given name.
func (t *Table) Lookup(name string) (types.Region, bool) {
	for _, r := range t.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return types.Region{}, false
}

// Default returns the designated fallback region. A table that failed
// validation may return a region with only its name set.
func (t *Table) Default() types.Region {
	if r, ok := t.Lookup(t.DefaultRegion); ok {
		return r
	}
	return types.Region{Name: t.DefaultRegion}
}

// Nearest assigns a coordinate to the closest region in the table.
func (t *Table) Nearest(lat, lon float64) types.Region {
	return NearestRegion(lat, lon, t.Regions, t.Default())
}

// NearestRegion returns the region whose centre is closest to (lat, lon) by
// Euclidean distance over raw degrees. The first region wins a tie, so the
// result depends on slice order. An empty slice yields fallback.
func NearestRegion(lat, lon float64, regions []types.Region, fallback types.Region) types.Region {
	best := fallback
	bestDist := -1.0
	for _, r := range regions {
		dLat := lat - r.Lat
		dLon := lon - r.Lon
		// Squared distance preserves ordering.
		d := dLat*dLat + dLon*dLon
		if bestDist < 0 || d < bestDist {
			best = r
			bestDist = d
		}
	}
	return best
}

// EarthRadiusKm is the mean Earth radius used for reported distances.
const EarthRadiusKm = 6371.0088

// DistanceKm is the great-circle distance from (lat, lon) to the region
// centre. It is informational only; assignment uses NearestRegion.
func DistanceKm(lat, lon float64, r types.Region) float64 {
	p1 := s2.LatLngFromDegrees(lat, lon)
	p2 := s2.LatLngFromDegrees(r.Lat, r.Lon)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// DefaultTable is the built-in Colorado Front Range and mountain region set,
// used when no table is configured.
func DefaultTable() *Table {
	return &Table{
		Regions: []types.Region{
			{Name: "denver", Lat: 39.7392, Lon: -104.9903, StationElevationM: 1609},
			{Name: "boulder", Lat: 40.0150, Lon: -105.2705, StationElevationM: 1655},
			{Name: "fort_collins", Lat: 40.5853, Lon: -105.0844, StationElevationM: 1525},
			{Name: "colorado_springs", Lat: 38.8339, Lon: -104.8214, StationElevationM: 1839},
			{Name: "summit_county", Lat: 39.5792, Lon: -106.0975, StationElevationM: 2775},
			{Name: "vail_valley", Lat: 39.6403, Lon: -106.3742, StationElevationM: 2476},
			{Name: "aspen", Lat: 39.1911, Lon: -106.8175, StationElevationM: 2405},
			{Name: "crested_butte", Lat: 38.8697, Lon: -106.9878, StationElevationM: 2703},
			{Name: "salida", Lat: 38.5347, Lon: -105.9989, StationElevationM: 2145},
			{Name: "steamboat", Lat: 40.4850, Lon: -106.8317, StationElevationM: 2051},
			{Name: "grand_junction", Lat: 39.0639, Lon: -108.5506, StationElevationM: 1397},
			{Name: "durango", Lat: 37.2753, Lon: -107.8801, StationElevationM: 1988},
		},
		DefaultRegion: "denver",
	}
}
