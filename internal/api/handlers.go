package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trailcast/internal/regions"
	"trailcast/internal/types"
)

// HandleLatestRun handles GET /v1/runs/latest.
func (s *Server) HandleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Store.GetLatestRun(r.Context())
	if err != nil {
		Error(w, r, err)
		return
	}
	Data(w, r, run, nil)
}

// HandleTrailPrediction handles GET /v1/trails/{trailID}/prediction.
func (s *Server) HandleTrailPrediction(w http.ResponseWriter, r *http.Request) {
	trailID := strings.TrimSpace(chi.URLParam(r, "trailID"))
	if trailID == "" {
		Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField, "trail id is required", nil))
		return
	}

	p, err := s.Store.GetByTrail(r.Context(), trailID)
	if err != nil {
		Error(w, r, err)
		return
	}
	Data(w, r, p, nil)
}

// HandleListRegions handles GET /v1/regions.
func (s *Server) HandleListRegions(w http.ResponseWriter, r *http.Request) {
	Data(w, r, s.Table.Regions, &Meta{
		Count:         countOf(len(s.Table.Regions)),
		DefaultRegion: s.Table.Default().Name,
	})
}

// HandleRegionPredictions handles GET /v1/regions/{region}/predictions.
func (s *Server) HandleRegionPredictions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "region")
	if _, ok := s.Table.Lookup(name); !ok {
		Error(w, r, types.NewAppError(types.ErrCodeNotFoundRegion,
			fmt.Sprintf("unknown region %q", name), nil))
		return
	}

	predictions, err := s.Store.ListByRegion(r.Context(), name)
	if err != nil {
		Error(w, r, err)
		return
	}
	Data(w, r, predictions, &Meta{Count: countOf(len(predictions))})
}

// NearestRegionResponse is a region assignment plus the great-circle
// distance to the region centre.
type NearestRegionResponse struct {
	types.Region
	DistanceKm float64 `json:"distance_km"`
}

// HandleNearestRegion handles GET /v1/regions/nearest?lat=&lon=.
func (s *Server) HandleNearestRegion(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := parseCoordinate(q.Get("lat"), "lat", types.ErrCodeValidationInvalidLat)
	if err != nil {
		Error(w, r, err)
		return
	}
	lon, err := parseCoordinate(q.Get("lon"), "lon", types.ErrCodeValidationInvalidLon)
	if err != nil {
		Error(w, r, err)
		return
	}
	if err := types.ValidateCoordinates(lat, lon); err != nil {
		Error(w, r, err)
		return
	}

	region := s.Table.Nearest(lat, lon)
	Data(w, r, NearestRegionResponse{
		Region:     region,
		DistanceKm: math.Round(regions.DistanceKm(lat, lon, region)*10) / 10,
	}, nil)
}

func parseCoordinate(raw, name string, code types.ErrorCode) (float64, error) {
	if raw == "" {
		return 0, types.NewAppError(types.ErrCodeValidationMissingField,
			name+" query parameter is required", nil)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, types.NewAppError(code, name+" must be a valid number", nil)
	}
	return v, nil
}
