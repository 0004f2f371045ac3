package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"trailcast/internal/types"
)

// TrailRepository reads trail attributes written by the ingestion pipeline.
type TrailRepository struct {
	db DBTX
}

// NewTrailRepository creates a new TrailRepository.
func NewTrailRepository(db DBTX) *TrailRepository {
	return &TrailRepository{db: db}
}

const trailColumns = `id, source_id, name, centroid_lat, centroid_lon,
	elevation_min_m, elevation_max_m, dominant_aspect, soil_drainage_class,
	base_dry_hours, access, bike_accessible`

// ListTrails returns every trail ordered by id. Aspect and drainage values
// the enums do not recognise are returned as nil.
func (r *TrailRepository) ListTrails(ctx context.Context) ([]types.Trail, error) {
	rows, err := r.db.Query(ctx, `SELECT `+trailColumns+` FROM trails ORDER BY id`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list trails", err)
	}
	defer rows.Close()

	var trails []types.Trail
	for rows.Next() {
		t, err := scanTrail(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan trail row", err)
		}
		trails = append(trails, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating trail rows", err)
	}
	return trails, nil
}

func scanTrail(row pgx.Row) (types.Trail, error) {
	var (
		t        types.Trail
		aspect   *string
		drainage *string
	)
	err := row.Scan(
		&t.ID,
		&t.SourceID,
		&t.Name,
		&t.Lat,
		&t.Lon,
		&t.ElevationMinM,
		&t.ElevationMaxM,
		&aspect,
		&drainage,
		&t.BaseDryHours,
		&t.Access,
		&t.BikeAccessible,
	)
	if err != nil {
		return types.Trail{}, err
	}
	if aspect != nil {
		if a, ok := types.ParseAspect(*aspect); ok {
			t.DominantAspect = &a
		}
	}
	if drainage != nil {
		if dc, ok := types.ParseDrainageClass(*drainage); ok {
			t.SoilDrainageClass = &dc
		}
	}
	return t, nil
}
