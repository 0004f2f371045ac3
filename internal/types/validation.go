package types

import "fmt"

// Validation constraint constants.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0
)

// ValidateCoordinates checks a latitude/longitude pair and returns an AppError
// naming the first offending value.
func ValidateCoordinates(lat, lon float64) error {
	if lat < MinLat || lat > MaxLat {
		return NewAppError(ErrCodeValidationInvalidLat,
			fmt.Sprintf("latitude %.6f outside [%.0f, %.0f]", lat, MinLat, MaxLat), nil)
	}
	if lon < MinLon || lon > MaxLon {
		return NewAppError(ErrCodeValidationInvalidLon,
			fmt.Sprintf("longitude %.6f outside [%.0f, %.0f]", lon, MinLon, MaxLon), nil)
	}
	return nil
}
