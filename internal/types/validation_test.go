package types

import (
	"errors"
	"testing"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		wantCode ErrorCode
	}{
		{"denver", 39.7392, -104.9903, ""},
		{"lat min boundary", -90, 0, ""},
		{"lat max boundary", 90, 0, ""},
		{"lon min boundary", 0, -180, ""},
		{"lon max boundary", 0, 180, ""},
		{"lat too high", 90.0001, 0, ErrCodeValidationInvalidLat},
		{"lat too low", -91, 0, ErrCodeValidationInvalidLat},
		{"lon too high", 0, 181, ErrCodeValidationInvalidLon},
		{"both invalid reports lat", 100, 200, ErrCodeValidationInvalidLat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lon)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var appErr *AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *AppError, got %v", err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", appErr.Code, tt.wantCode)
			}
		})
	}
}
