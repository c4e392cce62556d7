package utils

import (
	"strings"
	"testing"
)

// square roughly around São Leopoldo's coordinates
const fenceJSON = `{
	"name": "São Leopoldo",
	"coordinates": [
		{"lat": -29.70, "lng": -51.20},
		{"lat": -29.70, "lng": -51.10},
		{"lat": -29.80, "lng": -51.10},
		{"lat": -29.80, "lng": -51.20}
	]
}`

func TestParseGeofence(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr string
		wantNil bool
	}{
		{"valid polygon", fenceJSON, "", false},
		{"empty string means not configured", "", "", true},
		{"broken json", "{coordinates:", "JSON inválido", false},
		{"two points is not a polygon", `{"coordinates":[{"lat":1,"lng":1},{"lat":2,"lng":2}]}`, "ao menos 3", false},
		{"latitude out of range", `{"coordinates":[{"lat":91,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":0}]}`, "latitude inválida", false},
		{"longitude out of range", `{"coordinates":[{"lat":0,"lng":-181},{"lat":0,"lng":1},{"lat":1,"lng":0}]}`, "longitude inválida", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGeofence(tt.json)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseGeofence() error = %v, expected to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGeofence() unexpected error: %v", err)
			}
			if tt.wantNil != (g == nil) {
				t.Errorf("ParseGeofence() = %v, wantNil %v", g, tt.wantNil)
			}
		})
	}
}

func TestGeofenceContains(t *testing.T) {
	g, err := ParseGeofence(fenceJSON)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		lat, lng float64
		expected bool
	}{
		{"center of the square", -29.75, -51.15, true},
		{"north of the boundary", -29.60, -51.15, false},
		{"west of the boundary", -29.75, -51.30, false},
		{"far away", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Contains(tt.lat, tt.lng); got != tt.expected {
				t.Errorf("Contains(%v, %v) = %v, expected %v", tt.lat, tt.lng, got, tt.expected)
			}
		})
	}
}
