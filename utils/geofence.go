package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Coordinate is a geographic point in the municipality boundary polygon.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geofence is the polygonal boundary used to sanity-check vistoria
// coordinates. The check is advisory: a point outside the boundary flags the
// record for review but never blocks a save.
type Geofence struct {
	Coordinates []Coordinate `json:"coordinates"`
	Name        string       `json:"name,omitempty"`
}

// ParseGeofence decodes and validates a geofence from its JSON form
// (as stored in the configuracoes table).
func ParseGeofence(geofenceJSON string) (*Geofence, error) {
	if geofenceJSON == "" {
		return nil, nil
	}

	var g Geofence
	if err := json.Unmarshal([]byte(geofenceJSON), &g); err != nil {
		return nil, fmt.Errorf("geofence JSON inválido: %w", err)
	}

	if len(g.Coordinates) < 3 {
		return nil, errors.New("geofence precisa de ao menos 3 coordenadas")
	}
	for i, c := range g.Coordinates {
		if c.Lat < -90 || c.Lat > 90 {
			return nil, fmt.Errorf("latitude inválida na posição %d: %f", i, c.Lat)
		}
		if c.Lng < -180 || c.Lng > 180 {
			return nil, fmt.Errorf("longitude inválida na posição %d: %f", i, c.Lng)
		}
	}
	return &g, nil
}

// Contains reports whether the point falls inside the boundary polygon.
// The ring is closed automatically when the stored polygon is open.
func (g *Geofence) Contains(lat, lng float64) bool {
	ring := make(orb.Ring, 0, len(g.Coordinates)+1)
	for _, c := range g.Coordinates {
		ring = append(ring, orb.Point{c.Lng, c.Lat})
	}
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return planar.PolygonContains(orb.Polygon{ring}, orb.Point{lng, lat})
}
