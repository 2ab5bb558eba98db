package domain

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const EarthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusMeters
}

func (c Coordinate) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Bounds returns the lat/lon rectangle enclosing the area. When the area
// crosses the antimeridian the longitude range widens to the whole globe.
func (a Area) Bounds() Bounds {
	angle := s1.Angle(a.RadiusMeters / EarthRadiusMeters)
	rect := s2.CapFromCenterAngle(s2.PointFromLatLng(a.Center.latLng()), angle).RectBound()

	b := Bounds{
		MinLat: s1.Angle(rect.Lat.Lo).Degrees(),
		MaxLat: s1.Angle(rect.Lat.Hi).Degrees(),
		MinLon: s1.Angle(rect.Lng.Lo).Degrees(),
		MaxLon: s1.Angle(rect.Lng.Hi).Degrees(),
	}
	if rect.Lng.IsFull() || rect.Lng.IsInverted() {
		b.MinLon, b.MaxLon = -180, 180
	}
	return b
}
