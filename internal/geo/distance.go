// Package geo provides great-circle distance helpers for locality and
// amenity coordinates.
package geo

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusKM is the mean Earth radius used for great-circle
// distances, matching the haversine convention.
const EarthRadiusKM = 6371.0

// DistanceKM returns the great-circle distance in kilometers between
// two points given in decimal degrees.
func DistanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * EarthRadiusKM
}
