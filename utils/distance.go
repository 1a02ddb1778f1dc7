package utils

import "math"

const (
	// MetersPerDegreeLat is the ground distance of one degree of latitude.
	MetersPerDegreeLat = 111111.0
	// MetersPerDegreeLonEquator is the ground distance of one degree of
	// longitude at the equator; scale by cos(lat) elsewhere.
	MetersPerDegreeLonEquator = 111320.0
)

// GroundDistanceMeters approximates the distance between two WGS84 points
// using an equirectangular projection scaled at the mean latitude. At
// city-network scale the error against haversine is negligible and it keeps
// the inner loop of nearest-stop matching cheap.
func GroundDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	latAvg := (lat1 + lat2) / 2
	lonFactor := math.Cos(latAvg*math.Pi/180) * MetersPerDegreeLonEquator
	dy := (lat1 - lat2) * MetersPerDegreeLat
	dx := (lon1 - lon2) * lonFactor
	return math.Sqrt(dy*dy + dx*dx)
}
