package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371

// cityAvgSpeedKmh is the assumed average city driving speed for the rough
// travel-time estimate shown while booking.
const cityAvgSpeedKmh = 30

// Distance returns the haversine distance in kilometers between two
// coordinate pairs.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// FormatDistance renders a distance for display: meters under a kilometer,
// otherwise one decimal of kilometers.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}

// EstimateTravelTime renders a rough city driving time for a distance.
func EstimateTravelTime(km float64) string {
	minutes := int(math.Round(km / cityAvgSpeedKmh * 60))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
