// Package geo covers the location helpers around the ride flow: reverse
// geocoding with a bounded cache, and the distance/fare display math.
package geo

import (
	"context"
	"fmt"
)

// Address is a reverse-geocoded location in two display lengths.
type Address struct {
	Display string // full display string
	Short   string // street + locality
}

// Geocoder resolves coordinates to a display address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error)
}

// FallbackAddress renders coordinates directly, used whenever geocoding
// fails.
func FallbackAddress(lat, lng float64) Address {
	s := fmt.Sprintf("%.6f, %.6f", lat, lng)
	return Address{Display: s, Short: s}
}
