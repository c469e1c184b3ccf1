package geo

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleMaps reverse-geocodes through the Google Maps Geocoding API.
type GoogleMaps struct {
	client *maps.Client
}

// NewGoogleMaps creates a provider with the given API key.
func NewGoogleMaps(apiKey string) (*GoogleMaps, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}
	return &GoogleMaps{client: client}, nil
}

func (g *GoogleMaps) ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	results, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return Address{}, fmt.Errorf("reverse geocoding failed: %w", err)
	}
	if len(results) == 0 {
		return FallbackAddress(lat, lng), nil
	}

	// The first result is the most specific; a street_address component pair
	// gives the short form.
	display := results[0].FormattedAddress
	short := display
	var route, locality string
	for _, component := range results[0].AddressComponents {
		for _, kind := range component.Types {
			switch kind {
			case "route":
				route = component.LongName
			case "locality":
				locality = component.LongName
			}
		}
	}
	if route != "" && locality != "" {
		short = route + ", " + locality
	}

	return Address{Display: display, Short: short}, nil
}
