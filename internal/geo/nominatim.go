package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Nominatim reverse-geocodes through an OpenStreetMap Nominatim instance.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatim creates a provider against the given instance URL.
func NewNominatim(baseURL string) *Nominatim {
	return &Nominatim{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
	} `json:"address"`
}

func (n *Nominatim) ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	query.Set("format", "json")
	query.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return Address{}, err
	}
	req.Header.Set("User-Agent", "lastmile-client/1.0")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return Address{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("nominatim: status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Address{}, fmt.Errorf("nominatim: decode: %w", err)
	}

	addr := Address{Display: body.DisplayName, Short: shortForm(body)}
	if addr.Display == "" {
		addr = FallbackAddress(lat, lng)
	}
	return addr, nil
}

// shortForm builds "12 Main Road, Townsville" from the structured parts,
// degrading to the display name when the parts are missing.
func shortForm(body nominatimResponse) string {
	parts := body.Address

	var street string
	switch {
	case parts.HouseNumber != "" && parts.Road != "":
		street = parts.HouseNumber + " " + parts.Road
	case parts.Road != "":
		street = parts.Road
	}

	locality := parts.City
	for _, candidate := range []string{parts.Town, parts.Village, parts.State} {
		if locality != "" {
			break
		}
		locality = candidate
	}

	switch {
	case street != "" && locality != "":
		return street + ", " + locality
	case street != "":
		return street
	case locality != "":
		return locality
	default:
		return body.DisplayName
	}
}
