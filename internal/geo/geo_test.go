package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlokMahapatra26/lastmile-client/pkg/kvstore"
)

type countingGeocoder struct {
	mu    sync.Mutex
	calls int
	addr  Address
	err   error
}

func (c *countingGeocoder) ReverseGeocode(context.Context, float64, float64) (Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.addr, c.err
}

func (c *countingGeocoder) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestCache_SecondLookupHitsCache(t *testing.T) {
	inner := &countingGeocoder{addr: Address{Display: "Jaydev Vihar, Bhubaneswar, Odisha", Short: "Jaydev Vihar, Bhubaneswar"}}
	cache := NewCache(inner, kvstore.NewMemory(), 0)
	ctx := context.Background()

	first, err := cache.ReverseGeocode(ctx, 20.296059, 85.824539)
	require.NoError(t, err)
	second, err := cache.ReverseGeocode(ctx, 20.296059, 85.824539)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.callCount(), "the second lookup must not reach the provider")
}

func TestCache_DistinctCoordinatesMiss(t *testing.T) {
	inner := &countingGeocoder{addr: Address{Display: "somewhere"}}
	cache := NewCache(inner, kvstore.NewMemory(), 0)
	ctx := context.Background()

	_, err := cache.ReverseGeocode(ctx, 20.296059, 85.824539)
	require.NoError(t, err)
	_, err = cache.ReverseGeocode(ctx, 20.354976, 85.815521)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.callCount())
}

func TestCache_FailureCachesFallback(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("provider down")}
	cache := NewCache(inner, kvstore.NewMemory(), 0)
	ctx := context.Background()

	addr, err := cache.ReverseGeocode(ctx, 20.296059, 85.824539)
	require.NoError(t, err, "geocoding never fails the caller")
	assert.Equal(t, "20.296059, 85.824539", addr.Display)

	// The fallback is cached too: no retry storm against a failing provider.
	_, err = cache.ReverseGeocode(ctx, 20.296059, 85.824539)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.callCount())
}

func TestCache_ExpiredEntryRefetches(t *testing.T) {
	inner := &countingGeocoder{addr: Address{Display: "somewhere"}}
	cache := NewCache(inner, kvstore.NewMemory(), time.Nanosecond)
	ctx := context.Background()

	_, err := cache.ReverseGeocode(ctx, 20.29, 85.82)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = cache.ReverseGeocode(ctx, 20.29, 85.82)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.callCount())
}

func TestNominatim_ReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "20.296059", r.URL.Query().Get("lat"))
		assert.Equal(t, "85.824539", r.URL.Query().Get("lon"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Contains(t, r.Header.Get("User-Agent"), "lastmile-client")
		_, _ = w.Write([]byte(`{
			"display_name": "12, Janpath, Jaydev Vihar, Bhubaneswar, Odisha, India",
			"address": {"house_number": "12", "road": "Janpath", "city": "Bhubaneswar", "state": "Odisha"}
		}`))
	}))
	defer srv.Close()

	addr, err := NewNominatim(srv.URL).ReverseGeocode(context.Background(), 20.296059, 85.824539)

	require.NoError(t, err)
	assert.Equal(t, "12, Janpath, Jaydev Vihar, Bhubaneswar, Odisha, India", addr.Display)
	assert.Equal(t, "12 Janpath, Bhubaneswar", addr.Short)
}

func TestNominatim_EmptyResultFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	addr, err := NewNominatim(srv.URL).ReverseGeocode(context.Background(), 20.29, 85.82)

	require.NoError(t, err)
	assert.Equal(t, "20.290000, 85.820000", addr.Display)
}

func TestNominatim_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewNominatim(srv.URL).ReverseGeocode(context.Background(), 20.29, 85.82)
	assert.Error(t, err)
}

func TestShortForm_Degradation(t *testing.T) {
	tests := []struct {
		name string
		body nominatimResponse
		want string
	}{
		{"no street, town only", withAddress("", "", "", "Pipili", "", ""), "Pipili"},
		{"road without number", withAddress("", "NH-16", "", "", "", "Odisha"), "NH-16"},
		{"state as last resort", withAddress("", "", "", "", "", "Odisha"), "Odisha"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortForm(tt.body))
		})
	}
}

func withAddress(houseNumber, road, city, town, village, state string) nominatimResponse {
	var body nominatimResponse
	body.Address.HouseNumber = houseNumber
	body.Address.Road = road
	body.Address.City = city
	body.Address.Town = town
	body.Address.Village = village
	body.Address.State = state
	return body
}

func TestDistance_KnownPairs(t *testing.T) {
	// Bhubaneswar railway station to the airport, roughly 3.5 km apart.
	d := Distance(20.266581, 85.843849, 20.253904, 85.816551)
	assert.InDelta(t, 3.2, d, 0.5)

	// Same point.
	assert.Zero(t, Distance(20.29, 85.82, 20.29, 85.82))

	// Bhubaneswar to Cuttack, about 25 km.
	d = Distance(20.296059, 85.824539, 20.462521, 85.882988)
	assert.InDelta(t, 19.5, d, 1.5)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "450m", FormatDistance(0.45))
	assert.Equal(t, "1.0km", FormatDistance(1.0))
	assert.Equal(t, "12.3km", FormatDistance(12.34))
}

func TestEstimateTravelTime(t *testing.T) {
	assert.Equal(t, "10 min", EstimateTravelTime(5))
	assert.Equal(t, "59 min", EstimateTravelTime(29.5))
	assert.Equal(t, "1h 0m", EstimateTravelTime(30))
	assert.Equal(t, "2h 30m", EstimateTravelTime(75))
}
