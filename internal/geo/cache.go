package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AlokMahapatra26/lastmile-client/pkg/kvstore"
	"github.com/AlokMahapatra26/lastmile-client/pkg/logger"
)

// DefaultCacheTTL bounds external geocoding call volume.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cache decorates a Geocoder with a durable cache keyed by the rounded
// coordinate pair. Failures are cached as the coordinate fallback so a bad
// location does not hammer the provider.
type Cache struct {
	inner Geocoder
	store kvstore.Store
	ttl   time.Duration
}

// NewCache wraps a geocoder. A non-positive ttl uses the default.
func NewCache(inner Geocoder, store kvstore.Store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{inner: inner, store: store, ttl: ttl}
}

func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("addr:%.6f:%.6f", lat, lng)
}

func (c *Cache) ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error) {
	key := cacheKey(lat, lng)

	if raw, err := c.store.Get(ctx, key); err == nil {
		var addr Address
		if err := json.Unmarshal([]byte(raw), &addr); err == nil {
			return addr, nil
		}
		// Unreadable entry: drop it and refetch.
		_ = c.store.Delete(ctx, key)
	}

	addr, err := c.inner.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		logger.Warn("geo: reverse geocode failed, caching fallback",
			zap.Float64("lat", lat), zap.Float64("lng", lng), zap.Error(err))
		addr = FallbackAddress(lat, lng)
	}

	if encoded, err := json.Marshal(addr); err == nil {
		if err := c.store.Set(ctx, key, string(encoded), c.ttl); err != nil {
			logger.Warn("geo: failed to cache address", zap.Error(err))
		}
	}
	return addr, nil
}
