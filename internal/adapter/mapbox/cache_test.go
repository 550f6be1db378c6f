package mapbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycastlabs/radarloop/internal/domain"
)

type countingGeocoder struct {
	results map[string]domain.GeocodingResult
	calls   int
}

func (c *countingGeocoder) ForwardGeocode(_ context.Context, query string) (domain.GeocodingResult, error) {
	c.calls++
	return c.results[query], nil
}

func TestCachedGeocoderCachesResolvedResults(t *testing.T) {
	inner := &countingGeocoder{results: map[string]domain.GeocodingResult{
		"Montreal": {Lat: 45.5, Lon: -73.6},
	}}
	cached := NewCachedGeocoder(inner, 10)

	first, err := cached.ForwardGeocode(context.Background(), "Montreal")
	require.NoError(t, err)
	second, err := cached.ForwardGeocode(context.Background(), "Montreal")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "the second lookup must come from the cache")
}

func TestCachedGeocoderKeyIsCaseInsensitive(t *testing.T) {
	inner := &countingGeocoder{results: map[string]domain.GeocodingResult{
		"Montreal": {Lat: 45.5, Lon: -73.6},
	}}
	cached := NewCachedGeocoder(inner, 10)

	_, err := cached.ForwardGeocode(context.Background(), "Montreal")
	require.NoError(t, err)
	result, err := cached.ForwardGeocode(context.Background(), "  MONTREAL ")
	require.NoError(t, err)

	assert.InDelta(t, 45.5, result.Lat, 1e-9)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoderDoesNotCacheUnresolved(t *testing.T) {
	inner := &countingGeocoder{results: map[string]domain.GeocodingResult{}}
	cached := NewCachedGeocoder(inner, 10)

	_, err := cached.ForwardGeocode(context.Background(), "Atlantis")
	require.NoError(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "Atlantis")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "not-found responses stay retryable")
}

func TestLRUEviction(t *testing.T) {
	cache := newLRUCache(2)
	cache.put("a", domain.GeocodingResult{Lat: 1})
	cache.put("b", domain.GeocodingResult{Lat: 2})

	// Touch "a" so "b" becomes least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", domain.GeocodingResult{Lat: 3})

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}
