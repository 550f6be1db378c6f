package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxValid(t *testing.T) {
	assert.True(t, BoundingBox{MinLat: 40, MinLon: -80, MaxLat: 62, MaxLon: -57}.Valid())
	assert.False(t, BoundingBox{}.Valid())
	assert.False(t, BoundingBox{MinLat: 50, MinLon: -60, MaxLat: 40, MaxLon: -57}.Valid())
	assert.False(t, BoundingBox{MinLat: 40, MinLon: -57, MaxLat: 62, MaxLon: -60}.Valid())
}

func TestBoundingBoxExpand(t *testing.T) {
	box := BoundingBox{MinLat: 45, MinLon: -75, MaxLat: 47, MaxLon: -73}

	got := box.Expand(0.75)

	assert.InDelta(t, 44.25, got.MinLat, 1e-9)
	assert.InDelta(t, -75.75, got.MinLon, 1e-9)
	assert.InDelta(t, 47.75, got.MaxLat, 1e-9)
	assert.InDelta(t, -72.25, got.MaxLon, 1e-9)
}

func TestBoundingBoxUnion(t *testing.T) {
	a := BoundingBox{MinLat: 40, MinLon: -80, MaxLat: 50, MaxLon: -70}
	b := BoundingBox{MinLat: 45, MinLon: -75, MaxLat: 55, MaxLon: -60}

	got := a.Union(b)

	assert.Equal(t, BoundingBox{MinLat: 40, MinLon: -80, MaxLat: 55, MaxLon: -60}, got)
	assert.Equal(t, got, b.Union(a), "union should be symmetric")
}

func TestWMSBBoxLatitudeFirst(t *testing.T) {
	box := BoundingBox{MinLat: 40.5, MinLon: -79.8, MaxLat: 62.6, MaxLon: -57.1}

	assert.Equal(t, "40.500000,-79.800000,62.600000,-57.100000", box.WMSBBox())
}

func TestCenterZoomBox(t *testing.T) {
	box := CenterZoomBox(47.3, -74.5, 8, 1920, 1080)

	require.True(t, box.Valid())

	// 360 / (256 * 2^8) degrees per pixel = 0.00549316406...
	degPerPx := 360.0 / (256 * 256.0)
	assert.InDelta(t, 1920*degPerPx, box.MaxLon-box.MinLon, 1e-9)
	assert.InDelta(t, 1080*degPerPx, box.MaxLat-box.MinLat, 1e-9)

	// Centered on the requested point.
	assert.InDelta(t, 47.3, (box.MinLat+box.MaxLat)/2, 1e-9)
	assert.InDelta(t, -74.5, (box.MinLon+box.MaxLon)/2, 1e-9)
}

func TestCenterZoomBoxHigherZoomIsTighter(t *testing.T) {
	wide := CenterZoomBox(47.3, -74.5, 6, 1920, 1080)
	tight := CenterZoomBox(47.3, -74.5, 8, 1920, 1080)

	assert.Less(t, tight.MaxLon-tight.MinLon, wide.MaxLon-wide.MinLon)
	assert.Less(t, tight.MaxLat-tight.MinLat, wide.MaxLat-wide.MinLat)
}

func TestBoxAround(t *testing.T) {
	locs := []Location{
		{Name: "Montreal", Lat: 45.5, Lon: -73.6},
		{Name: "Quebec City", Lat: 46.8, Lon: -71.2},
		{Name: "Unresolved"}, // no coordinates, must be ignored
	}

	box, ok := BoxAround(locs, 0.5)

	require.True(t, ok)
	assert.InDelta(t, 45.0, box.MinLat, 1e-9)
	assert.InDelta(t, -74.1, box.MinLon, 1e-9)
	assert.InDelta(t, 47.3, box.MaxLat, 1e-9)
	assert.InDelta(t, -70.7, box.MaxLon, 1e-9)
}

func TestBoxAroundSingleLocation(t *testing.T) {
	box, ok := BoxAround([]Location{{Name: "Halifax", Lat: 44.65, Lon: -63.57}}, 0.75)

	require.True(t, ok)
	assert.True(t, box.Valid(), "padding should give a point location positive area")
}

func TestBoxAroundNoUsableLocations(t *testing.T) {
	_, ok := BoxAround(nil, 0.75)
	assert.False(t, ok)

	_, ok = BoxAround([]Location{{Name: "Nowhere"}}, 0.75)
	assert.False(t, ok)
}

func TestLocationHasCoords(t *testing.T) {
	assert.True(t, Location{Lat: 45.5, Lon: -73.6}.HasCoords())
	assert.True(t, Location{Lat: 51.5, Lon: 0}.HasCoords(), "Greenwich longitude is legitimate")
	assert.False(t, Location{}.HasCoords())
}
