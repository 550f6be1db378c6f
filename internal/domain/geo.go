package domain

import (
	"fmt"
	"math"
)

// BoundingBox is a geographic rectangle in WGS-84 degrees.
// A well-formed box satisfies MinLat < MaxLat and MinLon < MaxLon.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Valid reports whether the box has positive area.
func (b BoundingBox) Valid() bool {
	return b.MinLat < b.MaxLat && b.MinLon < b.MaxLon
}

// Expand grows the box by pad degrees on every side.
func (b BoundingBox) Expand(pad float64) BoundingBox {
	return BoundingBox{
		MinLat: b.MinLat - pad,
		MinLon: b.MinLon - pad,
		MaxLat: b.MaxLat + pad,
		MaxLon: b.MaxLon + pad,
	}
}

// Union returns the minimal box containing both b and other.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	return BoundingBox{
		MinLat: math.Min(b.MinLat, other.MinLat),
		MinLon: math.Min(b.MinLon, other.MinLon),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
	}
}

// WMSBBox renders the box as a WMS 1.3.0 BBOX parameter. EPSG:4326 mandates
// latitude-first axis order: minLat,minLon,maxLat,maxLon.
func (b BoundingBox) WMSBBox() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}

// mercatorTileSize is the Web-Mercator base tile edge in pixels.
const mercatorTileSize = 256

// CenterZoomBox computes the bounding box covered by a widthPx×heightPx
// canvas centered on (lat, lon) at the given zoom level, under the spherical
// Web-Mercator approximation degreesPerPixel = 360 / (256 · 2^zoom).
// The latitude span does not correct for Mercator vertical scale distortion;
// see the package documentation.
func CenterZoomBox(lat, lon float64, zoom, widthPx, heightPx int) BoundingBox {
	degPerPx := 360.0 / (mercatorTileSize * math.Exp2(float64(zoom)))
	halfLat := float64(heightPx) / 2 * degPerPx
	halfLon := float64(widthPx) / 2 * degPerPx
	return BoundingBox{
		MinLat: lat - halfLat,
		MinLon: lon - halfLon,
		MaxLat: lat + halfLat,
		MaxLon: lon + halfLon,
	}
}

// Location is a named point of interest that the rendered region must cover.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// HasCoords reports whether the location carries usable coordinates.
// (0, 0) is open ocean off West Africa and never a configured location.
func (l Location) HasCoords() bool {
	return l.Lat != 0 || l.Lon != 0
}

// BoxAround returns the convex bounding rectangle of the given locations
// expanded by pad degrees. Locations without coordinates are ignored.
// ok is false when no location contributed.
func BoxAround(locs []Location, pad float64) (box BoundingBox, ok bool) {
	for _, loc := range locs {
		if !loc.HasCoords() {
			continue
		}
		point := BoundingBox{MinLat: loc.Lat, MinLon: loc.Lon, MaxLat: loc.Lat, MaxLon: loc.Lon}
		if !ok {
			box = point
			ok = true
			continue
		}
		box = box.Union(point)
	}
	if !ok {
		return BoundingBox{}, false
	}
	return box.Expand(pad), true
}
