// Package domain models the radar animation pipeline's core values:
// geographic bounding boxes, WMS time dimensions, frame requests and
// results, and run reports.
//
// # WMS Conventions
//
// Time dimension (from a GetCapabilities document, Dimension name="time"):
//
//	Range form:    "<start>/<end>/<period>"
//	               e.g. "2024-04-26T00:00:00Z/2024-04-26T03:00:00Z/PT10M"
//	               Period is a restricted ISO-8601 duration: only PT<n>S,
//	               PT<n>M, and PT<n>H are understood. Other duration forms
//	               (P1D, PT1H30M, ...) are treated as absent, which pushes
//	               the caller onto the synthesized fallback series.
//	Discrete form: a comma-separated list of explicit UTC instants.
//
// Instants are always formatted as ISO-8601 UTC with second precision
// ("2006-01-02T15:04:05Z"); upstream radar services reject sub-second or
// zoned TIME parameters.
//
// Bounding box axis order:
//
//	WMS 1.3.0 with CRS=EPSG:4326 mandates latitude-first axis order, so a
//	BBOX parameter reads "minLat,minLon,maxLat,maxLon". This is the single
//	most common source of blank radar tiles when it is gotten wrong.
//
// # Web-Mercator Approximation
//
// [CenterZoomBox] converts a center point, zoom level, and pixel canvas to
// a degree span using the spherical Web-Mercator relation
//
//	degreesPerPixel = 360 / (256 · 2^zoom)
//
// applied symmetrically in both axes. True Mercator vertical scale varies
// with latitude, so boxes computed this way are slightly too tall away
// from the equator. That matches the framing of the tile servers this
// pipeline overlays onto and is deliberately left uncorrected; correcting
// it would visibly shift the radar relative to the base map.
package domain
