package domain

import (
	"context"
	"log/slog"
)

// ResolveLocations fills in coordinates for locations that lack them, using
// the given geocoder. A nil geocoder, a lookup failure, or an unknown name
// drops that location with a warning; the rest are returned.
func ResolveLocations(ctx context.Context, locs []Location, geocoder Geocoder, logger *slog.Logger) []Location {
	resolved := make([]Location, 0, len(locs))
	for _, loc := range locs {
		if loc.HasCoords() {
			resolved = append(resolved, loc)
			continue
		}
		if geocoder == nil {
			logger.Warn("location has no coordinates and geocoding is disabled, skipping",
				"location", loc.Name)
			continue
		}
		result, err := geocoder.ForwardGeocode(ctx, loc.Name)
		if err != nil {
			logger.Warn("geocoding failed, skipping location",
				"location", loc.Name,
				"error", err,
			)
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			logger.Warn("unknown location name, skipping", "location", loc.Name)
			continue
		}
		loc.Lat = result.Lat
		loc.Lon = result.Lon
		resolved = append(resolved, loc)
	}
	return resolved
}
