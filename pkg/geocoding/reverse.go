package geocoding

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ReverseGeocoder names stations that arrived with coordinates but no name.
// Coordinates that defeat both services are dropped from the output rather
// than failing the batch.
type ReverseGeocoder struct {
	scenario    string
	coordinates []Coordinate
	primary     Service
	secondary   Service
	timeout     time.Duration
}

func NewReverseGeocoder(scenario string, coordinates []Coordinate, primary Service, secondary Service, timeout time.Duration) *ReverseGeocoder {
	return &ReverseGeocoder{
		scenario:    scenario,
		coordinates: coordinates,
		primary:     primary,
		secondary:   secondary,
		timeout:     timeout,
	}
}

// ReverseGeocode resolves each distinct coordinate to an address. Duplicate
// coordinates are resolved once, first occurrence wins, and output order
// follows input order minus the duplicates and the drops.
func (r *ReverseGeocoder) ReverseGeocode(ctx context.Context) []StationRecord {
	encountered := map[Coordinate]bool{}
	var newGeodata []StationRecord

	for _, coordinate := range r.coordinates {
		if encountered[coordinate] {
			continue
		}
		encountered[coordinate] = true

		address, resolved := r.resolve(ctx, coordinate)
		if !resolved {
			continue
		}

		newGeodata = append(newGeodata, StationRecord{
			StationName: address,
			Coordinate:  coordinate,
		})
	}

	return newGeodata
}

func (r *ReverseGeocoder) resolve(ctx context.Context, coordinate Coordinate) (string, bool) {
	primaryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	address, found, err := r.primary.Reverse(primaryCtx, coordinate)
	cancel()

	if err == nil && found {
		return address, true
	}

	if err != nil {
		log.Error().Err(err).Msg("Reverse geocoding failed")
	}
	log.Warn().
		Str("service", r.primary.Name()).
		Float64("latitude", coordinate.Latitude).
		Float64("longitude", coordinate.Longitude).
		Msgf("Reverse geocoding failed. Trying again with %s...", r.secondary.Name())

	secondaryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	address, found, err = r.secondary.Reverse(secondaryCtx, coordinate)
	cancel()

	if err == nil && found {
		return address, true
	}

	if err != nil {
		log.Error().Err(err).Msg("Reverse geocoding failed")
	}
	log.Warn().
		Str("service", r.secondary.Name()).
		Float64("latitude", coordinate.Latitude).
		Float64("longitude", coordinate.Longitude).
		Msg("Could not reverse geocode with the fallback either. This coordinate will be ignored")

	return "", false
}
