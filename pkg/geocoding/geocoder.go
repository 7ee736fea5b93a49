package geocoding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

// Geocoder resolves the distinct station names of one scenario's table to
// coordinates. Places that fail on the primary service are retried once
// against the secondary; places that fail on both keep the (0,0) sentinel so
// that every requested name has an entry in the result.
type Geocoder struct {
	placeNames []string
	primary    Service
	secondary  Service
	timeout    time.Duration
}

func NewGeocoder(table *frame.Table, scenario string, primary Service, secondary Service, timeout time.Duration) *Geocoder {
	return &Geocoder{
		placeNames: table.UniqueStrings(fmt.Sprintf("%s_station_name", scenario)),
		primary:    primary,
		secondary:  secondary,
		timeout:    timeout,
	}
}

// PlaceNames returns the distinct names being geocoded, in order of first
// occurrence in the source table.
func (g *Geocoder) PlaceNames() []string {
	return g.placeNames
}

// Geocode runs the primary pass over every distinct place name, then the
// fallback pass over exactly the names the primary pass left at the
// sentinel. A failure of both services never fails the batch.
func (g *Geocoder) Geocode(ctx context.Context) map[string]Coordinate {
	placesAndPoints := g.trigger(ctx, g.primary, g.placeNames)

	var missedPlaces []string
	for _, place := range g.placeNames {
		if placesAndPoints[place].IsSentinel() {
			missedPlaces = append(missedPlaces, place)
		}
	}

	if len(missedPlaces) > 0 {
		log.Warn().
			Int("count", len(missedPlaces)).
			Str("service", g.secondary.Name()).
			Msg("Retrying unresolved places against the fallback geocoder")

		for place, coordinate := range g.trigger(ctx, g.secondary, missedPlaces) {
			placesAndPoints[place] = coordinate
		}
	}

	return placesAndPoints
}

// trigger geocodes each place sequentially, memoising so the same request is
// never made twice within a pass.
func (g *Geocoder) trigger(ctx context.Context, service Service, placeNames []string) map[string]Coordinate {
	placesAndPoints := map[string]Coordinate{}

	for _, place := range placeNames {
		if _, seen := placesAndPoints[place]; seen {
			continue
		}

		requestCtx, cancel := context.WithTimeout(ctx, g.timeout)
		coordinate, found, err := service.Geocode(requestCtx, place)
		cancel()

		if err != nil || !found {
			if err != nil {
				log.Error().Err(err).Str("place", place).Str("service", service.Name()).Msg("Failed to geocode")
			} else {
				log.Error().Str("place", place).Str("service", service.Name()).Msg("No geocoding result")
			}

			placesAndPoints[place] = Sentinel
			continue
		}

		placesAndPoints[place] = coordinate
	}

	return placesAndPoints
}
