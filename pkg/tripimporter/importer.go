package tripimporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/config"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/features"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/featurestore"
	"github.com/maadabrandon/divvy-trip-predictor/pkg/geocoding"
)

type Importer struct {
	scenario string
	cfg      *config.Config

	primary   geocoding.Service
	secondary geocoding.Service
}

func NewImporter(scenario string, cfg *config.Config) *Importer {
	return &Importer{
		scenario:  scenario,
		cfg:       cfg,
		primary:   geocoding.NewNominatim(cfg.Geocoding.NominatimURL, cfg.Email),
		secondary: geocoding.NewPhoton(cfg.Geocoding.PhotonURL),
	}
}

// Import parses a raw trip export, refreshes the geo registry, and pushes
// the hourly series to the scenario's feature group.
func (i *Importer) Import(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	events, err := parseTrips(file, i.scenario)
	if err != nil {
		return err
	}

	log.Info().Int("trips", len(events)).Str("file", path).Msg("Parsed raw trips")

	registry, err := i.refreshRegistry(ctx, events)
	if err != nil {
		return err
	}

	series := makeSeries(events, registry)

	group := featurestore.SetupFeatureGroup(
		featurestore.SeriesGroupName(i.scenario),
		fmt.Sprintf("Hourly time series data showing when trips %s", i.scenario),
		i.cfg.Features.FeatureGroupVersion,
	)

	return group.PushSeries(ctx, series)
}

// refreshRegistry folds this export's stations into the geo registry. Named
// stations carrying coordinates are appended directly; unnamed coordinates
// are reverse geocoded first. The registry file is rewritten wholesale.
func (i *Importer) refreshRegistry(ctx context.Context, events []tripEvent) ([]geocoding.StationRecord, error) {
	registry, err := geocoding.LoadRegistry(i.cfg.Paths.Geodata, i.scenario)
	if err != nil {
		// a missing file just means this is the first import
		if !errors.Is(err, geocoding.ErrMissingGeodata) {
			return nil, err
		}
		registry = nil
	}

	knownNames := map[string]bool{}
	knownCoordinates := map[geocoding.Coordinate]bool{}
	for _, station := range registry {
		knownNames[station.StationName] = true
		knownCoordinates[station.Coordinate] = true
	}

	var named []geocoding.StationRecord
	var unnamed []geocoding.Coordinate

	for _, event := range events {
		if !event.HasCoordinate || knownCoordinates[event.Coordinate] {
			continue
		}

		if event.StationName == "" {
			unnamed = append(unnamed, event.Coordinate)
			knownCoordinates[event.Coordinate] = true
			continue
		}

		if knownNames[event.StationName] {
			continue
		}

		named = append(named, geocoding.StationRecord{
			StationName: event.StationName,
			Coordinate:  event.Coordinate,
		})
		knownNames[event.StationName] = true
		knownCoordinates[event.Coordinate] = true
	}

	if len(unnamed) > 0 {
		reverseGeocoder := geocoding.NewReverseGeocoder(
			i.scenario, unnamed, i.primary, i.secondary, i.cfg.Geocoding.Timeout,
		)
		named = append(named, reverseGeocoder.ReverseGeocode(ctx)...)
	}

	if len(named) == 0 {
		return registry, nil
	}

	if len(registry) == 0 {
		// first ever import seeds the registry from 1
		for index := range named {
			named[index].StationID = index + 1
		}
		registry = named
	} else {
		registry, err = geocoding.MergeIntoRegistry(registry, named)
		if err != nil {
			return nil, err
		}
	}

	log.Info().Int("stations", len(named)).Msg("Added newly discovered stations to the geo registry")

	if err := geocoding.SaveRegistry(i.cfg.Paths.Geodata, i.scenario, registry); err != nil {
		return nil, err
	}

	return registry, nil
}

// makeSeries buckets trips per station per hour, filling the hours a station
// saw no trips with zero counts so the lag features stay contiguous.
func makeSeries(events []tripEvent, registry []geocoding.StationRecord) []features.SeriesPoint {
	idsByName := map[string]int{}
	idsByCoordinate := map[geocoding.Coordinate]int{}
	for _, station := range registry {
		idsByName[station.StationName] = station.StationID
		idsByCoordinate[station.Coordinate] = station.StationID
	}

	type bucket struct {
		stationID int
		hour      time.Time
	}

	counts := map[bucket]float64{}
	firstHour := map[int]time.Time{}
	lastHour := map[int]time.Time{}

	for _, event := range events {
		stationID, known := idsByName[event.StationName]
		if !known && event.HasCoordinate {
			stationID, known = idsByCoordinate[event.Coordinate]
		}
		if !known {
			continue
		}

		counts[bucket{stationID, event.At}]++

		if first, seen := firstHour[stationID]; !seen || event.At.Before(first) {
			firstHour[stationID] = event.At
		}
		if last, seen := lastHour[stationID]; !seen || event.At.After(last) {
			lastHour[stationID] = event.At
		}
	}

	var series []features.SeriesPoint
	for stationID, first := range firstHour {
		for hour := first; !hour.After(lastHour[stationID]); hour = hour.Add(time.Hour) {
			series = append(series, features.SeriesPoint{
				StationID: stationID,
				Hour:      hour,
				Trips:     counts[bucket{stationID, hour}],
			})
		}
	}

	sort.Slice(series, func(a, b int) bool {
		if series[a].StationID != series[b].StationID {
			return series[a].StationID < series[b].StationID
		}
		return series[a].Hour.Before(series[b].Hour)
	})

	return series
}
