package geocoding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

type fakeService struct {
	name string

	coordinates map[string]Coordinate
	addresses   map[Coordinate]string

	geocodeCalls []string
	reverseCalls []Coordinate
}

func (f *fakeService) Name() string {
	return f.name
}

func (f *fakeService) Geocode(ctx context.Context, place string) (Coordinate, bool, error) {
	f.geocodeCalls = append(f.geocodeCalls, place)

	coordinate, known := f.coordinates[place]
	if !known {
		return Coordinate{}, false, nil
	}

	return coordinate, true, nil
}

func (f *fakeService) Reverse(ctx context.Context, coordinate Coordinate) (string, bool, error) {
	f.reverseCalls = append(f.reverseCalls, coordinate)

	address, known := f.addresses[coordinate]
	if !known {
		return "", false, errors.New("service unavailable")
	}

	return address, true, nil
}

func tableWithStations(t *testing.T, scenario string, names []string) *frame.Table {
	t.Helper()

	values := make([]any, len(names))
	for i, name := range names {
		values[i] = name
	}

	table := frame.New()
	require.NoError(t, table.AddColumn(scenario+"_station_name", values))

	return table
}

func TestGeocoder(t *testing.T) {
	millennium := Coordinate{Latitude: 41.884, Longitude: -87.625}
	navyPier := Coordinate{Latitude: 41.891, Longitude: -87.607}

	t.Run("Duplicate names are only requested once", func(t *testing.T) {
		primary := &fakeService{
			name:        "primary",
			coordinates: map[string]Coordinate{"Millennium Park": millennium},
		}
		secondary := &fakeService{name: "secondary"}

		table := tableWithStations(t, "start", []string{
			"Millennium Park", "Millennium Park", "Millennium Park",
		})

		geocoder := NewGeocoder(table, "start", primary, secondary, time.Second)
		results := geocoder.Geocode(context.Background())

		assert.Equal(t, []string{"Millennium Park"}, primary.geocodeCalls)
		assert.Empty(t, secondary.geocodeCalls)
		assert.Equal(t, millennium, results["Millennium Park"])
	})

	t.Run("Primary results survive the fallback pass", func(t *testing.T) {
		primary := &fakeService{
			name:        "primary",
			coordinates: map[string]Coordinate{"Millennium Park": millennium},
		}
		secondary := &fakeService{
			name:        "secondary",
			coordinates: map[string]Coordinate{"Millennium Park": navyPier, "Navy Pier": navyPier},
		}

		table := tableWithStations(t, "start", []string{"Millennium Park", "Navy Pier"})

		geocoder := NewGeocoder(table, "start", primary, secondary, time.Second)
		results := geocoder.Geocode(context.Background())

		// Only the miss goes to the fallback, and the primary hit is kept.
		assert.Equal(t, []string{"Navy Pier"}, secondary.geocodeCalls)
		assert.Equal(t, millennium, results["Millennium Park"])
		assert.Equal(t, navyPier, results["Navy Pier"])
	})

	t.Run("Both services failing leaves the sentinel", func(t *testing.T) {
		primary := &fakeService{name: "primary"}
		secondary := &fakeService{name: "secondary"}

		table := tableWithStations(t, "end", []string{"Nowhere In Particular"})

		geocoder := NewGeocoder(table, "end", primary, secondary, time.Second)
		results := geocoder.Geocode(context.Background())

		coordinate, present := results["Nowhere In Particular"]
		require.True(t, present, "failed places must still have an entry")
		assert.True(t, coordinate.IsSentinel())
	})

	t.Run("Place names come from the scenario's column", func(t *testing.T) {
		table := tableWithStations(t, "end", []string{"Navy Pier", "Millennium Park", "Navy Pier"})

		geocoder := NewGeocoder(table, "end", &fakeService{}, &fakeService{}, time.Second)

		assert.Equal(t, []string{"Navy Pier", "Millennium Park"}, geocoder.PlaceNames())
	})
}
