// Package geocoding resolves station names to coordinates and coordinates to
// addresses using Nominatim, falling back to Photon when Nominatim fails. It
// also maintains the geo registry of known stations.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
)

// Coordinate is a latitude/longitude pair. It serialises as a two element
// JSON array to match the geodata files.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Sentinel marks a place that could not be geocoded by either service.
var Sentinel = Coordinate{}

func (c Coordinate) IsSentinel() bool {
	return c == Sentinel
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Latitude, c.Longitude})
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coordinate must be a [latitude, longitude] pair: %w", err)
	}

	c.Latitude = pair[0]
	c.Longitude = pair[1]

	return nil
}

// Service is a single external geocoding provider. The bool reports whether
// the provider knew the place at all; an error means the request itself
// failed. "No result" is an ordinary value here, never an error.
type Service interface {
	Name() string
	Geocode(ctx context.Context, place string) (Coordinate, bool, error)
	Reverse(ctx context.Context, coordinate Coordinate) (string, bool, error)
}
