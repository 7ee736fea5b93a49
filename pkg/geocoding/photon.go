package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Photon is the secondary geocoding service, only consulted for places and
// coordinates Nominatim could not resolve.
type Photon struct {
	BaseURL string

	httpClient *http.Client
}

func NewPhoton(baseURL string) *Photon {
	return &Photon{
		BaseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

func (p *Photon) Name() string {
	return "photon"
}

type photonFeatureCollection struct {
	Features []photonFeature `json:"features"`
}

type photonFeature struct {
	Geometry struct {
		// GeoJSON order, longitude first
		Coordinates [2]float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name    string `json:"name"`
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"properties"`
}

func (p *Photon) Geocode(ctx context.Context, place string) (Coordinate, bool, error) {
	query := url.Values{
		"q":     {place},
		"limit": {"1"},
	}
	requestURL := fmt.Sprintf("%s/api?%s", p.BaseURL, query.Encode())

	collection, err := p.get(ctx, requestURL)
	if err != nil {
		return Coordinate{}, false, err
	}

	if len(collection.Features) == 0 {
		return Coordinate{}, false, nil
	}

	coordinates := collection.Features[0].Geometry.Coordinates
	return Coordinate{Latitude: coordinates[1], Longitude: coordinates[0]}, true, nil
}

func (p *Photon) Reverse(ctx context.Context, coordinate Coordinate) (string, bool, error) {
	query := url.Values{
		"lat":   {strconv.FormatFloat(coordinate.Latitude, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(coordinate.Longitude, 'f', -1, 64)},
		"limit": {"1"},
	}
	requestURL := fmt.Sprintf("%s/reverse?%s", p.BaseURL, query.Encode())

	collection, err := p.get(ctx, requestURL)
	if err != nil {
		return "", false, err
	}

	if len(collection.Features) == 0 {
		return "", false, nil
	}

	address := collection.Features[0].address()
	if address == "" {
		return "", false, nil
	}

	return address, true, nil
}

func (f photonFeature) address() string {
	var parts []string
	for _, part := range []string{
		f.Properties.Name,
		f.Properties.Street,
		f.Properties.City,
		f.Properties.State,
		f.Properties.Country,
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ", ")
}

func (p *Photon) get(ctx context.Context, requestURL string) (*photonFeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photon returned status %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var collection photonFeatureCollection
	if err := json.Unmarshal(jsonBytes, &collection); err != nil {
		return nil, err
	}

	return &collection, nil
}
