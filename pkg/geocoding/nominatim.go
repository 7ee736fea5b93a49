package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Nominatim is the primary geocoding service. It requires a contact email in
// the user agent and gets upset when one is missing.
type Nominatim struct {
	BaseURL   string
	UserAgent string

	httpClient *http.Client
}

func NewNominatim(baseURL string, email string) *Nominatim {
	return &Nominatim{
		BaseURL:    baseURL,
		UserAgent:  fmt.Sprintf("divvy-trip-predictor (%s)", email),
		httpClient: &http.Client{},
	}
}

func (n *Nominatim) Name() string {
	return "nominatim"
}

type nominatimSearchResult struct {
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Geocode(ctx context.Context, place string) (Coordinate, bool, error) {
	query := url.Values{
		"q":      {place},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}
	requestURL := fmt.Sprintf("%s/search?%s", n.BaseURL, query.Encode())

	var results []nominatimSearchResult
	if err := n.get(ctx, requestURL, &results); err != nil {
		return Coordinate{}, false, err
	}

	if len(results) == 0 {
		return Coordinate{}, false, nil
	}

	latitude, err := strconv.ParseFloat(results[0].Latitude, 64)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("parse latitude %q: %w", results[0].Latitude, err)
	}
	longitude, err := strconv.ParseFloat(results[0].Longitude, 64)
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("parse longitude %q: %w", results[0].Longitude, err)
	}

	return Coordinate{Latitude: latitude, Longitude: longitude}, true, nil
}

type nominatimReverseResult struct {
	DisplayName string `json:"display_name"`
}

func (n *Nominatim) Reverse(ctx context.Context, coordinate Coordinate) (string, bool, error) {
	query := url.Values{
		"lat":    {strconv.FormatFloat(coordinate.Latitude, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(coordinate.Longitude, 'f', -1, 64)},
		"format": {"jsonv2"},
	}
	requestURL := fmt.Sprintf("%s/reverse?%s", n.BaseURL, query.Encode())

	var result nominatimReverseResult
	if err := n.get(ctx, requestURL, &result); err != nil {
		return "", false, err
	}

	if result.DisplayName == "" {
		return "", false, nil
	}

	return result.DisplayName, true, nil
}

func (n *Nominatim) get(ctx context.Context, requestURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonBytes, target)
}
