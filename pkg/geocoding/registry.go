package geocoding

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyRegistry is returned when ID allocation has no existing IDs to
// allocate from. Callers must guarantee a seeded registry.
var ErrEmptyRegistry = errors.New("geo registry is empty")

// ErrMissingGeodata is returned when a scenario's geodata file does not
// exist yet. Callers are expected to regenerate it and retry once.
var ErrMissingGeodata = errors.New("geodata file is missing")

// StationRecord is one entry of the geo registry.
type StationRecord struct {
	StationID   int        `json:"station_id" bson:"station_id"`
	StationName string     `json:"station_name" bson:"station_name"`
	Coordinate  Coordinate `json:"coordinate" bson:"coordinate"`
}

// AssignIDs gives each new record a station ID, continuing from the highest
// ID already present in the registry. IDs are consecutive and follow the
// input order of the new records.
func AssignIDs(newRecords []StationRecord, registry []StationRecord) ([]StationRecord, error) {
	if len(registry) == 0 {
		return nil, ErrEmptyRegistry
	}

	maxID := registry[0].StationID
	for _, station := range registry {
		if station.StationID > maxID {
			maxID = station.StationID
		}
	}

	withIDs := make([]StationRecord, len(newRecords))
	for i, record := range newRecords {
		record.StationID = maxID + 1 + i
		withIDs[i] = record
	}

	return withIDs, nil
}

// MergeIntoRegistry assigns IDs to the new records and returns the merged
// registry. The input registry is left untouched.
func MergeIntoRegistry(registry []StationRecord, newRecords []StationRecord) ([]StationRecord, error) {
	withIDs, err := AssignIDs(newRecords, registry)
	if err != nil {
		return nil, err
	}

	merged := make([]StationRecord, 0, len(registry)+len(withIDs))
	merged = append(merged, registry...)
	merged = append(merged, withIDs...)

	return merged, nil
}

func geodataPath(directory string, scenario string) string {
	return filepath.Join(directory, fmt.Sprintf("%s_geodata.json", scenario))
}

// LoadRegistry reads a scenario's geodata file whole into memory.
func LoadRegistry(directory string, scenario string) ([]StationRecord, error) {
	contents, err := os.ReadFile(geodataPath(directory, scenario))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s geodata in %s", ErrMissingGeodata, scenario, directory)
		}
		return nil, fmt.Errorf("read geodata: %w", err)
	}

	var registry []StationRecord
	if err := json.Unmarshal(contents, &registry); err != nil {
		return nil, fmt.Errorf("parse geodata: %w", err)
	}

	return registry, nil
}

// SaveRegistry rewrites a scenario's geodata file wholesale.
func SaveRegistry(directory string, scenario string, registry []StationRecord) error {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return err
	}

	contents, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(geodataPath(directory, scenario), contents, 0644)
}
