package features

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/maadabrandon/divvy-trip-predictor/pkg/frame"
)

// SeriesPoint is one station's trip count for one hour bucket.
type SeriesPoint struct {
	StationID int       `bson:"station_id"`
	Hour      time.Time `bson:"timestamp"`
	Trips     float64   `bson:"trips"`
}

// MakeInferenceTable builds one lagged row per station from the most recent
// inputSeqLen points of its series, stamped with the target hour the model
// is asked to predict. Stations with too short a history are skipped.
func MakeInferenceTable(series []SeriesPoint, scenario string, inputSeqLen int, targetHour time.Time) (*frame.Table, error) {
	if inputSeqLen <= 0 {
		return nil, fmt.Errorf("input sequence length must be positive, got %d", inputSeqLen)
	}

	perStation := map[int][]SeriesPoint{}
	for _, point := range series {
		perStation[point.StationID] = append(perStation[point.StationID], point)
	}

	stationIDs := maps.Keys(perStation)
	slices.Sort(stationIDs)

	var stationColumn []any
	var hourColumn []any
	lagColumns := make([][]any, inputSeqLen)

	for _, stationID := range stationIDs {
		points := perStation[stationID]
		if len(points) < inputSeqLen {
			continue
		}

		sort.Slice(points, func(i, j int) bool {
			return points[i].Hour.Before(points[j].Hour)
		})

		window := points[len(points)-inputSeqLen:]

		stationColumn = append(stationColumn, float64(stationID))
		hourColumn = append(hourColumn, targetHour)
		for i := 0; i < inputSeqLen; i++ {
			lagColumns[i] = append(lagColumns[i], window[i].Trips)
		}
	}

	table := frame.New()
	if err := table.AddColumn(StationIDColumn(scenario), stationColumn); err != nil {
		return nil, err
	}
	if err := table.AddColumn(HourColumn(scenario), hourColumn); err != nil {
		return nil, err
	}
	for i := 0; i < inputSeqLen; i++ {
		if err := table.AddColumn(LagColumn(inputSeqLen-i), lagColumns[i]); err != nil {
			return nil, err
		}
	}

	return table, nil
}

// MakeTrainingTable reshapes per-station hourly series into lagged rows. Each
// row holds inputSeqLen consecutive hourly counts as trips_previous_{k}_hour
// columns (k counted back from the target hour), the hour following the
// window as the scenario's hour column, and that hour's count as the
// trips_next_hour target. The window advances stepSize hours between rows.
func MakeTrainingTable(series []SeriesPoint, scenario string, inputSeqLen int, stepSize int) (*frame.Table, error) {
	if inputSeqLen <= 0 || stepSize <= 0 {
		return nil, fmt.Errorf("input sequence length and step size must be positive, got %d and %d", inputSeqLen, stepSize)
	}

	perStation := map[int][]SeriesPoint{}
	for _, point := range series {
		perStation[point.StationID] = append(perStation[point.StationID], point)
	}

	stationIDs := maps.Keys(perStation)
	slices.Sort(stationIDs)

	var stationColumn []any
	var hourColumn []any
	lagColumns := make([][]any, inputSeqLen)
	var targetColumn []any

	for _, stationID := range stationIDs {
		points := perStation[stationID]
		sort.Slice(points, func(i, j int) bool {
			return points[i].Hour.Before(points[j].Hour)
		})

		for offset := 0; offset+inputSeqLen < len(points); offset += stepSize {
			target := points[offset+inputSeqLen]

			stationColumn = append(stationColumn, float64(stationID))
			hourColumn = append(hourColumn, target.Hour)
			for i := 0; i < inputSeqLen; i++ {
				lagColumns[i] = append(lagColumns[i], points[offset+i].Trips)
			}
			targetColumn = append(targetColumn, target.Trips)
		}
	}

	table := frame.New()
	if err := table.AddColumn(StationIDColumn(scenario), stationColumn); err != nil {
		return nil, err
	}
	if err := table.AddColumn(HourColumn(scenario), hourColumn); err != nil {
		return nil, err
	}
	for i := 0; i < inputSeqLen; i++ {
		if err := table.AddColumn(LagColumn(inputSeqLen-i), lagColumns[i]); err != nil {
			return nil, err
		}
	}
	if err := table.AddColumn("trips_next_hour", targetColumn); err != nil {
		return nil, err
	}

	return table, nil
}
