package submax

import (
	"sort"
	"time"
)

// testLap is one selected lap with the samples that fall inside it.
type testLap struct {
	lapIndex int
	marker   LapMarker
	samples  []Sample
}

// selectTestLaps takes the last count markers and slices the samples whose
// timestamps fall inside each inclusive lap bound.
func selectTestLaps(records []Sample, laps []LapMarker, count int) ([]testLap, error) {
	if len(laps) < count {
		return nil, ErrInsufficientLapMarkers
	}
	first := len(laps) - count
	out := make([]testLap, 0, count)
	for i := first; i < len(laps); i++ {
		lap := laps[i]
		if lap.EndTime.Before(lap.StartTime) {
			return nil, ErrInvalidLapMarker
		}
		lo := indexAtOrAfter(records, lap.StartTime)
		hi := indexAfter(records, lap.EndTime)
		out = append(out, testLap{
			lapIndex: i + 1,
			marker:   lap,
			samples:  records[lo:hi],
		})
	}
	return out, nil
}

// buildMiles derives per-lap timing and physiological aggregates.
func buildMiles(laps []testLap, fileStart time.Time) []Mile {
	miles := make([]Mile, 0, len(laps))
	for i, lap := range laps {
		start, end := lap.marker.StartTime, lap.marker.EndTime
		split := end.Sub(start).Seconds()
		elapsedStart := elapsedSeconds(start, fileStart)
		elapsedEnd := elapsedSeconds(end, fileStart)
		miles = append(miles, Mile{
			MileIndex:        i + 1,
			LapIndex:         lap.lapIndex,
			StartTS:          formatTS(start),
			EndTS:            formatTS(end),
			ElapsedStartSec:  elapsedStart,
			ElapsedEndSec:    elapsedEnd,
			ElapsedStartMMSS: formatMMSS(elapsedStart),
			ElapsedEndMMSS:   formatMMSS(elapsedEnd),
			SplitTimeSec:     split,
			SplitTimeMMSS:    formatMMSS(split),
			SampleCount:      len(lap.samples),
			HRAvg:            mean(collect(lap.samples, heartRate)),
			CadAvg:           mean(collect(lap.samples, cadence)),
		})
	}
	return miles
}

func indexAtOrAfter(records []Sample, ts time.Time) int {
	return sort.Search(len(records), func(i int) bool {
		return !records[i].Timestamp.Before(ts)
	})
}

func indexAfter(records []Sample, ts time.Time) int {
	return sort.Search(len(records), func(i int) bool {
		return records[i].Timestamp.After(ts)
	})
}
