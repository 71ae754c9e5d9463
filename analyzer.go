// Package submax validates sub-maximal fitness test recordings against the
// bike and run protocols and derives segment efficiency, drift and a
// compliance label. It performs no I/O: records arrive already decoded and the
// result is returned as a value.
package submax

import (
	"errors"
	"fmt"
)

// Analyze dispatches on in.Mode using the compiled-in protocol constants.
func Analyze(in Input) (*TestResult, error) {
	switch in.Mode {
	case ModeBike:
		return AnalyzeBike(in.Records, in.FileName, DefaultBikeProtocol(in.TargetHR))
	case ModeRun:
		return AnalyzeRun(in.Records, in.Laps, in.FileName, DefaultRunProtocol(in.TargetHR))
	default:
		return nil, protocolErr(in.Mode, ErrUnknownMode)
	}
}

// AnalyzeBike finds the steady-state window and splits it into segments.
func AnalyzeBike(records []Sample, fileName string, p BikeProtocol) (*TestResult, error) {
	if err := checkRecords(records); err != nil {
		return nil, protocolErr(ModeBike, err)
	}
	if p.TargetHR <= 0 || !isFinite(p.TargetHR) {
		return nil, protocolErr(ModeBike, ErrInvalidTargetHR)
	}

	w, err := FindWindow(records, p)
	if errors.Is(err, ErrNoValidWindow) {
		return nil, protocolErr(ModeBike, err)
	}
	if err != nil {
		return nil, err
	}

	window := records[w.Anchor:w.End]
	fileStart := records[0].Timestamp
	testStart := window[0].Timestamp
	testEnd := window[len(window)-1].Timestamp

	segments := buildSegments(records, w, p)
	label, reasons := classifyBike(window, w, p)

	hrAvg := mean(collect(window, heartRate))
	powerAvg := mean(collect(window, power))

	return &TestResult{
		TestType:        TestTypeBike,
		Sport:           ModeBike,
		FileName:        fileName,
		FileStartTS:     formatTS(fileStart),
		TestStartTS:     formatTS(testStart),
		TestEndTS:       formatTS(testEnd),
		ElapsedStartSec: elapsedSeconds(testStart, fileStart),
		ElapsedEndSec:   elapsedSeconds(testEnd, fileStart),
		Summary: Summary{
			Compliance:        label,
			ComplianceReasons: reasons,
			TargetHR:          floatPtr(p.TargetHR),
			HRAvg:             hrAvg,
			BikeSummary: &BikeSummary{
				PowerAvg:               powerAvg,
				CadAvg:                 mean(collect(window, cadence)),
				EffChangePctSeg3VsSeg1: effChange(segments),
				InBandPct:              floatPtr(w.InBandPct),
				LongestStopSec:         intPtr(w.LongestStop),
				WindowAttempts:         intPtr(w.Attempts),
			},
		},
		Segments: segments,
	}, nil
}

// AnalyzeRun takes the last TestLaps lap markers as the test miles.
func AnalyzeRun(records []Sample, laps []LapMarker, fileName string, p RunProtocol) (*TestResult, error) {
	if err := checkRecords(records); err != nil {
		return nil, protocolErr(ModeRun, err)
	}
	if p.TestLaps < 1 {
		return nil, fmt.Errorf("invalid run protocol: %d test laps", p.TestLaps)
	}

	selected, err := selectTestLaps(records, laps, p.TestLaps)
	if err != nil {
		return nil, protocolErr(ModeRun, err)
	}

	fileStart := records[0].Timestamp
	miles := buildMiles(selected, fileStart)
	first, last := miles[0], miles[len(miles)-1]
	splitRange, splitMean := splitStats(miles)
	label, reasons := classifyRun(selected, miles, p)

	var lapSamples []Sample
	for _, lap := range selected {
		lapSamples = append(lapSamples, lap.samples...)
	}

	var target *float64
	if p.TargetHR > 0 && isFinite(p.TargetHR) {
		target = floatPtr(p.TargetHR)
	}

	return &TestResult{
		TestType:        TestTypeRun,
		Sport:           ModeRun,
		FileName:        fileName,
		FileStartTS:     formatTS(fileStart),
		TestStartTS:     first.StartTS,
		TestEndTS:       last.EndTS,
		ElapsedStartSec: first.ElapsedStartSec,
		ElapsedEndSec:   last.ElapsedEndSec,
		Summary: Summary{
			Compliance:        label,
			ComplianceReasons: reasons,
			TargetHR:          target,
			HRAvg:             mean(collect(lapSamples, heartRate)),
			RunSummary: &RunSummary{
				SplitRangeSec:  floatPtr(splitRange),
				SplitRangeMMSS: formatMMSS(splitRange),
				SplitMeanSec:   floatPtr(splitMean),
				HRDriftM1ToM3:  diff(first.HRAvg, last.HRAvg),
			},
		},
		Miles: miles,
	}, nil
}

func checkRecords(records []Sample) error {
	if len(records) == 0 {
		return ErrEmptyRecordStream
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			return fmt.Errorf("%w: record %d precedes record %d", ErrRecordsOutOfOrder, i, i-1)
		}
	}
	return nil
}

// buildSegments cuts the accepted window into consecutive fixed blocks that
// together cover it exactly.
func buildSegments(records []Sample, w Window, p BikeProtocol) []Segment {
	fileStart := records[0].Timestamp
	segLen := p.segmentLen()
	count := p.segmentCount()
	segments := make([]Segment, 0, count)
	for j := 0; j < count; j++ {
		lo := w.Anchor + j*segLen
		hi := lo + segLen
		block := records[lo:hi]
		first, last := block[0].Timestamp, block[len(block)-1].Timestamp
		hrAvg := mean(collect(block, heartRate))
		powerAvg := mean(collect(block, power))
		segments = append(segments, Segment{
			SegmentIndex:     j + 1,
			Label:            fmt.Sprintf("min_%d_%d", j*p.SegmentMinutes, (j+1)*p.SegmentMinutes),
			StartTS:          formatTS(first),
			EndTS:            formatTS(last),
			ElapsedStartSec:  elapsedSeconds(first, fileStart),
			ElapsedEndSec:    elapsedSeconds(last, fileStart),
			ElapsedStartMMSS: formatMMSS(elapsedSeconds(first, fileStart)),
			ElapsedEndMMSS:   formatMMSS(elapsedSeconds(last, fileStart)),
			SampleCount:      len(block),
			HRAvg:            hrAvg,
			PowerAvg:         powerAvg,
			CadAvg:           mean(collect(block, cadence)),
			EffPowerPerHR:    ratio(powerAvg, hrAvg),
			StartIndex:       lo,
			EndIndex:         hi,
		})
	}
	return segments
}

// effChange compares the last segment's efficiency with the first.
func effChange(segments []Segment) *float64 {
	if len(segments) < 2 {
		return nil
	}
	return pctChange(segments[0].EffPowerPerHR, segments[len(segments)-1].EffPowerPerHR)
}
