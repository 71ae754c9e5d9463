package submax

import "time"

// BikeProtocol controls the 30-minute steady-heart-rate bike test.
// Counts expressed in seconds assume 1 Hz recording: one sample per second.
type BikeProtocol struct {
	TargetHR       float64
	BandBPM        float64
	StableSeconds  int
	TestMinutes    int
	SegmentMinutes int
	MinPowerW      float64
	StopPowerW     float64
	StopGraceS     int
	MinInBandPct   float64

	// Stricter pair used only to downgrade a valid window to WARNING.
	WarnInBandPct float64
	WarnStopS     int

	MinCoveragePct  float64
	WarnCoveragePct float64
}

// RunProtocol controls the 3-mile lap-split treadmill test.
type RunProtocol struct {
	TargetHR          float64
	TestLaps          int
	WarnSplitRangePct float64
	MaxSplitRangePct  float64
	MinCoveragePct    float64
	WarnCoveragePct   float64
}

// DefaultBikeProtocol returns the compiled-in bike constants for targetHR.
func DefaultBikeProtocol(targetHR float64) BikeProtocol {
	return BikeProtocol{
		TargetHR:        targetHR,
		BandBPM:         4.0,
		StableSeconds:   60,
		TestMinutes:     30,
		SegmentMinutes:  10,
		MinPowerW:       30.0,
		StopPowerW:      20.0,
		StopGraceS:      25,
		MinInBandPct:    90.0,
		WarnInBandPct:   95.0,
		WarnStopS:       15,
		MinCoveragePct:  50.0,
		WarnCoveragePct: 90.0,
	}
}

// DefaultRunProtocol returns the compiled-in run constants.
func DefaultRunProtocol(targetHR float64) RunProtocol {
	return RunProtocol{
		TargetHR:          targetHR,
		TestLaps:          3,
		WarnSplitRangePct: 5.0,
		MaxSplitRangePct:  15.0,
		MinCoveragePct:    50.0,
		WarnCoveragePct:   90.0,
	}
}

func (p BikeProtocol) windowLen() int  { return p.TestMinutes * 60 }
func (p BikeProtocol) segmentLen() int { return p.SegmentMinutes * 60 }

func (p BikeProtocol) segmentCount() int {
	if p.SegmentMinutes <= 0 {
		return 0
	}
	return p.TestMinutes / p.SegmentMinutes
}

// inBand reports whether hr lies in the inclusive target band. A missing
// reading is never in band.
func (p BikeProtocol) inBand(hr *float64) bool {
	if hr == nil || !isFinite(*hr) {
		return false
	}
	return *hr >= p.TargetHR-p.BandBPM && *hr <= p.TargetHR+p.BandBPM
}

func (p BikeProtocol) pedaling(power *float64) bool {
	return power != nil && isFinite(*power) && *power >= p.MinPowerW
}

// stopped treats a missing power reading as no output.
func (p BikeProtocol) stopped(power *float64) bool {
	if power == nil || !isFinite(*power) {
		return true
	}
	return *power < p.StopPowerW
}

// TargetHRForAge applies the protocol rule of thumb: 170 - age on the bike,
// 180 - age on the run.
func TargetHRForAge(mode Mode, age int) float64 {
	if mode == ModeRun {
		return float64(180 - age)
	}
	return float64(170 - age)
}

// AgeAt returns the whole years between birth and on.
func AgeAt(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}
