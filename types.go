package submax

import (
	"encoding/json"
	"time"
)

// Mode selects the test protocol.
type Mode string

const (
	ModeBike Mode = "bike"
	ModeRun  Mode = "run"
)

const (
	TestTypeBike = "bike_hr_submax_30min_3x10"
	TestTypeRun  = "treadmill_run_3mi_lap"
)

// Compliance is the trust label attached to every result.
type Compliance string

const (
	Compliant    Compliance = "COMPLIANT"
	Warning      Compliance = "WARNING"
	NonCompliant Compliance = "NON_COMPLIANT"
)

// Sample is one decoded reading. Nil fields are sensor dropouts.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	HeartRate *float64  `json:"heart_rate,omitempty"`
	Power     *float64  `json:"power,omitempty"`
	Cadence   *float64  `json:"cadence,omitempty"`
	Distance  *float64  `json:"distance,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
}

// LapMarker is a lap boundary recorded by the device.
type LapMarker struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalTimerTime float64   `json:"total_timer_time"`
}

// Input is everything one analysis call consumes.
type Input struct {
	Records  []Sample
	Laps     []LapMarker
	Mode     Mode
	TargetHR float64
	FileName string
}

// Segment is one fixed block of the accepted bike window.
type Segment struct {
	SegmentIndex     int      `json:"segment_index"`
	Label            string   `json:"label"`
	StartTS          string   `json:"start_ts"`
	EndTS            string   `json:"end_ts"`
	ElapsedStartSec  float64  `json:"elapsed_start_sec"`
	ElapsedEndSec    float64  `json:"elapsed_end_sec"`
	ElapsedStartMMSS string   `json:"elapsed_start_mmss"`
	ElapsedEndMMSS   string   `json:"elapsed_end_mmss"`
	SampleCount      int      `json:"sample_count"`
	HRAvg            *float64 `json:"hr_avg"`
	PowerAvg         *float64 `json:"power_avg"`
	CadAvg           *float64 `json:"cad_avg"`
	EffPowerPerHR    *float64 `json:"eff_power_per_hr"`

	// Sample range inside the recording, end exclusive.
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// Mile is one test lap of the run protocol.
type Mile struct {
	MileIndex        int      `json:"mile_index"`
	LapIndex         int      `json:"lap_index"`
	StartTS          string   `json:"start_ts"`
	EndTS            string   `json:"end_ts"`
	ElapsedStartSec  float64  `json:"elapsed_start_sec"`
	ElapsedEndSec    float64  `json:"elapsed_end_sec"`
	ElapsedStartMMSS string   `json:"elapsed_start_mmss"`
	ElapsedEndMMSS   string   `json:"elapsed_end_mmss"`
	SplitTimeSec     float64  `json:"split_time_sec"`
	SplitTimeMMSS    string   `json:"split_time_mmss"`
	SampleCount      int      `json:"sample_count"`
	HRAvg            *float64 `json:"hr_avg"`
	CadAvg           *float64 `json:"cad_avg"`
}

// Summary holds the test-level figures. Exactly one of BikeSummary or
// RunSummary is set; its fields are flattened into the summary object.
type Summary struct {
	Compliance        Compliance `json:"compliance"`
	ComplianceReasons []string   `json:"compliance_reasons,omitempty"`
	TargetHR          *float64   `json:"target_hr"`
	HRAvg             *float64   `json:"hr_avg"`

	*BikeSummary
	*RunSummary
}

// BikeSummary holds the steady-window figures of a bike test.
type BikeSummary struct {
	PowerAvg               *float64 `json:"power_avg"`
	CadAvg                 *float64 `json:"cad_avg"`
	EffChangePctSeg3VsSeg1 *float64 `json:"eff_change_pct_seg3_vs_seg1"`
	InBandPct              *float64 `json:"in_band_pct"`
	LongestStopSec         *int     `json:"longest_stop_sec"`
	WindowAttempts         *int     `json:"window_attempts"`
}

// RunSummary holds the pacing and drift figures of a run test.
type RunSummary struct {
	SplitRangeSec  *float64 `json:"split_range_sec"`
	SplitRangeMMSS string   `json:"split_range_mmss"`
	SplitMeanSec   *float64 `json:"split_mean_sec"`
	HRDriftM1ToM3  *float64 `json:"hr_drift_m1_to_m3"`
}

// TestResult is the assembled analysis output. Exactly one of Segments or
// Miles is populated; both serialize under "data".
type TestResult struct {
	TestType        string    `json:"test_type"`
	Sport           Mode      `json:"sport"`
	FileName        string    `json:"file_name"`
	FileStartTS     string    `json:"file_start_ts"`
	TestStartTS     string    `json:"test_start_ts"`
	TestEndTS       string    `json:"test_end_ts"`
	ElapsedStartSec float64   `json:"elapsed_start_sec"`
	ElapsedEndSec   float64   `json:"elapsed_end_sec"`
	Summary         Summary   `json:"summary"`
	Segments        []Segment `json:"-"`
	Miles           []Mile    `json:"-"`
}

// MarshalJSON emits segments or miles under the shared "data" key.
func (r TestResult) MarshalJSON() ([]byte, error) {
	type plain TestResult
	var data any = r.Segments
	if r.Sport == ModeRun {
		data = r.Miles
	}
	return json.Marshal(struct {
		plain
		Data any `json:"data"`
	}{plain: plain(r), Data: data})
}

// UnmarshalJSON restores "data" into Segments or Miles based on sport.
func (r *TestResult) UnmarshalJSON(b []byte) error {
	type plain TestResult
	var aux struct {
		plain
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = TestResult(aux.plain)
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		return nil
	}
	if r.Sport == ModeRun {
		return json.Unmarshal(aux.Data, &r.Miles)
	}
	return json.Unmarshal(aux.Data, &r.Segments)
}
