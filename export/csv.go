package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/lucasjlepore/submax"
)

// MarshalCSV renders the segments or miles of res as CSV. Missing values
// are empty cells.
func MarshalCSV(res *submax.TestResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	var rows [][]string
	if res.Sport == submax.ModeRun {
		rows = append(rows, []string{
			"mile_index", "lap_index", "start_ts", "end_ts", "elapsed_start_s", "elapsed_end_s",
			"split_time_s", "split_time_mmss", "sample_count", "hr_avg", "cad_avg",
		})
		for _, m := range res.Miles {
			rows = append(rows, []string{
				strconv.Itoa(m.MileIndex),
				strconv.Itoa(m.LapIndex),
				m.StartTS,
				m.EndTS,
				formatFloat(m.ElapsedStartSec),
				formatFloat(m.ElapsedEndSec),
				formatFloat(m.SplitTimeSec),
				m.SplitTimeMMSS,
				strconv.Itoa(m.SampleCount),
				formatFloatPtr(m.HRAvg),
				formatFloatPtr(m.CadAvg),
			})
		}
	} else {
		rows = append(rows, []string{
			"segment_index", "label", "start_ts", "end_ts", "elapsed_start_s", "elapsed_end_s",
			"sample_count", "hr_avg", "power_avg", "cad_avg", "eff_power_per_hr",
		})
		for _, s := range res.Segments {
			rows = append(rows, []string{
				strconv.Itoa(s.SegmentIndex),
				s.Label,
				s.StartTS,
				s.EndTS,
				formatFloat(s.ElapsedStartSec),
				formatFloat(s.ElapsedEndSec),
				strconv.Itoa(s.SampleCount),
				formatFloatPtr(s.HRAvg),
				formatFloatPtr(s.PowerAvg),
				formatFloatPtr(s.CadAvg),
				formatFloatPtr(s.EffPowerPerHR),
			})
		}
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
