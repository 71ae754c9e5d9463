// Package export writes analysis results to disk or memory as JSON plus a
// tabular file of the segments or miles.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/submax"
)

const resultFileName = "result.json"

// Write stores res under opts.OutDir as result.json and
// segments.<format> or miles.<format>.
func Write(res *submax.TestResult, opts Options) (*Result, error) {
	if res == nil {
		return nil, errors.New("result is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	resultPath := filepath.Join(opts.OutDir, resultFileName)
	if err := writeJSON(resultPath, res); err != nil {
		return nil, fmt.Errorf("write %s: %w", resultFileName, err)
	}

	name := RowsFileName(res, format)
	rowsPath := filepath.Join(opts.OutDir, name)
	switch format {
	case "csv":
		data, err := MarshalCSV(res)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(rowsPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	case "parquet":
		if err := writeParquet(rowsPath, res); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	return &Result{
		OutputDir:  opts.OutDir,
		ResultPath: resultPath,
		RowsPath:   rowsPath,
		RowCount:   rowCount(res),
	}, nil
}

// Artifacts renders the same files as Write into memory, keyed by file name.
func Artifacts(res *submax.TestResult, format string) (map[string][]byte, error) {
	if res == nil {
		return nil, errors.New("result is required")
	}
	format, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("encode %s: %w", resultFileName, err)
	}

	var rows []byte
	switch format {
	case "csv":
		rows, err = MarshalCSV(res)
	case "parquet":
		rows, err = MarshalParquet(res)
	}
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}

	return map[string][]byte{
		resultFileName:            buf.Bytes(),
		RowsFileName(res, format): rows,
	}, nil
}

// RowsFileName is segments.<format> for bike results and miles.<format> for
// run results.
func RowsFileName(res *submax.TestResult, format string) string {
	if res.Sport == submax.ModeRun {
		return "miles." + format
	}
	return "segments." + format
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func rowCount(res *submax.TestResult) int {
	if res.Sport == submax.ModeRun {
		return len(res.Miles)
	}
	return len(res.Segments)
}

func segmentRows(segments []submax.Segment) []segmentRow {
	rows := make([]segmentRow, 0, len(segments))
	for _, s := range segments {
		rows = append(rows, segmentRow{
			SegmentIndex:  int32(s.SegmentIndex),
			Label:         s.Label,
			StartTS:       s.StartTS,
			EndTS:         s.EndTS,
			ElapsedStartS: s.ElapsedStartSec,
			ElapsedEndS:   s.ElapsedEndSec,
			SampleCount:   int64(s.SampleCount),
			HRAvg:         valueOrNaN(s.HRAvg),
			PowerAvg:      valueOrNaN(s.PowerAvg),
			CadAvg:        valueOrNaN(s.CadAvg),
			EffPowerPerHR: valueOrNaN(s.EffPowerPerHR),
		})
	}
	return rows
}

func mileRows(miles []submax.Mile) []mileRow {
	rows := make([]mileRow, 0, len(miles))
	for _, m := range miles {
		rows = append(rows, mileRow{
			MileIndex:     int32(m.MileIndex),
			LapIndex:      int32(m.LapIndex),
			StartTS:       m.StartTS,
			EndTS:         m.EndTS,
			ElapsedStartS: m.ElapsedStartSec,
			ElapsedEndS:   m.ElapsedEndSec,
			SplitTimeS:    m.SplitTimeSec,
			SplitTimeMMSS: m.SplitTimeMMSS,
			SampleCount:   int64(m.SampleCount),
			HRAvg:         valueOrNaN(m.HRAvg),
			CadAvg:        valueOrNaN(m.CadAvg),
		})
	}
	return rows
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// valueOrNaN is for parquet columns only; JSON output keeps nulls.
func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
