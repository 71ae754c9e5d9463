package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lucasjlepore/submax"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func bikeResult(t *testing.T) *submax.TestResult {
	t.Helper()

	start := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	records := make([]submax.Sample, 1800)
	for i := range records {
		hr, pw := 150.0, 200.0
		records[i] = submax.Sample{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			HeartRate: &hr,
			Power:     &pw,
		}
	}
	res, err := submax.Analyze(submax.Input{Records: records, Mode: submax.ModeBike, TargetHR: 150, FileName: "ride.fit"})
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	return res
}

func TestWriteCSV(t *testing.T) {
	res := bikeResult(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := Write(res, Options{OutDir: outDir, Format: "CSV"})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if out.RowCount != 3 || filepath.Base(out.RowsPath) != "segments.csv" {
		t.Fatalf("unexpected result: %+v", out)
	}

	f, err := os.Open(out.RowsPath)
	if err != nil {
		t.Fatalf("open rows: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d csv rows, want header + 3", len(rows))
	}
	if rows[0][0] != "segment_index" || rows[1][1] != "min_0_10" {
		t.Fatalf("unexpected csv content: %v", rows[:2])
	}
	// cadence was never recorded
	if rows[1][9] != "" {
		t.Fatalf("missing cadence rendered as %q", rows[1][9])
	}

	data, err := os.ReadFile(out.ResultPath)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var back submax.TestResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(back.Segments) != 3 || back.Summary.Compliance != submax.Compliant {
		t.Fatalf("result.json round trip lost data: %+v", back.Summary)
	}
}

func TestWriteParquet(t *testing.T) {
	res := bikeResult(t)
	outDir := t.TempDir()

	out, err := Write(res, Options{OutDir: outDir})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if filepath.Base(out.RowsPath) != "segments.parquet" {
		t.Fatalf("rows path = %s", out.RowsPath)
	}

	fr, err := local.NewLocalFileReader(out.RowsPath)
	if err != nil {
		t.Fatalf("open parquet: %v", err)
	}
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(segmentRow), 4)
	if err != nil {
		t.Fatalf("parquet reader: %v", err)
	}
	defer pr.ReadStop()
	if n := pr.GetNumRows(); n != 3 {
		t.Fatalf("parquet has %d rows, want 3", n)
	}
}

func TestWriteRefusesNonEmptyDir(t *testing.T) {
	res := bikeResult(t)
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed dir: %v", err)
	}

	if _, err := Write(res, Options{OutDir: outDir, Format: "csv"}); err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected non-empty directory error, got %v", err)
	}
	if _, err := Write(res, Options{OutDir: outDir, Format: "csv", Overwrite: true}); err != nil {
		t.Fatalf("Write() with overwrite error: %v", err)
	}
}

func TestWriteRejectsBadOptions(t *testing.T) {
	res := bikeResult(t)
	tests := []struct {
		name string
		res  *submax.TestResult
		opts Options
	}{
		{"nil result", nil, Options{OutDir: t.TempDir()}},
		{"no output dir", res, Options{}},
		{"unknown format", res, Options{OutDir: t.TempDir(), Format: "xlsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Write(tt.res, tt.opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestArtifactsForRunResult(t *testing.T) {
	res := &submax.TestResult{
		TestType: submax.TestTypeRun,
		Sport:    submax.ModeRun,
		Miles: []submax.Mile{
			{MileIndex: 1, LapIndex: 3, SplitTimeSec: 420, SplitTimeMMSS: "07:00"},
			{MileIndex: 2, LapIndex: 4, SplitTimeSec: 415, SplitTimeMMSS: "06:55"},
			{MileIndex: 3, LapIndex: 5, SplitTimeSec: 430, SplitTimeMMSS: "07:10"},
		},
	}

	files, err := Artifacts(res, "csv")
	if err != nil {
		t.Fatalf("Artifacts() error: %v", err)
	}
	if _, ok := files["result.json"]; !ok {
		t.Fatal("missing result.json")
	}
	rows, ok := files["miles.csv"]
	if !ok {
		t.Fatalf("missing miles.csv in %v", files)
	}
	lines := strings.Split(strings.TrimSpace(string(rows)), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[3], "3,5,") {
		t.Fatalf("unexpected miles.csv:\n%s", rows)
	}

	parquetFiles, err := Artifacts(res, "parquet")
	if err != nil {
		t.Fatalf("Artifacts(parquet) error: %v", err)
	}
	if data := parquetFiles["miles.parquet"]; len(data) < 4 || string(data[:4]) != "PAR1" {
		t.Fatalf("miles.parquet is not a parquet file")
	}
}
