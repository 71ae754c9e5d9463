package fitsource

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/tormoder/fit"
)

var fixtureStart = time.Date(2026, 2, 26, 23, 0, 0, 0, time.UTC)

func buildTestFIT(t *testing.T) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}

	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}

	session := fit.NewSessionMsg()
	session.Timestamp = fixtureStart.Add(10 * time.Second)
	session.StartTime = fixtureStart
	session.Sport = fit.SportCycling
	activity.Sessions = append(activity.Sessions, session)

	for i := 0; i < 10; i++ {
		record := fit.NewRecordMsg()
		record.Timestamp = fixtureStart.Add(time.Duration(i) * time.Second)
		record.HeartRate = 150
		record.Power = 210
		record.Cadence = 90
		if i == 4 {
			record.HeartRate = 0xFF
			record.Power = 0xFFFF
		}
		activity.Records = append(activity.Records, record)
	}

	for i := 0; i < 2; i++ {
		lap := fit.NewLapMsg()
		lap.StartTime = fixtureStart.Add(time.Duration(i*5) * time.Second)
		lap.Timestamp = fixtureStart.Add(time.Duration(i*5+4) * time.Second)
		lap.TotalTimerTime = 4000
		activity.Laps = append(activity.Laps, lap)
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeReadsRecordsAndLaps(t *testing.T) {
	rec, err := DecodeBytes(buildTestFIT(t), "ride.fit")
	if err != nil {
		t.Fatalf("DecodeBytes() error: %v", err)
	}

	if rec.FileName != "ride.fit" || rec.Sport != strings.ToLower(fit.SportCycling.String()) {
		t.Fatalf("unexpected recording metadata: %q %q", rec.FileName, rec.Sport)
	}
	if len(rec.Records) != 10 {
		t.Fatalf("got %d records, want 10", len(rec.Records))
	}

	first := rec.Records[0]
	if !first.Timestamp.Equal(fixtureStart) {
		t.Fatalf("first record at %s, want %s", first.Timestamp, fixtureStart)
	}
	if first.HeartRate == nil || *first.HeartRate != 150 || first.Power == nil || *first.Power != 210 {
		t.Fatalf("first record hr=%v power=%v", first.HeartRate, first.Power)
	}
	if rec.Records[4].HeartRate != nil || rec.Records[4].Power != nil {
		t.Fatalf("invalid sentinels decoded as readings: %+v", rec.Records[4])
	}

	if len(rec.Laps) != 2 {
		t.Fatalf("got %d laps, want 2", len(rec.Laps))
	}
	lap := rec.Laps[1]
	if !lap.StartTime.Equal(fixtureStart.Add(5*time.Second)) || !lap.EndTime.Equal(fixtureStart.Add(9*time.Second)) {
		t.Fatalf("lap 2 bounds %s..%s", lap.StartTime, lap.EndTime)
	}
	if lap.TotalTimerTime != 4 {
		t.Fatalf("lap 2 timer = %v, want 4", lap.TotalTimerTime)
	}
}

func TestDecodeGzipMatchesRaw(t *testing.T) {
	raw := buildTestFIT(t)

	var zipped bytes.Buffer
	zw := gzip.NewWriter(&zipped)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	tmp := t.TempDir()
	path := filepath.Join(tmp, "ride.fit.gz")
	if err := os.WriteFile(path, zipped.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	fromGzip, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error: %v", err)
	}
	fromRaw, err := DecodeBytes(raw, "ride.fit")
	if err != nil {
		t.Fatalf("DecodeBytes() error: %v", err)
	}

	if fromGzip.FileName != "ride.fit" {
		t.Errorf("file name = %q, want ride.fit", fromGzip.FileName)
	}
	if len(fromGzip.Records) != len(fromRaw.Records) || len(fromGzip.Laps) != len(fromRaw.Laps) {
		t.Fatalf("gzip decode differs: %d/%d records, %d/%d laps",
			len(fromGzip.Records), len(fromRaw.Records), len(fromGzip.Laps), len(fromRaw.Laps))
	}
	for i := range fromRaw.Records {
		if !fromGzip.Records[i].Timestamp.Equal(fromRaw.Records[i].Timestamp) {
			t.Fatalf("record %d timestamp differs", i)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeBytes([]byte("not a fit file"), "junk.fit"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.fit")); err == nil {
		t.Fatal("expected open error")
	}
}

func TestBuildSamplesSortsAndDropsBaseTime(t *testing.T) {
	late := fit.NewRecordMsg()
	late.Timestamp = fixtureStart.Add(2 * time.Second)
	early := fit.NewRecordMsg()
	early.Timestamp = fixtureStart
	untimed := fit.NewRecordMsg()

	got := buildSamples([]*fit.RecordMsg{late, nil, untimed, early})
	if len(got) != 2 {
		t.Fatalf("got %d samples, want 2", len(got))
	}
	if !got[0].Timestamp.Equal(fixtureStart) {
		t.Fatalf("samples not sorted: %s first", got[0].Timestamp)
	}
	if got[0].HeartRate != nil || got[0].Cadence != nil || got[0].Speed != nil {
		t.Fatalf("unset fields decoded as readings: %+v", got[0])
	}
}
