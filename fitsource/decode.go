// Package fitsource decodes FIT activity files, optionally gzip-compressed,
// into the sample and lap streams the analyzer consumes.
package fitsource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/lucasjlepore/submax"
	"github.com/tormoder/fit"
)

// Recording is a decoded activity ready for analysis.
type Recording struct {
	FileName string
	Sport    string
	Records  []submax.Sample
	Laps     []submax.LapMarker
}

var gzipMagic = []byte{0x1f, 0x8b}

// DecodeFile opens path and decodes it.
func DecodeFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	return Decode(f, filepath.Base(path))
}

// DecodeBytes decodes an in-memory upload.
func DecodeBytes(data []byte, name string) (*Recording, error) {
	return Decode(bytes.NewReader(data), name)
}

// Decode reads a FIT activity from r. Gzip input is recognised by its magic
// bytes rather than the file name.
func Decode(r io.Reader, name string) (*Recording, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		br = bufio.NewReader(zr)
	}

	decoded, err := fit.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	rec := &Recording{
		FileName: strings.TrimSuffix(name, ".gz"),
		Records:  buildSamples(activity.Records),
		Laps:     buildLaps(activity.Laps),
	}
	if len(activity.Sessions) > 0 && activity.Sessions[0] != nil {
		rec.Sport = strings.ToLower(fmt.Sprint(activity.Sessions[0].Sport))
	}
	return rec, nil
}

// buildSamples sorts records by timestamp and drops those without a real
// timestamp. Invalid-value sentinels become missing readings.
func buildSamples(records []*fit.RecordMsg) []submax.Sample {
	out := make([]submax.Sample, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		ts := validTimeOrZero(r.Timestamp)
		if ts.IsZero() {
			continue
		}
		out = append(out, submax.Sample{
			Timestamp: ts.UTC(),
			HeartRate: extractHeartRate(r),
			Power:     extractPower(r),
			Cadence:   extractCadence(r),
			Distance:  nonNegative(r.GetDistanceScaled()),
			Speed:     extractSpeed(r),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// buildLaps keeps file order, which is the order the athlete pressed lap.
func buildLaps(laps []*fit.LapMsg) []submax.LapMarker {
	out := make([]submax.LapMarker, 0, len(laps))
	for _, lap := range laps {
		if lap == nil {
			continue
		}
		start, end := validTimeOrZero(lap.StartTime), validTimeOrZero(lap.Timestamp)
		if start.IsZero() || end.IsZero() {
			continue
		}
		timer := lap.GetTotalTimerTimeScaled()
		if !isFinite(timer) || timer < 0 {
			timer = 0
		}
		out = append(out, submax.LapMarker{
			StartTime:      start.UTC(),
			EndTime:        end.UTC(),
			TotalTimerTime: timer,
		})
	}
	return out
}

func extractHeartRate(r *fit.RecordMsg) *float64 {
	if r.HeartRate == math.MaxUint8 {
		return nil
	}
	return floatPtr(float64(r.HeartRate))
}

func extractPower(r *fit.RecordMsg) *float64 {
	if r.Power == math.MaxUint16 {
		return nil
	}
	return floatPtr(float64(r.Power))
}

func extractCadence(r *fit.RecordMsg) *float64 {
	if cad256 := r.GetCadence256Scaled(); isFinite(cad256) && cad256 > 0 {
		return floatPtr(cad256)
	}
	if r.Cadence == math.MaxUint8 {
		return nil
	}
	return floatPtr(float64(r.Cadence))
}

func extractSpeed(r *fit.RecordMsg) *float64 {
	if v := nonNegative(r.GetEnhancedSpeedScaled()); v != nil {
		return v
	}
	return nonNegative(r.GetSpeedScaled())
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func nonNegative(v float64) *float64 {
	if !isFinite(v) || v < 0 {
		return nil
	}
	return floatPtr(v)
}

func floatPtr(v float64) *float64 { return &v }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
