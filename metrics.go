package submax

import (
	"fmt"
	"math"
	"time"
)

// All aggregators here are total over optional inputs: an undefined operand
// or a zero denominator yields nil, never NaN or Inf.

// mean averages the present, finite values.
func mean(values []*float64) *float64 {
	total := 0.0
	count := 0
	for _, v := range values {
		if v == nil || !isFinite(*v) {
			continue
		}
		total += *v
		count++
	}
	if count == 0 {
		return nil
	}
	return floatPtr(total / float64(count))
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return finitePtr(*num / *den)
}

func pctChange(start, end *float64) *float64 {
	if start == nil || end == nil || *start == 0 {
		return nil
	}
	return finitePtr((*end - *start) / *start * 100.0)
}

func diff(start, end *float64) *float64 {
	if start == nil || end == nil {
		return nil
	}
	return finitePtr(*end - *start)
}

// coveragePct is the share of samples where pick returns a reading.
func coveragePct(samples []Sample, pick func(Sample) *float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	present := 0
	for _, s := range samples {
		if v := pick(s); v != nil && isFinite(*v) {
			present++
		}
	}
	return float64(present) / float64(len(samples)) * 100.0
}

func collect(samples []Sample, pick func(Sample) *float64) []*float64 {
	out := make([]*float64, len(samples))
	for i, s := range samples {
		out[i] = pick(s)
	}
	return out
}

func heartRate(s Sample) *float64 { return s.HeartRate }
func power(s Sample) *float64     { return s.Power }
func cadence(s Sample) *float64   { return s.Cadence }

// formatMMSS renders seconds as zero-padded minutes:seconds, flooring the
// seconds and clamping negatives to zero. Minutes are not wrapped into hours.
func formatMMSS(seconds float64) string {
	if !isFinite(seconds) || seconds < 0 {
		seconds = 0
	}
	m := int(math.Floor(seconds / 60))
	s := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%02d:%02d", m, s)
}

func elapsedSeconds(ts, fileStart time.Time) float64 {
	return ts.Sub(fileStart).Seconds()
}

func formatTS(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

func floatPtr(v float64) *float64 {
	out := v
	return &out
}

func intPtr(v int) *int {
	out := v
	return &out
}

func finitePtr(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return floatPtr(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
