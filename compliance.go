package submax

import (
	"fmt"
	"math"
)

// verdict accumulates the worst label seen plus the reasons behind it.
type verdict struct {
	label   Compliance
	reasons []string
}

func (v *verdict) flag(label Compliance, format string, args ...any) {
	if severity(label) > severity(v.label) {
		v.label = label
	}
	v.reasons = append(v.reasons, fmt.Sprintf(format, args...))
}

func severity(c Compliance) int {
	switch c {
	case NonCompliant:
		return 2
	case Warning:
		return 1
	default:
		return 0
	}
}

// classifyBike labels an accepted window. The search already enforces the
// NON_COMPLIANT thresholds; they are checked again so a window built with
// relaxed parameters cannot pass silently.
func classifyBike(samples []Sample, w Window, p BikeProtocol) (Compliance, []string) {
	v := verdict{label: Compliant}

	switch {
	case w.InBandPct < p.MinInBandPct:
		v.flag(NonCompliant, "in-band %.1f%% below minimum %.1f%%", w.InBandPct, p.MinInBandPct)
	case w.InBandPct < p.WarnInBandPct:
		v.flag(Warning, "in-band %.1f%% close to minimum %.1f%%", w.InBandPct, p.MinInBandPct)
	}

	switch {
	case p.StopGraceS > 0 && w.LongestStop >= p.StopGraceS:
		v.flag(NonCompliant, "stopped for %ds (limit %ds)", w.LongestStop, p.StopGraceS)
	case p.WarnStopS > 0 && w.LongestStop >= p.WarnStopS:
		v.flag(Warning, "stopped for %ds (warning at %ds)", w.LongestStop, p.WarnStopS)
	}

	checkCoverage(&v, "heart rate", coveragePct(samples, heartRate), p.MinCoveragePct, p.WarnCoveragePct)
	checkCoverage(&v, "power", coveragePct(samples, power), p.MinCoveragePct, p.WarnCoveragePct)

	return v.label, v.reasons
}

// classifyRun labels the three test laps by heart-rate coverage and pacing
// evenness.
func classifyRun(laps []testLap, miles []Mile, p RunProtocol) (Compliance, []string) {
	v := verdict{label: Compliant}

	var all []Sample
	for _, lap := range laps {
		if len(lap.samples) == 0 {
			v.flag(NonCompliant, "lap %d contains no samples", lap.lapIndex)
		}
		all = append(all, lap.samples...)
	}
	checkCoverage(&v, "heart rate", coveragePct(all, heartRate), p.MinCoveragePct, p.WarnCoveragePct)

	splitRange, splitMean := splitStats(miles)
	if splitMean > 0 {
		pct := splitRange / splitMean * 100.0
		switch {
		case pct > p.MaxSplitRangePct:
			v.flag(NonCompliant, "split range %.0fs is %.1f%% of mean split (limit %.1f%%)", splitRange, pct, p.MaxSplitRangePct)
		case pct > p.WarnSplitRangePct:
			v.flag(Warning, "split range %.0fs is %.1f%% of mean split (warning at %.1f%%)", splitRange, pct, p.WarnSplitRangePct)
		}
	}

	return v.label, v.reasons
}

func checkCoverage(v *verdict, channel string, pct, minPct, warnPct float64) {
	switch {
	case pct < minPct:
		v.flag(NonCompliant, "%s present in %.1f%% of samples (minimum %.1f%%)", channel, pct, minPct)
	case pct < warnPct:
		v.flag(Warning, "%s present in %.1f%% of samples", channel, pct)
	}
}

// splitStats returns max-min and mean of the mile split times.
func splitStats(miles []Mile) (rangeSec, meanSec float64) {
	if len(miles) == 0 {
		return 0, 0
	}
	lo, hi, total := math.Inf(1), math.Inf(-1), 0.0
	for _, m := range miles {
		lo = math.Min(lo, m.SplitTimeSec)
		hi = math.Max(hi, m.SplitTimeSec)
		total += m.SplitTimeSec
	}
	return hi - lo, total / float64(len(miles))
}
