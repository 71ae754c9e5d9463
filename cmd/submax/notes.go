package main

import (
	"fmt"
	"strings"

	"github.com/lucasjlepore/submax"
)

// buildNotes renders a result as a short plain-text report.
func buildNotes(res *submax.TestResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder
	s := res.Summary

	fmt.Fprintf(&b, "Test: %s", res.TestType)
	if res.FileName != "" {
		fmt.Fprintf(&b, " (%s)", res.FileName)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Window: %s to %s (%s-%s into the file)\n",
		res.TestStartTS, res.TestEndTS, mmss(res.ElapsedStartSec), mmss(res.ElapsedEndSec))
	fmt.Fprintf(&b, "Compliance: %s\n", s.Compliance)
	for _, reason := range s.ComplianceReasons {
		fmt.Fprintf(&b, "- %s\n", reason)
	}

	switch {
	case res.Sport == submax.ModeBike && s.BikeSummary != nil:
		fmt.Fprintf(&b, "Target HR %s bpm | HR %s avg | Power %s W avg | In band %s%%\n",
			num(s.TargetHR, 0), num(s.HRAvg, 0), num(s.PowerAvg, 0), num(s.InBandPct, 1))
		b.WriteString("\nSegments\n")
		for _, seg := range res.Segments {
			fmt.Fprintf(&b, "- %-9s | %s-%s | %5s W | %5s bpm | %6s W/bpm\n",
				seg.Label, seg.ElapsedStartMMSS, seg.ElapsedEndMMSS,
				num(seg.PowerAvg, 0), num(seg.HRAvg, 0), num(seg.EffPowerPerHR, 3))
		}
		fmt.Fprintf(&b, "\nEfficiency change, last vs first segment: %s%%\n", signed(s.EffChangePctSeg3VsSeg1))
	case res.Sport == submax.ModeRun && s.RunSummary != nil:
		if s.TargetHR != nil {
			fmt.Fprintf(&b, "Target HR %s bpm | ", num(s.TargetHR, 0))
		}
		fmt.Fprintf(&b, "HR %s avg\n", num(s.HRAvg, 0))
		b.WriteString("\nMiles\n")
		for _, m := range res.Miles {
			fmt.Fprintf(&b, "- Mile %d (lap %d) | %s | %5s bpm\n",
				m.MileIndex, m.LapIndex, m.SplitTimeMMSS, num(m.HRAvg, 0))
		}
		fmt.Fprintf(&b, "\nSplit range %s | HR drift mile 1 to 3: %s bpm\n", s.SplitRangeMMSS, signed(s.HRDriftM1ToM3))
	}

	return strings.TrimSpace(b.String())
}

func num(v *float64, prec int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

func signed(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f", *v)
}

func mmss(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
