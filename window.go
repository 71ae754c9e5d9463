package submax

import "fmt"

type searchState int

const (
	stateSearching searchState = iota
	stateCandidateStable
	stateValidatingWindow
	stateAccepted
	stateRejected
	stateExhausted
)

func (s searchState) String() string {
	switch s {
	case stateSearching:
		return "searching"
	case stateCandidateStable:
		return "candidate_stable"
	case stateValidatingWindow:
		return "validating_window"
	case stateAccepted:
		return "accepted"
	case stateRejected:
		return "rejected"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("searchState(%d)", int(s))
	}
}

// Rejection records one anchor whose window failed validation.
type Rejection struct {
	Anchor   int
	Reason   string
	ResumeAt int
}

// Window is an accepted bike test window. End is exclusive.
type Window struct {
	Anchor      int
	End         int
	InBandPct   float64
	LongestStop int
	Attempts    int
	Rejections  []Rejection
}

// windowSearch walks the recording once with a single forward index. The
// per-sample facts are precomputed as prefix counts so that validating a
// window costs O(1) and the whole search stays linear.
type windowSearch struct {
	p       BikeProtocol
	samples []Sample

	qualifies    []bool
	inBandPrefix []int
	// longStopPrefix[k] counts indices j < k whose stop run (ending at j)
	// is at least StopGraceS long.
	longStopPrefix []int

	state    searchState
	idx      int
	run      int
	anchor   int
	resumeAt int
	attempts int
	rejected []Rejection
	accepted Window
}

// FindWindow locates the earliest anchor whose following test window holds
// the heart-rate band without a long stoppage.
func FindWindow(samples []Sample, p BikeProtocol) (Window, error) {
	if err := p.validate(); err != nil {
		return Window{}, err
	}
	ws := newWindowSearch(samples, p)
	return ws.search()
}

func (p BikeProtocol) validate() error {
	switch {
	case p.StableSeconds < 1:
		return fmt.Errorf("invalid bike protocol: stable seconds %d", p.StableSeconds)
	case p.TestMinutes < 1:
		return fmt.Errorf("invalid bike protocol: test minutes %d", p.TestMinutes)
	case p.SegmentMinutes < 1 || p.TestMinutes%p.SegmentMinutes != 0:
		return fmt.Errorf("invalid bike protocol: %d minute test does not divide into %d minute segments", p.TestMinutes, p.SegmentMinutes)
	}
	return nil
}

func newWindowSearch(samples []Sample, p BikeProtocol) *windowSearch {
	n := len(samples)
	ws := &windowSearch{
		p:              p,
		samples:        samples,
		qualifies:      make([]bool, n),
		inBandPrefix:   make([]int, n+1),
		longStopPrefix: make([]int, n+1),
		state:          stateSearching,
	}
	stopRun := 0
	for i, s := range samples {
		band := p.inBand(s.HeartRate)
		ws.qualifies[i] = band && p.pedaling(s.Power)

		ws.inBandPrefix[i+1] = ws.inBandPrefix[i]
		if band {
			ws.inBandPrefix[i+1]++
		}

		if p.stopped(s.Power) {
			stopRun++
		} else {
			stopRun = 0
		}
		ws.longStopPrefix[i+1] = ws.longStopPrefix[i]
		if p.StopGraceS > 0 && stopRun >= p.StopGraceS {
			ws.longStopPrefix[i+1]++
		}
	}
	return ws
}

func (ws *windowSearch) search() (Window, error) {
	stable := ws.p.StableSeconds
	for {
		switch ws.state {
		case stateSearching, stateCandidateStable:
			if ws.idx >= len(ws.samples) {
				ws.state = stateExhausted
				continue
			}
			if ws.qualifies[ws.idx] {
				ws.run++
			} else {
				ws.run = 0
			}
			ws.idx++
			switch {
			case ws.run >= stable:
				ws.anchor = ws.idx - stable
				ws.state = stateValidatingWindow
			case ws.run > 0:
				ws.state = stateCandidateStable
			default:
				ws.state = stateSearching
			}

		case stateValidatingWindow:
			ws.attempts++
			ws.state = ws.validate()

		case stateRejected:
			// Samples [resumeAt, idx) already qualified, so the run carries
			// over instead of being rescanned.
			ws.run = ws.idx - ws.resumeAt
			if ws.run > 0 {
				ws.state = stateCandidateStable
			} else {
				ws.state = stateSearching
			}

		case stateAccepted:
			return ws.accepted, nil

		case stateExhausted:
			return Window{}, ErrNoValidWindow
		}
	}
}

func (ws *windowSearch) validate() searchState {
	w := ws.p.windowLen()
	start := ws.anchor
	end := start + w
	if end > len(ws.samples) {
		// Every later anchor runs past the end as well.
		return stateExhausted
	}

	if grace := ws.p.StopGraceS; grace > 0 {
		lo := start + grace - 1
		if lo < end && ws.longStopPrefix[end]-ws.longStopPrefix[lo] > 0 {
			return ws.reject(fmt.Sprintf("stopped for %ds or more", grace))
		}
	}

	pct := float64(ws.inBandPrefix[end]-ws.inBandPrefix[start]) / float64(w) * 100.0
	if pct < ws.p.MinInBandPct {
		return ws.reject(fmt.Sprintf("in-band %.1f%% below %.1f%%", pct, ws.p.MinInBandPct))
	}

	ws.accepted = Window{
		Anchor:      start,
		End:         end,
		InBandPct:   pct,
		LongestStop: longestStop(ws.samples[start:end], ws.p),
		Attempts:    ws.attempts,
		Rejections:  ws.rejected,
	}
	return stateAccepted
}

func (ws *windowSearch) reject(reason string) searchState {
	ws.resumeAt = ws.anchor + 1
	ws.rejected = append(ws.rejected, Rejection{
		Anchor:   ws.anchor,
		Reason:   reason,
		ResumeAt: ws.resumeAt,
	})
	return stateRejected
}

// longestStop is the longest continuous run of stopped samples.
func longestStop(samples []Sample, p BikeProtocol) int {
	longest, run := 0, 0
	for _, s := range samples {
		if p.stopped(s.Power) {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}
