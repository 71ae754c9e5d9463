package submax

import (
	"errors"
	"testing"
)

func TestFindWindow(t *testing.T) {
	p := DefaultBikeProtocol(150)

	tests := []struct {
		name       string
		samples    []Sample
		wantAnchor int
		wantErr    error
		attempts   int
	}{
		{
			name:       "steady from the first sample",
			samples:    steadySamples(2400, 152, 200),
			wantAnchor: 0,
			attempts:   1,
		},
		{
			name:       "upper band edge is inclusive",
			samples:    steadySamples(1800, 154, 200),
			wantAnchor: 0,
			attempts:   1,
		},
		{
			name:       "lower band edge is inclusive",
			samples:    steadySamples(1800, 146, 200),
			wantAnchor: 0,
			attempts:   1,
		},
		{
			name:    "just outside the band",
			samples: steadySamples(2400, 155, 200),
			wantErr: ErrNoValidWindow,
		},
		{
			name: "warmup below band delays the anchor",
			samples: func() []Sample {
				s := steadySamples(2000, 150, 200)
				for i := 0; i < 100; i++ {
					s[i].HeartRate = fp(120)
				}
				return s
			}(),
			wantAnchor: 100,
			attempts:   1,
		},
		{
			name: "missing heart rate resets the stable run",
			samples: func() []Sample {
				s := steadySamples(2000, 150, 200)
				s[30].HeartRate = nil
				return s
			}(),
			wantAnchor: 31,
			attempts:   1,
		},
		{
			name: "missing power resets the stable run",
			samples: func() []Sample {
				s := steadySamples(2000, 150, 200)
				s[45].Power = nil
				return s
			}(),
			wantAnchor: 46,
			attempts:   1,
		},
		{
			name: "power below pedaling floor resets the stable run",
			samples: func() []Sample {
				s := steadySamples(2000, 150, 200)
				s[10].Power = fp(29)
				return s
			}(),
			wantAnchor: 11,
			attempts:   1,
		},
		{
			name:    "window runs past the end",
			samples: steadySamples(1799, 150, 200),
			wantErr: ErrNoValidWindow,
		},
		{
			name:    "empty stream",
			samples: nil,
			wantErr: ErrNoValidWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := FindWindow(tt.samples, p)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindWindow() error: %v", err)
			}
			if w.Anchor != tt.wantAnchor {
				t.Errorf("anchor = %d, want %d", w.Anchor, tt.wantAnchor)
			}
			if w.End-w.Anchor != 1800 {
				t.Errorf("window length = %d, want 1800", w.End-w.Anchor)
			}
			if w.Attempts != tt.attempts {
				t.Errorf("attempts = %d, want %d", w.Attempts, tt.attempts)
			}
		})
	}
}

// stoppedAt zeroes power for count seconds starting at from.
func stoppedAt(s []Sample, from, count int) []Sample {
	for i := from; i < from+count; i++ {
		s[i].Power = fp(0)
	}
	return s
}

func TestFindWindowStoppageResumesPastRejectedAnchor(t *testing.T) {
	p := DefaultBikeProtocol(150)
	samples := stoppedAt(steadySamples(2600, 150, 200), 720, 30)

	w, err := FindWindow(samples, p)
	if err != nil {
		t.Fatalf("FindWindow() error: %v", err)
	}

	// Anchors 0..660 all contain the 30 s stop; the next stable run starts
	// right after it.
	if w.Anchor != 750 {
		t.Errorf("anchor = %d, want 750", w.Anchor)
	}
	if len(w.Rejections) != 661 {
		t.Fatalf("rejections = %d, want 661", len(w.Rejections))
	}
	if w.Attempts != 662 {
		t.Errorf("attempts = %d, want 662", w.Attempts)
	}
	for i, r := range w.Rejections {
		if r.Anchor != i || r.ResumeAt != i+1 {
			t.Fatalf("rejection %d = %+v, want anchor %d resume %d", i, r, i, i+1)
		}
	}
	if w.LongestStop != 0 {
		t.Errorf("longest stop in accepted window = %d, want 0", w.LongestStop)
	}
}

func TestFindWindowStoppageWithNoLaterWindow(t *testing.T) {
	samples := stoppedAt(steadySamples(2400, 150, 200), 720, 30)

	_, err := FindWindow(samples, DefaultBikeProtocol(150))
	if !errors.Is(err, ErrNoValidWindow) {
		t.Fatalf("error = %v, want ErrNoValidWindow", err)
	}
}

func TestFindWindowShortStopWithinGrace(t *testing.T) {
	samples := stoppedAt(steadySamples(2400, 150, 200), 720, 24)

	w, err := FindWindow(samples, DefaultBikeProtocol(150))
	if err != nil {
		t.Fatalf("FindWindow() error: %v", err)
	}
	if w.Anchor != 0 {
		t.Errorf("anchor = %d, want 0", w.Anchor)
	}
	if w.LongestStop != 24 {
		t.Errorf("longest stop = %d, want 24", w.LongestStop)
	}
}

func TestFindWindowInBandPercentage(t *testing.T) {
	samples := steadySamples(3000, 150, 200)
	for i := 1000; i < 1200; i++ {
		samples[i].HeartRate = fp(165)
	}

	w, err := FindWindow(samples, DefaultBikeProtocol(150))
	if err != nil {
		t.Fatalf("FindWindow() error: %v", err)
	}
	// Every anchor before the excursion holds 200 out-of-band samples,
	// 88.9% in band.
	if w.Anchor != 1200 {
		t.Errorf("anchor = %d, want 1200", w.Anchor)
	}
	if len(w.Rejections) != 941 {
		t.Errorf("rejections = %d, want 941", len(w.Rejections))
	}
	if w.InBandPct != 100 {
		t.Errorf("in-band pct = %v, want 100", w.InBandPct)
	}
}

func TestFindWindowAcceptsAtMinimumInBand(t *testing.T) {
	samples := steadySamples(1800, 150, 200)
	// Exactly 180 of 1800 samples out of band leaves 90% in band.
	for i := 900; i < 1080; i++ {
		samples[i].HeartRate = nil
	}

	w, err := FindWindow(samples, DefaultBikeProtocol(150))
	if err != nil {
		t.Fatalf("FindWindow() error: %v", err)
	}
	if w.InBandPct != 90 {
		t.Errorf("in-band pct = %v, want 90", w.InBandPct)
	}
}

func TestFindWindowInvalidProtocol(t *testing.T) {
	p := DefaultBikeProtocol(150)
	p.SegmentMinutes = 7

	_, err := FindWindow(steadySamples(2000, 150, 200), p)
	if err == nil || errors.Is(err, ErrNoValidWindow) {
		t.Fatalf("expected protocol configuration error, got %v", err)
	}
}
