package services

import (
	"testing"
	"time"
)

func TestClassifyPhase(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	judgingEnd := end.AddDate(0, 0, 14)

	cases := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"before start", start.Add(-time.Hour), PhaseUpcoming},
		{"one second before start", start.Add(-time.Second), PhaseUpcoming},
		{"exactly at start", start, PhaseLive},
		{"mid competition", start.Add(72 * time.Hour), PhaseLive},
		{"one second before end", end.Add(-time.Second), PhaseLive},
		{"exactly at end", end, PhaseJudging},
		{"mid judging", end.AddDate(0, 0, 7), PhaseJudging},
		{"one second before judging end", judgingEnd.Add(-time.Second), PhaseJudging},
		{"exactly at judging end", judgingEnd, PhaseEnded},
		{"long after", judgingEnd.AddDate(1, 0, 0), PhaseEnded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyPhase(tc.now, start, end); got != tc.want {
				t.Errorf("ClassifyPhase(%v) = %q, want %q", tc.now, got, tc.want)
			}
		})
	}
}

func TestJudgingEndIsFourteenDays(t *testing.T) {
	end := time.Date(2026, 6, 30, 18, 0, 0, 0, time.UTC)
	want := time.Date(2026, 7, 14, 18, 0, 0, 0, time.UTC)
	if got := JudgingEnd(end); !got.Equal(want) {
		t.Errorf("JudgingEnd(%v) = %v, want %v", end, got, want)
	}
}

// Phase transitions depend only on the clock, never on the stored status
// column: the same record flips from live to judging as time passes.
func TestPhaseAdvancesWithClockOnly(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if got := ClassifyPhase(end.Add(-time.Minute), start, end); got != PhaseLive {
		t.Fatalf("before end: got %q, want %q", got, PhaseLive)
	}
	if got := ClassifyPhase(end.Add(time.Minute), start, end); got != PhaseJudging {
		t.Fatalf("after end: got %q, want %q", got, PhaseJudging)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{49 * time.Hour, "2 days 1 hours"},
		{25 * time.Hour, "1 days 1 hours"},
		{5*time.Hour + 30*time.Minute, "5 hours 30 minutes"},
		{59*time.Minute + 59*time.Second, "59 minutes 59 seconds"},
		{45 * time.Second, "45 seconds"},
		{0, "0 seconds"},
		{-time.Minute, "0 seconds"},
	}
	for _, tc := range cases {
		if got := FormatRemaining(tc.d); got != tc.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestRemainingLabel(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"upcoming", start.Add(-2 * time.Hour), "Starts in 2 hours 0 minutes"},
		{"live", end.Add(-26 * time.Hour), "Ends in 1 days 2 hours"},
		{"judging", end.Add(13*24*time.Hour + 12*time.Hour), "Judging ends in 12 hours 0 minutes"},
		{"ended", end.AddDate(0, 0, 15), "Competition has ended"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemainingLabel(tc.now, start, end); got != tc.want {
				t.Errorf("RemainingLabel = %q, want %q", got, tc.want)
			}
		})
	}
}
