package services

import (
	"fmt"
	"time"
)

// Phase is the display status of a competition or training module. It is
// derived from the stored dates on every read and never written back.
type Phase string

const (
	PhaseUpcoming Phase = "upcoming"
	PhaseLive     Phase = "live"
	PhaseJudging  Phase = "judging"
	PhaseEnded    Phase = "ended"
)

// JudgingDays is the length of the judging window after a competition ends.
const JudgingDays = 14

// JudgingEnd returns the instant the judging window closes. Calendar-day
// addition, matching the stored-date semantics (a DST shift inside the
// window moves the wall-clock boundary, not the calendar one).
func JudgingEnd(endDate time.Time) time.Time {
	return endDate.AddDate(0, 0, JudgingDays)
}

// ClassifyPhase maps (now, startDate, endDate) to a Phase. Intervals are
// inclusive-left: at exactly startDate the phase is live, at exactly endDate
// it is judging.
func ClassifyPhase(now, startDate, endDate time.Time) Phase {
	switch {
	case now.Before(startDate):
		return PhaseUpcoming
	case now.Before(endDate):
		return PhaseLive
	case now.Before(JudgingEnd(endDate)):
		return PhaseJudging
	default:
		return PhaseEnded
	}
}

// FormatRemaining renders a duration with the coarsest applicable unit pair:
// days+hours, hours+minutes, minutes+seconds, or bare seconds.
func FormatRemaining(d time.Duration) string {
	totalSeconds := int64(d / time.Second)
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	days := totalSeconds / (3600 * 24)
	hours := (totalSeconds % (3600 * 24)) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d days %d hours", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d hours %d minutes", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%d minutes %d seconds", minutes, seconds)
	default:
		return fmt.Sprintf("%d seconds", seconds)
	}
}

// RemainingLabel is the countdown string shown next to the derived phase.
func RemainingLabel(now, startDate, endDate time.Time) string {
	switch ClassifyPhase(now, startDate, endDate) {
	case PhaseUpcoming:
		return "Starts in " + FormatRemaining(startDate.Sub(now))
	case PhaseLive:
		return "Ends in " + FormatRemaining(endDate.Sub(now))
	case PhaseJudging:
		return "Judging ends in " + FormatRemaining(JudgingEnd(endDate).Sub(now))
	default:
		return "Competition has ended"
	}
}
