package validation

import (
	"math"
	"time"

	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

// anomalyWindow is the rolling window size (spec.md §4.6: last 100 action
// intervals).
const anomalyWindow = 100

// Severity-weighted score contribution per flagged event; spec.md gives a
// 5-15 range depending on severity, applied here low/medium/high.
const (
	scoreLow    = 5.0
	scoreMedium = 10.0
	scoreHigh   = 15.0
	scoreCap    = 50.0
)

// AnomalyTracker accumulates one player's recent action timing and
// position history to flag SuspiciousActivity (spec.md §4.6).
type AnomalyTracker struct {
	lastAction time.Time
	intervals  []time.Duration
	score      float64
}

// NewAnomalyTracker returns an empty tracker.
func NewAnomalyTracker() *AnomalyTracker {
	return &AnomalyTracker{}
}

// RecordAction logs an action at time now and the position it targeted
// (if any; pass vec3.Zero when not applicable), returning
// ErrSuspiciousActivity if the accumulated score crosses the cap.
func (t *AnomalyTracker) RecordAction(now time.Time, pos vec3.Vec3, hasPosition bool) error {
	if !t.lastAction.IsZero() {
		interval := now.Sub(t.lastAction)
		t.intervals = append(t.intervals, interval)
		if len(t.intervals) > anomalyWindow {
			t.intervals = t.intervals[len(t.intervals)-anomalyWindow:]
		}
	}
	t.lastAction = now

	if apm := t.actionsPerMinute(now); apm > 300 {
		t.score += scoreMedium
	}
	if stddev := t.intervalStdDev(); len(t.intervals) >= 2 && stddev < 100*time.Millisecond {
		t.score += scoreHigh
	}
	if hasPosition && isSuspiciouslyPrecise(pos) {
		t.score += scoreLow
	}

	if t.score > scoreCap {
		return gameerrors.Wrap(gameerrors.ErrSuspiciousActivity, "anomaly score %.1f exceeds cap %.1f", t.score, scoreCap)
	}
	return nil
}

// actionsPerMinute estimates sustained APM from the mean interval over the
// tracked window.
func (t *AnomalyTracker) actionsPerMinute(now time.Time) float64 {
	if len(t.intervals) == 0 {
		return 0
	}
	mean := t.meanInterval()
	if mean <= 0 {
		return math.Inf(1)
	}
	return time.Minute.Seconds() / mean.Seconds()
}

func (t *AnomalyTracker) meanInterval() time.Duration {
	if len(t.intervals) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range t.intervals {
		sum += d
	}
	return sum / time.Duration(len(t.intervals))
}

// intervalStdDev returns the standard deviation of the tracked intervals;
// mechanical regularity (near-zero jitter) is itself suspicious.
func (t *AnomalyTracker) intervalStdDev() time.Duration {
	n := len(t.intervals)
	if n < 2 {
		return 0
	}
	mean := t.meanInterval()
	var sumSq float64
	for _, d := range t.intervals {
		diff := float64(d - mean)
		sumSq += diff * diff
	}
	variance := sumSq / float64(n)
	return time.Duration(math.Sqrt(variance))
}

// isSuspiciouslyPrecise flags positions whose components sit exactly on
// an integer or half-integer grid, a pattern a scripted client produces
// far more often than organic play.
func isSuspiciouslyPrecise(pos vec3.Vec3) bool {
	onGrid := func(v float64) bool {
		scaled := v * 2
		return math.Abs(scaled-math.Round(scaled)) < 1e-9
	}
	return onGrid(pos.X) && onGrid(pos.Y) && onGrid(pos.Z)
}

// Penalty is the outcome of the penalty ladder (spec.md §4.6).
type Penalty int

const (
	PenaltyNone Penalty = iota
	PenaltyWarn
	PenaltyCooldown
	PenaltySuspension
	PenaltyBan
)

func (p Penalty) String() string {
	switch p {
	case PenaltyWarn:
		return "Warn"
	case PenaltyCooldown:
		return "Cooldown"
	case PenaltySuspension:
		return "Suspension"
	case PenaltyBan:
		return "Ban"
	default:
		return "None"
	}
}

// Violation tags the offense class the penalty ladder keys off.
type Violation int

const (
	ViolationMinorDesync Violation = iota
	ViolationRateLimit
	ViolationImpossibleState
	ViolationConfirmedCheating
)

// CooldownDuration and SuspensionDuration are the ladder's fixed terms
// (spec.md §4.6).
const (
	CooldownDuration   = 5 * time.Minute
	SuspensionDuration = 1 * time.Hour
)

// Penalize maps a violation class to its ladder rung: MinorDesync warns,
// RateLimit gets a cooldown, ImpossibleState gets a suspension, and
// ConfirmedCheating is a permanent ban.
func Penalize(v Violation) Penalty {
	switch v {
	case ViolationMinorDesync:
		return PenaltyWarn
	case ViolationRateLimit:
		return PenaltyCooldown
	case ViolationImpossibleState:
		return PenaltySuspension
	case ViolationConfirmedCheating:
		return PenaltyBan
	default:
		return PenaltyNone
	}
}
