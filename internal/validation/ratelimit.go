package validation

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/novaforge/cosmos-core/internal/gameerrors"
)

// ActionKind distinguishes the per-player, per-kind rate-limit buckets
// spec.md §4.6 calls for (default example given is body creation).
type ActionKind int

const (
	ActionCreateBody ActionKind = iota
	ActionRemoveBody
	ActionPurchaseUpgrade
	ActionSaveGame
	ActionLoadGame
	ActionGetState
)

// windowLimiter is a resetting counter for one of the three fixed windows
// spec.md §4.6 bounds (minute, hour or day); the 10-second burst window is
// a rate.Limiter held separately in playerBuckets.
type windowLimiter struct {
	limiter  *rate.Limiter
	window   time.Duration
	limit    int
	count    int
	resetsAt time.Time
}

func newWindowLimiter(limit int, window time.Duration, now time.Time) *windowLimiter {
	return &windowLimiter{limit: limit, window: window, resetsAt: now.Add(window)}
}

func (w *windowLimiter) allow(now time.Time) bool {
	if !now.Before(w.resetsAt) {
		w.count = 0
		w.resetsAt = now.Add(w.window)
	}
	if w.count >= w.limit {
		return false
	}
	w.count++
	return true
}

// playerBuckets holds every window for one (player, action) pair. Burst is
// modeled with a real token bucket (golang.org/x/time/rate); the minute/
// hour/day windows are modeled as simple resetting counters since
// rate.Limiter's refill model doesn't naturally express a hard daily cap
// that resets on a calendar boundary rather than by elapsed time.
type playerBuckets struct {
	burst  *rate.Limiter
	minute *windowLimiter
	hour   *windowLimiter
	day    *windowLimiter
	dayKey string
}

// Limiter enforces spec.md §4.6's token-bucketed rate limits, per player
// and per action kind.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]map[ActionKind]*playerBuckets
}

// NewLimiter returns a Limiter with no players registered yet.
func NewLimiter() *Limiter {
	return &Limiter{buckets: make(map[string]map[ActionKind]*playerBuckets)}
}

// Default per-action limits, spec.md §4.6.
const (
	burstLimit  = 3
	burstWindow = 10 * time.Second
	minuteLimit = 10
	hourLimit   = 300
	dayLimit    = 1000
)

func (l *Limiter) bucketsFor(playerID string, action ActionKind, now time.Time) *playerBuckets {
	players, ok := l.buckets[playerID]
	if !ok {
		players = make(map[ActionKind]*playerBuckets)
		l.buckets[playerID] = players
	}
	b, ok := players[action]
	if !ok {
		b = &playerBuckets{
			burst:  rate.NewLimiter(rate.Every(burstWindow/burstLimit), burstLimit),
			minute: newWindowLimiter(minuteLimit, time.Minute, now),
			hour:   newWindowLimiter(hourLimit, time.Hour, now),
			day:    newWindowLimiter(dayLimit, 24*time.Hour, now),
			dayKey: now.Format("2006-01-02"),
		}
		players[action] = b
	}
	return b
}

// Allow records one action of the given kind for playerID at time now,
// returning ErrRateLimitExceeded if any window (burst/minute/hour/day) is
// already exhausted. The day window resets at the server clock's calendar
// day boundary rather than by a rolling 24h duration.
func (l *Limiter) Allow(playerID string, action ActionKind, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucketsFor(playerID, action, now)
	today := now.Format("2006-01-02")
	if today != b.dayKey {
		b.dayKey = today
		b.day.count = 0
	}

	if !b.burst.AllowN(now, 1) {
		return gameerrors.Wrap(gameerrors.ErrRateLimitExceeded, "burst limit exceeded for player %s action %d", playerID, action)
	}
	if !b.minute.allow(now) {
		return gameerrors.Wrap(gameerrors.ErrRateLimitExceeded, "per-minute limit exceeded for player %s action %d", playerID, action)
	}
	if !b.hour.allow(now) {
		return gameerrors.Wrap(gameerrors.ErrRateLimitExceeded, "per-hour limit exceeded for player %s action %d", playerID, action)
	}
	if b.day.count >= dayLimit {
		return gameerrors.Wrap(gameerrors.ErrRateLimitExceeded, "per-day limit exceeded for player %s action %d", playerID, action)
	}
	b.day.count++
	return nil
}
