package validation

import (
	"testing"
	"time"

	"github.com/novaforge/cosmos-core/internal/gameerrors"
	"github.com/novaforge/cosmos-core/internal/vec3"
)

func TestAnomalyFlagsMechanicalRegularity(t *testing.T) {
	tr := NewAnomalyTracker()
	now := time.Now()
	var err error
	for i := 0; i < 10; i++ {
		now = now.Add(50 * time.Millisecond) // identical intervals: zero jitter, under the 100ms stddev floor
		err = tr.RecordAction(now, vec3.Zero, false)
	}
	if !gameerrors.Is(err, gameerrors.ErrSuspiciousActivity) {
		t.Fatalf("got %v, want ErrSuspiciousActivity after sustained mechanical timing", err)
	}
}

func TestAnomalyIgnoresOrganicTiming(t *testing.T) {
	tr := NewAnomalyTracker()
	now := time.Now()
	intervals := []time.Duration{
		1100 * time.Millisecond, 900 * time.Millisecond, 1400 * time.Millisecond,
		700 * time.Millisecond, 1250 * time.Millisecond, 800 * time.Millisecond,
	}
	var err error
	for _, d := range intervals {
		now = now.Add(d)
		err = tr.RecordAction(now, vec3.Vec3{X: 1.37, Y: -2.84, Z: 0.91}, true)
	}
	if err != nil {
		t.Errorf("organic-looking timing flagged as suspicious: %v", err)
	}
}

func TestIsSuspiciouslyPrecise(t *testing.T) {
	if !isSuspiciouslyPrecise(vec3.Vec3{X: 1, Y: 2.5, Z: -3}) {
		t.Error("expected grid-aligned position to be flagged")
	}
	if isSuspiciouslyPrecise(vec3.Vec3{X: 1.337, Y: 2.5, Z: -3}) {
		t.Error("non-grid position flagged incorrectly")
	}
}
