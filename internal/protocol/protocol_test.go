package protocol

import "testing"

func TestEventNamesAreDistinct(t *testing.T) {
	events := []Event{
		CelestialBodyCreated{},
		CelestialBodyDestroyed{},
		LifeEvolved{},
		UpgradePurchased{},
		CollisionDetected{},
		GameSaved{},
		GameLoaded{},
	}
	seen := make(map[string]bool)
	for _, e := range events {
		name := e.Name()
		if seen[name] {
			t.Errorf("duplicate event name: %s", name)
		}
		seen[name] = true
	}
}

func TestLoadGameHasTickDistinguishesLatestFromTargeted(t *testing.T) {
	latest := LoadGame{Player: "p1"}
	targeted := LoadGame{Player: "p1", Tick: 42, HasTick: true}
	if latest.HasTick {
		t.Error("zero-value LoadGame should not claim a tick")
	}
	if !targeted.HasTick || targeted.Tick != 42 {
		t.Error("targeted LoadGame should carry its tick")
	}
}
