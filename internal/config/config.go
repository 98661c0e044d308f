// Package config loads the module's tunable surface (spec.md §6) from
// environment variables with typed defaults, the way the teacher's
// initConfig populates its Config global — generalized here to the
// full tick/physics/persistence/rate-limit surface and returned as a
// value rather than written into a package global.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/novaforge/cosmos-core/internal/bodies"
	"gopkg.in/yaml.v3"
)

// Physics holds the force-integration tuning knobs.
type Physics struct {
	DirectThreshold int
	SIMDThreshold   int
	Softening       float64
	MaxVelocity     float64
}

// Persistence holds the snapshot/delta payload codec choice.
type Persistence struct {
	Compression   string
	Serialization string
}

// Retention holds the C7 maintenance-pass bounds.
type Retention struct {
	MaxSnapshotsPerPlayer int
	MaxDeltasPerPlayer    int
	AgeDays               int
}

// RateLimit holds the per-player/per-action rate-limit bounds (spec.md
// §4.6) as loaded from the environment. validation.Limiter does not read
// these fields; it applies its own built-in limits, the same for every
// action kind.
type RateLimit struct {
	PerMinute int
	PerHour   int
	PerDay    int
	Burst     int
}

// Config is the full external configuration surface named in spec.md §6.
type Config struct {
	// ListenAddr, DataDir and LogDir are cmd/server's own wiring knobs —
	// not named by spec.md §6 itself, but needed to start the process
	// the way OWNWORLD_COMMAND_CONTROL/:8080 are needed by the teacher.
	ListenAddr string
	DataDir    string
	LogDir     string

	TickRateHz       int
	MaxBodiesGlobal  int
	MaxBodiesPerKind map[bodies.Kind]int
	MaxPosition      float64
	MinSeparation    float64

	Physics     Physics
	AutosaveInterval time.Duration
	CleanupInterval  time.Duration
	PlayerTimeout    time.Duration

	Persistence Persistence
	Retention   Retention
	RateLimit   RateLimit

	// Tuning holds the static tables (creation costs, upgrade base
	// costs/multipliers) as loaded from YAML. No package applies them:
	// the hard-coded tables in internal/bodies and internal/economy stay
	// in effect whatever Tuning holds.
	Tuning Tuning
}

// Tuning is the subset of the configuration surface read from a YAML
// file rather than environment variables — EverforgeWorks'
// CurrentUniverse-from-YAML pattern applied to this module's
// creation-cost and upgrade-cost tables. The loaded values are kept on
// Config only; they do not replace the tables the economy and body store
// use.
type Tuning struct {
	CreationCosts         map[string]uint64 `yaml:"creation_costs"`
	UpgradeBaseCosts      map[string]uint64 `yaml:"upgrade_base_costs"`
	UpgradeCostMultipliers map[string]float64 `yaml:"upgrade_cost_multipliers"`
}

// Default returns the hard-coded defaults spec.md names for every
// field, before any environment or YAML overlay is applied.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		DataDir:         "./data",
		LogDir:          "./logs",
		TickRateHz:      20,
		MaxBodiesGlobal: bodies.MaxBodiesTotal,
		MaxBodiesPerKind: map[bodies.Kind]int{
			bodies.KindStar:      1,
			bodies.KindBlackHole: 1,
		},
		MaxPosition:   bodies.MaxPositionRadius,
		MinSeparation: bodies.MinSeparation,
		Physics: Physics{
			DirectThreshold: 1000,
			SIMDThreshold:   16,
			Softening:       1e-3,
			MaxVelocity:     0.1 * 2.99792458e8,
		},
		AutosaveInterval: 5 * time.Minute,
		CleanupInterval:  1 * time.Hour,
		PlayerTimeout:    60 * time.Minute,
		Persistence: Persistence{
			Compression: "zstd",
			// json is the only full-fidelity serialization (every
			// Body field round-trips); protobuf is a partial, opt-in
			// encoding (see wire.BodyRecord's doc comment) and must be
			// chosen explicitly, not defaulted to.
			Serialization: "json",
		},
		Retention: Retention{
			MaxSnapshotsPerPlayer: 10,
			MaxDeltasPerPlayer:    100,
			AgeDays:               30,
		},
		RateLimit: RateLimit{
			PerMinute: 10,
			PerHour:   300,
			PerDay:    1000,
			Burst:     3,
		},
	}
}

// LoadFromEnv starts from Default and overlays any OWNWORLD_-prefixed
// environment variable that is set, the way the teacher's initConfig
// overlays OWNWORLD_COMMAND_CONTROL/OWNWORLD_PEERING_MODE atop defaults.
func LoadFromEnv() (Config, error) {
	c := Default()

	if v := os.Getenv("OWNWORLD_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("OWNWORLD_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("OWNWORLD_LOG_DIR"); v != "" {
		c.LogDir = v
	}
	if err := overlayInt(&c.TickRateHz, "OWNWORLD_TICK_RATE_HZ"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.MaxBodiesGlobal, "OWNWORLD_MAX_BODIES_GLOBAL"); err != nil {
		return c, err
	}
	if err := overlayFloat(&c.MaxPosition, "OWNWORLD_MAX_POSITION"); err != nil {
		return c, err
	}
	if err := overlayFloat(&c.MinSeparation, "OWNWORLD_MIN_SEPARATION"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.Physics.DirectThreshold, "OWNWORLD_PHYSICS_DIRECT_THRESHOLD"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.Physics.SIMDThreshold, "OWNWORLD_PHYSICS_SIMD_THRESHOLD"); err != nil {
		return c, err
	}
	if err := overlayFloat(&c.Physics.Softening, "OWNWORLD_PHYSICS_SOFTENING"); err != nil {
		return c, err
	}
	if err := overlayFloat(&c.Physics.MaxVelocity, "OWNWORLD_PHYSICS_MAX_VELOCITY"); err != nil {
		return c, err
	}
	if err := overlayDuration(&c.AutosaveInterval, "OWNWORLD_AUTOSAVE_INTERVAL"); err != nil {
		return c, err
	}
	if err := overlayDuration(&c.CleanupInterval, "OWNWORLD_CLEANUP_INTERVAL"); err != nil {
		return c, err
	}
	if err := overlayDuration(&c.PlayerTimeout, "OWNWORLD_PLAYER_TIMEOUT"); err != nil {
		return c, err
	}
	if v := os.Getenv("OWNWORLD_PERSISTENCE_COMPRESSION"); v != "" {
		c.Persistence.Compression = v
	}
	if v := os.Getenv("OWNWORLD_PERSISTENCE_SERIALIZATION"); v != "" {
		c.Persistence.Serialization = v
	}
	if err := overlayInt(&c.Retention.MaxSnapshotsPerPlayer, "OWNWORLD_RETENTION_MAX_SNAPSHOTS"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.Retention.MaxDeltasPerPlayer, "OWNWORLD_RETENTION_MAX_DELTAS"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.Retention.AgeDays, "OWNWORLD_RETENTION_AGE_DAYS"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.RateLimit.PerMinute, "OWNWORLD_RATE_LIMIT_PER_MINUTE"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.RateLimit.PerHour, "OWNWORLD_RATE_LIMIT_PER_HOUR"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.RateLimit.PerDay, "OWNWORLD_RATE_LIMIT_PER_DAY"); err != nil {
		return c, err
	}
	if err := overlayInt(&c.RateLimit.Burst, "OWNWORLD_RATE_LIMIT_BURST"); err != nil {
		return c, err
	}

	if path := os.Getenv("OWNWORLD_TUNING_FILE"); path != "" {
		tuning, err := loadTuningFile(path)
		if err != nil {
			return c, err
		}
		c.Tuning = tuning
	}

	return c, nil
}

func overlayInt(dst *int, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s=%q: %w", envVar, v, err)
	}
	*dst = parsed
	return nil
}

func overlayFloat(dst *float64, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("config: %s=%q: %w", envVar, v, err)
	}
	*dst = parsed
	return nil
}

func overlayDuration(dst *time.Duration, envVar string) error {
	v := os.Getenv(envVar)
	if v == "" {
		return nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: %s=%q: %w", envVar, v, err)
	}
	*dst = parsed
	return nil
}

// loadTuningFile reads the YAML overlay for the static tuning tables.
func loadTuningFile(path string) (Tuning, error) {
	var t Tuning
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("config: reading tuning file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("config: parsing tuning file %s: %w", path, err)
	}
	return t, nil
}
