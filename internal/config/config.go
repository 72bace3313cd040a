// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all server and gameplay settings.
//
// Gameplay constants live in Tuning: one immutable bundle passed by pointer
// into every behavior so tests can run with extreme or degenerate values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// KILLER AI POLICIES
// =============================================================================

// HuntSpeedPolicy selects how the killer's Hunt-state multiplier behaves.
type HuntSpeedPolicy string

const (
	// HuntStepped ramps 1x -> 1.5x -> 2x -> 3x with continuous flashlight-on time.
	HuntStepped HuntSpeedPolicy = "stepped"
	// HuntFixed applies the top multiplier the instant Hunt begins.
	HuntFixed HuntSpeedPolicy = "fixed"
)

// TimeScalePolicy selects how the killer's base speed grows with survival time.
type TimeScalePolicy string

const (
	// TimeScaleExponential grows the multiplier as growth^elapsedSeconds.
	TimeScaleExponential TimeScalePolicy = "exponential"
	// TimeScaleLinear blends in the bonus speed as the countdown drains.
	TimeScaleLinear TimeScalePolicy = "linear"
)

// =============================================================================
// GAMEPLAY TUNING
// =============================================================================

// Tuning holds every gameplay constant. A YAML overlay can override any
// field for experiments and tests.
type Tuning struct {
	// Map
	MapWidth  float64 `yaml:"map_width"`
	MapHeight float64 `yaml:"map_height"`

	// Player
	PlayerSpeed           float64 `yaml:"player_speed"`
	PlayerCollisionRadius float64 `yaml:"player_collision_radius"`

	// NPCs
	NPCCount       int     `yaml:"npc_count"`
	NPCSpeed       float64 `yaml:"npc_speed"`
	WanderMinTime  float64 `yaml:"wander_min_time"`
	WanderMaxTime  float64 `yaml:"wander_max_time"`
	NPCBoundsInset float64 `yaml:"npc_bounds_inset"`

	// Killer
	KillerBaseSpeed        float64         `yaml:"killer_base_speed"`
	KillerBonusSpeed       float64         `yaml:"killer_bonus_speed"`
	KillerCollisionRadius  float64         `yaml:"killer_collision_radius"`
	KillerMinSpawnDistance float64         `yaml:"killer_min_spawn_distance"`
	HuntSpeedPolicy        HuntSpeedPolicy `yaml:"hunt_speed_policy"`
	HuntSpeed1s            float64         `yaml:"hunt_speed_1s"`
	HuntSpeed2s            float64         `yaml:"hunt_speed_2s"`
	HuntSpeed3s            float64         `yaml:"hunt_speed_3s"`
	SearchSpeed            float64         `yaml:"search_speed"`
	SearchArrivalThreshold float64         `yaml:"search_arrival_threshold"`
	TimeScalePolicy        TimeScalePolicy `yaml:"time_scale_policy"`
	TimeScaleGrowth        float64         `yaml:"time_scale_growth"` // per-second factor, exponential policy

	// Exit door
	ExitDoorWidth            float64 `yaml:"exit_door_width"`
	ExitDoorHeight           float64 `yaml:"exit_door_height"`
	ExitDoorMinSpawnDistance float64 `yaml:"exit_door_min_spawn_distance"`

	// Session timers
	GameMaxTime       float64 `yaml:"game_max_time"`
	JumpscareDuration float64 `yaml:"jumpscare_duration"`
	RestartDelay      float64 `yaml:"restart_delay"`

	// Flashlight
	FlashlightRadius      float64 `yaml:"flashlight_radius"`
	FlashlightMinRadius   float64 `yaml:"flashlight_min_radius"`
	FlashlightMaxDuration float64 `yaml:"flashlight_max_duration"`
	FlashlightCooldown    float64 `yaml:"flashlight_cooldown"`

	// Spawner safety valve: caps the rejection-sampling retries
	SpawnMaxAttempts int `yaml:"spawn_max_attempts"`
}

// DefaultTuning returns the canonical gameplay constants.
func DefaultTuning() Tuning {
	return Tuning{
		MapWidth:  2000,
		MapHeight: 2000,

		PlayerSpeed:           200,
		PlayerCollisionRadius: 15,

		NPCCount:       50,
		NPCSpeed:       50,
		WanderMinTime:  1.0,
		WanderMaxTime:  3.0,
		NPCBoundsInset: 50,

		KillerBaseSpeed:        70,
		KillerBonusSpeed:       50,
		KillerCollisionRadius:  15,
		KillerMinSpawnDistance: 400,
		HuntSpeedPolicy:        HuntStepped,
		HuntSpeed1s:            1.5,
		HuntSpeed2s:            2.0,
		HuntSpeed3s:            3.0,
		SearchSpeed:            1.5,
		SearchArrivalThreshold: 20,
		TimeScalePolicy:        TimeScaleExponential,
		TimeScaleGrowth:        1.02,

		ExitDoorWidth:            60,
		ExitDoorHeight:           100,
		ExitDoorMinSpawnDistance: 800,

		GameMaxTime:       30,
		JumpscareDuration: 1.5,
		RestartDelay:      2.0,

		FlashlightRadius:      200,
		FlashlightMinRadius:   80,
		FlashlightMaxDuration: 3.0,
		FlashlightCooldown:    3.0,

		SpawnMaxAttempts: 1000,
	}
}

// LoadTuning returns the defaults overlaid with the YAML file at path.
// A missing file is not an error; a malformed or invalid one is.
func LoadTuning(path string) (Tuning, error) {
	tune := DefaultTuning()
	if path == "" {
		return tune, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tune, nil
		}
		return tune, fmt.Errorf("reading tuning file: %w", err)
	}

	if err := yaml.Unmarshal(data, &tune); err != nil {
		return tune, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}

	if err := tune.Validate(); err != nil {
		return tune, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return tune, nil
}

// Validate rejects configurations the simulation cannot honor.
func (t *Tuning) Validate() error {
	if t.MapWidth <= 0 || t.MapHeight <= 0 {
		return fmt.Errorf("map dimensions must be positive, got %gx%g", t.MapWidth, t.MapHeight)
	}
	if t.NPCCount < 0 {
		return fmt.Errorf("npc_count must be non-negative, got %d", t.NPCCount)
	}
	if t.WanderMaxTime < t.WanderMinTime {
		return fmt.Errorf("wander_max_time %g < wander_min_time %g", t.WanderMaxTime, t.WanderMinTime)
	}
	if t.GameMaxTime <= 0 {
		return fmt.Errorf("game_max_time must be positive, got %g", t.GameMaxTime)
	}
	if t.FlashlightMaxDuration <= 0 || t.FlashlightCooldown < 0 {
		return fmt.Errorf("invalid flashlight timings: duration %g, cooldown %g",
			t.FlashlightMaxDuration, t.FlashlightCooldown)
	}
	if t.SpawnMaxAttempts <= 0 {
		return fmt.Errorf("spawn_max_attempts must be positive, got %d", t.SpawnMaxAttempts)
	}
	switch t.HuntSpeedPolicy {
	case HuntStepped, HuntFixed:
	default:
		return fmt.Errorf("unknown hunt_speed_policy %q", t.HuntSpeedPolicy)
	}
	switch t.TimeScalePolicy {
	case TimeScaleExponential, TimeScaleLinear:
	default:
		return fmt.Errorf("unknown time_scale_policy %q", t.TimeScalePolicy)
	}
	if t.TimeScalePolicy == TimeScaleExponential && t.TimeScaleGrowth < 1 {
		return fmt.Errorf("time_scale_growth must be >= 1, got %g", t.TimeScaleGrowth)
	}
	return nil
}

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds engine loop settings.
type SimConfig struct {
	TickRate int   // Simulation ticks per second
	Seed     int64 // RNG seed; 0 means seed from the wall clock each run
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate: 60,
		Seed:     0,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if s := getEnvInt64("SIM_SEED", 0); s != 0 {
		cfg.Seed = s
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 3000,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Server ServerConfig
	Tuning Tuning
}

// Load returns the complete configuration: defaults, then the optional YAML
// tuning overlay named by TUNING_PATH, then environment overrides.
func Load() (AppConfig, error) {
	tune, err := LoadTuning(os.Getenv("TUNING_PATH"))
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		Sim:    SimFromEnv(),
		Server: ServerFromEnv(),
		Tuning: tune,
	}, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}
