package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTuning_IsValid(t *testing.T) {
	tune := DefaultTuning()
	require.NoError(t, tune.Validate())

	assert.Equal(t, 2000.0, tune.MapWidth)
	assert.Equal(t, 50, tune.NPCCount)
	assert.Equal(t, 30.0, tune.GameMaxTime)
	assert.Equal(t, HuntStepped, tune.HuntSpeedPolicy)
	assert.Equal(t, TimeScaleExponential, tune.TimeScalePolicy)
	assert.Equal(t, 1.02, tune.TimeScaleGrowth)
}

func TestLoadTuning_MissingFileUsesDefaults(t *testing.T) {
	tune, err := LoadTuning(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tune)
}

func TestLoadTuning_EmptyPathUsesDefaults(t *testing.T) {
	tune, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTuning(), tune)
}

func TestLoadTuning_PartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"game_max_time: 45\nnpc_count: 10\nhunt_speed_policy: fixed\n",
	), 0644))

	tune, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 45.0, tune.GameMaxTime)
	assert.Equal(t, 10, tune.NPCCount)
	assert.Equal(t, HuntFixed, tune.HuntSpeedPolicy)

	// Untouched fields keep their defaults
	assert.Equal(t, DefaultTuning().PlayerSpeed, tune.PlayerSpeed)
	assert.Equal(t, DefaultTuning().FlashlightCooldown, tune.FlashlightCooldown)
}

func TestLoadTuning_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game_max_time: [not a number"), 0644))

	_, err := LoadTuning(path)
	assert.Error(t, err)
}

func TestLoadTuning_InvalidValuesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game_max_time: -5\n"), 0644))

	_, err := LoadTuning(path)
	assert.Error(t, err)
}

func TestTuningValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tuning)
	}{
		{"zero map", func(tu *Tuning) { tu.MapWidth = 0 }},
		{"negative npc count", func(tu *Tuning) { tu.NPCCount = -1 }},
		{"wander range inverted", func(tu *Tuning) { tu.WanderMaxTime = tu.WanderMinTime - 1 }},
		{"zero game time", func(tu *Tuning) { tu.GameMaxTime = 0 }},
		{"zero flashlight duration", func(tu *Tuning) { tu.FlashlightMaxDuration = 0 }},
		{"negative cooldown", func(tu *Tuning) { tu.FlashlightCooldown = -1 }},
		{"zero spawn attempts", func(tu *Tuning) { tu.SpawnMaxAttempts = 0 }},
		{"unknown hunt policy", func(tu *Tuning) { tu.HuntSpeedPolicy = "turbo" }},
		{"unknown time policy", func(tu *Tuning) { tu.TimeScalePolicy = "quadratic" }},
		{"shrinking growth", func(tu *Tuning) { tu.TimeScaleGrowth = 0.5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tune := DefaultTuning()
			tc.mutate(&tune)
			assert.Error(t, tune.Validate())
		})
	}
}

func TestSimFromEnv(t *testing.T) {
	t.Setenv("TICK_RATE", "120")
	t.Setenv("SIM_SEED", "12345")

	cfg := SimFromEnv()
	assert.Equal(t, 120, cfg.TickRate)
	assert.Equal(t, int64(12345), cfg.Seed)
}

func TestSimFromEnv_Defaults(t *testing.T) {
	t.Setenv("TICK_RATE", "")
	t.Setenv("SIM_SEED", "")

	cfg := SimFromEnv()
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, int64(0), cfg.Seed)
}

func TestServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	assert.Equal(t, 8080, ServerFromEnv().Port)

	t.Setenv("PORT", "")
	assert.Equal(t, 3000, ServerFromEnv().Port)
}

func TestLoad_WithTuningPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("npc_count: 5\n"), 0644))
	t.Setenv("TUNING_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Tuning.NPCCount)
}

func TestLoad_BadTuningFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spawn_max_attempts: 0\n"), 0644))
	t.Setenv("TUNING_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}
