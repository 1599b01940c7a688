package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handstrike/internal/hit"
	"github.com/ayusman/handstrike/internal/target"
)

func TestApplySettings(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplySettings(map[string]string{
		SettingMode:           "shoot",
		SettingTarget:         "rings",
		SettingSurgeThreshold: "0.05",
		SettingPunchCooldown:  "750",
		SettingFlickThreshold: "0.08",
		SettingHitCooldown:    "2000",
		SettingParticleCount:  "400",
		SettingMinConfidence:  "0.7",
		"ui.theme":            "dark",
	})
	require.NoError(t, err)

	assert.Equal(t, ModeShoot, cfg.Mode)
	assert.Equal(t, target.Rings, cfg.Target)
	assert.Equal(t, 0.05, cfg.Punch.SurgeThreshold)
	assert.Equal(t, 750*time.Millisecond, cfg.Punch.Cooldown)
	assert.Equal(t, 0.08, cfg.Shoot.FlickThreshold)
	assert.Equal(t, 2*time.Second, cfg.Targets.RingCooldown)
	assert.Equal(t, 2*time.Second, cfg.Targets.SphereCooldown)
	assert.Equal(t, 400, cfg.Particles.Count)
	assert.Equal(t, 0.7, cfg.MinConfidence)
}

func TestApplySettings_Malformed(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{SettingMode, "kick"},
		{SettingTarget, "dragon"},
		{SettingSurgeThreshold, "abc"},
		{SettingSurgeThreshold, "-0.1"},
		{SettingPunchCooldown, "-5"},
		{SettingFlickThreshold, "NaN"},
		{SettingParticleCount, "many"},
		{SettingMinConfidence, "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.ApplySettings(map[string]string{tt.key: tt.value, SettingParticleCount: "10"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Equal(t, DefaultConfig(), cfg, "config must be untouched on error")
		})
	}
}

func TestConfig_ModeWiring(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, hit.ModeGuaranteed, cfg.hitConfig().Mode)
	assert.Equal(t, "punch", string(cfg.strategies()[0].Kind()))

	cfg.Mode = ModeShoot
	assert.Equal(t, hit.ModeGeometric, cfg.hitConfig().Mode)
	assert.Equal(t, "shoot", string(cfg.strategies()[0].Kind()))
}

func TestIsSettingKey(t *testing.T) {
	for _, k := range SettingKeys() {
		assert.True(t, IsSettingKey(k))
	}
	assert.False(t, IsSettingKey("ui.theme"))
}
