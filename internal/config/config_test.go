package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "flowboard.yml")

	validConfig := `version: "1"
instance: team-payments
redis:
  addr: "redis.internal:6379"
  db: 2
`
	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "team-payments", cfg.Instance)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/flowboard.yml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "flowboard.yml")

	invalidYAML := `version: "1"
instance:
  - this is invalid
    yaml syntax
`
	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "flowboard.yml")

	minimal := `version: "1"
instance: default
`
	err := os.WriteFile(configPath, []byte(minimal), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_EnvOverridesRedisAddr(t *testing.T) {
	t.Setenv("FLOWBOARD_REDIS_ADDR", "override:6390")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "flowboard.yml")
	err := os.WriteFile(configPath, []byte("version: \"1\"\ninstance: default\nredis:\n  addr: \"configured:6379\"\n"), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "override:6390", cfg.Redis.Addr)
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	cfg := &Config{Version: "2", Instance: "default"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config version")
}

func TestValidate_InstanceName(t *testing.T) {
	cases := []struct {
		name     string
		instance string
		wantErr  bool
	}{
		{"simple", "default", false},
		{"hyphenated", "team-payments", false},
		{"empty", "", true},
		{"uppercase", "Team", true},
		{"leading digit", "1team", true},
		{"colon", "team:payments", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Version: "1", Instance: tc.instance}
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_GateProfilesMustExist(t *testing.T) {
	cfg := &Config{Version: "1", Instance: "default", GateProfiles: "/nonexistent/profiles.json"}
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gate_profiles")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "default", cfg.Instance)

	opts := cfg.RedisOptions()
	assert.Equal(t, cfg.Redis.Addr, opts.Addr)
	assert.Equal(t, 0, opts.DB)
}
