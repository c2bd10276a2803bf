package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9595, cfg.Server.Port)
	assert.Equal(t, int64(64), cfg.Server.MaxUploadMB)
	assert.InDelta(t, 5.0, cfg.Simulation.RadiusKM, 1e-9)
	assert.Equal(t, "lenient", cfg.Simulation.Mode)
	assert.Equal(t, "haversine", cfg.Simulation.Distance)
	assert.Equal(t, 0, cfg.Simulation.Workers)
	assert.Equal(t, 30*time.Second, cfg.Simulation.Timeout())
	assert.True(t, cfg.Filter.Cascade)
	assert.False(t, cfg.Dataset.ReclassifyCustomers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  port: 8000
simulation:
  radius_km: 2.5
  mode: strict
  distance: vincenty
filter:
  cascade: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.InDelta(t, 2.5, cfg.Simulation.RadiusKM, 1e-9)
	assert.Equal(t, "strict", cfg.Simulation.Mode)
	assert.Equal(t, "vincenty", cfg.Simulation.Distance)
	assert.False(t, cfg.Filter.Cascade)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30, cfg.Simulation.TimeoutSecs)
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("COVERAGE_SERVER_PORT", "7070")
	t.Setenv("COVERAGE_SIMULATION_MODE", "service_set")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "service_set", cfg.Simulation.Mode)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{name: "json info", cfg: LogConfig{Level: "info", Format: "json"}},
		{name: "console debug", cfg: LogConfig{Level: "debug", Format: "console"}},
		{name: "bad level", cfg: LogConfig{Level: "loud", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, zap.L())
		})
	}
}
