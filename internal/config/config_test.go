package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/raplsim/internal/config"
	"codeberg.org/mutker/raplsim/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	os.Args = append([]string{"raplsim"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raplsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	setArgs(t)
	t.Setenv("RAPLSIM_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Interval, "Expected default Interval 1")
	assert.Equal(t, 3, cfg.Domains, "Expected default Domains 3")
	assert.InDelta(t, 15.0, cfg.Power, 1e-9, "Expected default Power 15.0")
	assert.Equal(t, int64(1)<<28, cfg.MaxEnergy, "Expected default MaxEnergy 2^28")
	assert.Equal(t, "sys/class/powercap/intel-rapl", cfg.BaseDir)
	assert.False(t, cfg.Reset, "Expected default Reset false")
	assert.False(t, cfg.Metrics, "Expected default Metrics false")
	assert.Equal(t, "/var/lib/raplsim/metrics.db", cfg.MetricsDB)
}

func TestLoadConfigFile(t *testing.T) {
	setArgs(t)
	configPath := writeConfigFile(t, `
interval = 5
domains = 2
power = 20.5
basedir = "run/powercap"
reset = true
metrics = true
database = "/path/to/metrics.db"
`)
	t.Setenv("RAPLSIM_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Interval, "Expected Interval 5")
	assert.Equal(t, 2, cfg.Domains, "Expected Domains 2")
	assert.InDelta(t, 20.5, cfg.Power, 1e-9, "Expected Power 20.5")
	assert.Equal(t, "run/powercap", cfg.BaseDir)
	assert.True(t, cfg.Reset, "Expected Reset true")
	assert.True(t, cfg.Metrics, "Expected Metrics true")
	assert.Equal(t, "/path/to/metrics.db", cfg.MetricsDB)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	setArgs(t, "-interval", "3", "-domains", "6")
	configPath := writeConfigFile(t, `
interval = 5
domains = 2
`)
	t.Setenv("RAPLSIM_CONFIG", configPath)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Interval, "flag beats file")
	assert.Equal(t, 6, cfg.Domains, "flag beats file")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	setArgs(t)
	configPath := writeConfigFile(t, `
This is not a valid TOML file
`)
	t.Setenv("RAPLSIM_CONFIG", configPath)

	_, err := config.Load()
	require.Error(t, err)

	var appErr errors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrReadConfig, appErr.Code())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero interval", "interval = 0"},
		{"negative domains", "domains = -1"},
		{"zero power", "power = 0.0"},
		{"empty basedir", `basedir = ""`},
		{"metrics without database", "metrics = true\ndatabase = \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t)
			t.Setenv("RAPLSIM_CONFIG", writeConfigFile(t, tt.content))

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
