package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, 20, cfg.Server.Burst)
	assert.Equal(t, symcalc.DefaultConfig(), cfg.Engine.Symcalc())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symcalc.yaml")
	body := "server:\n  port: 9090\n  log_level: debug\n  rate_limit: 2.5\nengine:\n  max_lhopital_count: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("SYMCALC_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, 5, cfg.Engine.MaxLHopitalCount)
	assert.Equal(t, 3, cfg.Engine.MaxUSubCount)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SYMCALC_SERVER_LOG_LEVEL", "loud")
	t.Setenv("SYMCALC_ENGINE_MAX_DERIV_ORDER", "0")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "MaxDerivOrder")
}
