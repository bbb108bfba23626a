package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "yes24-metadata/0.1", cfg.Source.UserAgent)
	require.Equal(t, 30*time.Second, cfg.Timeout())
	require.Equal(t, 100*time.Millisecond, cfg.Delay())
	require.True(t, cfg.Logging.Development)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9999\nsource:\n  delay_ms: 250\n  max_candidates: 5\nlogging:\n  development: false\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, 250*time.Millisecond, cfg.Delay())
	require.Equal(t, 5, cfg.Source.MaxCandidates)
	require.False(t, cfg.Logging.Development)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	bad := cfg
	bad.Server.Port = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Source.TimeoutSeconds = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Source.DelayMs = -1
	require.Error(t, bad.Validate())
}
