package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultBaseDir, cfg.Paths.BaseDir)
	assert.Equal(t, filepath.Join(DefaultBaseDir, ".env"), cfg.Paths.EnvFile)
	assert.Equal(t, filepath.Join(DefaultBaseDir, "docker-compose.yml"), cfg.Paths.ComposeFile)
	assert.Equal(t, 7, cfg.Backup.Keep)
	assert.Equal(t, 12, cfg.Health.Attempts)
	assert.Equal(t, 5*time.Second, cfg.Health.Interval)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
}

func TestRebase(t *testing.T) {
	cfg := Default()
	cfg.Rebase("/srv/n8n")

	assert.Equal(t, "/srv/n8n/.env", cfg.Paths.EnvFile)
	assert.Equal(t, "/srv/n8n/docker-compose.yml", cfg.Paths.ComposeFile)
	assert.Equal(t, "/srv/n8n/backups", cfg.Paths.BackupRoot)
	assert.Equal(t, "/usr/local/bin", cfg.Paths.ShimDir, "shim dir is not tied to the base dir")
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n8nctl.yaml")
	content := "paths:\n  base_dir: /srv/n8n\nbackup:\n  keep: 3\ntimezone: UTC\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/n8n", cfg.Paths.BaseDir)
	assert.Equal(t, "/srv/n8n/.env", cfg.Paths.EnvFile, "derived paths follow the base dir")
	assert.Equal(t, 3, cfg.Backup.Keep)
	assert.Equal(t, "UTC", cfg.Timezone)
}
