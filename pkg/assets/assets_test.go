package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData(base string) Data {
	return Data{
		BaseDir:       base,
		Timezone:      "Europe/Moscow",
		DockerGroupID: 998,
		BackupKeep:    7,
		HealthURL:     "http://127.0.0.1:5678/healthz",
	}
}

func TestWriteFullCatalog(t *testing.T) {
	base := t.TempDir()
	shim := t.TempDir()

	written, err := Write(base, shim, testData(base), true)
	require.NoError(t, err)
	assert.Len(t, written, 7)

	dockerfile, err := os.ReadFile(filepath.Join(base, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(dockerfile), "DOCKER_GROUP_ID=998")
	assert.Contains(t, string(dockerfile), "TZ=Europe/Moscow")

	backupScript, err := os.ReadFile(filepath.Join(base, "backup.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(backupScript), base)
	assert.Contains(t, string(backupScript), "KEEP=7")

	info, err := os.Stat(filepath.Join(base, "backup.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	shimScript, err := os.ReadFile(filepath.Join(shim, "docker-compose"))
	require.NoError(t, err)
	assert.Contains(t, string(shimScript), `exec docker compose "$@"`)

	botSource, err := os.ReadFile(filepath.Join(base, "bot", "bot.py"))
	require.NoError(t, err)
	assert.Contains(t, string(botSource), base)
}

func TestWriteSkipsBotAssets(t *testing.T) {
	base := t.TempDir()
	shim := t.TempDir()

	written, err := Write(base, shim, testData(base), false)
	require.NoError(t, err)
	assert.Len(t, written, 5)

	_, err = os.Stat(filepath.Join(base, "bot"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteOverwritesExisting(t *testing.T) {
	base := t.TempDir()
	shim := t.TempDir()
	target := filepath.Join(base, "Dockerfile")
	require.NoError(t, os.WriteFile(target, []byte("operator edit\n"), 0o644))

	_, err := Write(base, shim, testData(base), false)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "operator edit")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("templates/nope.tmpl", testData("/tmp"))
	require.Error(t, err)
}
