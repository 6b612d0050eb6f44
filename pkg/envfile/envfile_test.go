package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesStructure(t *testing.T) {
	content := "# panel generated\nDOMAIN=example.com\n\nTZ=UTC\nbroken line\n"
	f := Parse([]byte(content))

	require.Len(t, f.Lines, 5)
	assert.Equal(t, "", f.Lines[0].Key)
	assert.Equal(t, "DOMAIN", f.Lines[1].Key)
	assert.Equal(t, "example.com", f.Lines[1].Value)
	assert.Equal(t, "", f.Lines[2].Key)
	assert.Equal(t, "TZ", f.Lines[3].Key)
	assert.Equal(t, "", f.Lines[4].Key, "a line without '=' carries no key")

	assert.Equal(t, content, string(f.Bytes()))
}

func TestContainsKey(t *testing.T) {
	f := Parse([]byte("DOMAIN=example.com\n# DB_TYPE=commented\nDB_POSTGRESDB_HOST=postgres\n"))

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"present key", "DOMAIN", true},
		{"present key with value", "DB_POSTGRESDB_HOST", true},
		{"commented-out key", "DB_TYPE", false},
		{"case sensitive", "domain", false},
		{"prefix of a key", "DB", false},
		{"absent key", "REDIS_HOST", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ContainsKey(tt.key))
		})
	}
}

func TestGetReturnsFirstAssignment(t *testing.T) {
	f := Parse([]byte("A=first\nA=second\n"))
	v, ok := f.Get("A")
	require.True(t, ok)
	assert.Equal(t, "first", v)
}

func TestGetEmptyValue(t *testing.T) {
	f := Parse([]byte("EMPTY=\n"))
	v, ok := f.Get("EMPTY")
	require.True(t, ok)
	assert.Equal(t, "", v)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("OLD=1\n"), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	f.Append("NEW", "2")
	require.NoError(t, f.WriteAtomic())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "OLD=1\nNEW=2\n", string(data))

	// No temp leftovers
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
