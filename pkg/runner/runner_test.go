package runner

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRunner(t *testing.T) (*ComposeRunner, *[]string) {
	t.Helper()
	var calls []string
	r := NewComposeRunner(t.TempDir(), nil)
	r.runCmd = func(cmd *exec.Cmd) error {
		calls = append(calls, strings.Join(cmd.Args, " "))
		return nil
	}
	r.lookPath = func(string) (string, error) { return "/usr/bin/docker", nil }
	return r, &calls
}

func TestRunUsesComposePlugin(t *testing.T) {
	r, calls := fakeRunner(t)
	require.NoError(t, r.Build(context.Background()))
	require.NoError(t, r.Up(context.Background()))

	assert.Equal(t, []string{
		"docker compose build",
		"docker compose up -d",
	}, *calls)
}

func TestDownFallsBackToLegacyBinary(t *testing.T) {
	r, _ := fakeRunner(t)
	var calls []string
	r.runCmd = func(cmd *exec.Cmd) error {
		calls = append(calls, strings.Join(cmd.Args, " "))
		if cmd.Args[0] == "docker" {
			return errors.New("unknown command: compose")
		}
		return nil
	}

	require.NoError(t, r.Down(context.Background()))
	assert.Equal(t, []string{
		"docker compose down",
		"docker-compose down",
	}, calls)
}

func TestDownReportsBothFailures(t *testing.T) {
	r, _ := fakeRunner(t)
	r.runCmd = func(cmd *exec.Cmd) error { return errors.New("boom") }

	err := r.Down(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "legacy fallback")
}

func TestDownNoLegacyBinary(t *testing.T) {
	r, _ := fakeRunner(t)
	r.runCmd = func(cmd *exec.Cmd) error { return errors.New("boom") }
	r.lookPath = func(name string) (string, error) {
		if name == "docker-compose" {
			return "", exec.ErrNotFound
		}
		return "/usr/bin/docker", nil
	}

	err := r.Down(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "legacy fallback")
}

func TestBinaryAvailable(t *testing.T) {
	r, _ := fakeRunner(t)
	assert.True(t, r.BinaryAvailable())

	r.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	assert.False(t, r.BinaryAvailable())
}
