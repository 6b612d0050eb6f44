package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupFlagsRegistered(t *testing.T) {
	flags := setupCmd.Flags()

	for _, name := range []string{"no-bot", "no-tools", "no-proxy", "dry-run"} {
		f := flags.Lookup(name)
		require.NotNil(t, f, "flag %q should be registered", name)
		assert.Equal(t, "false", f.DefValue, "flag %q should default to off", name)
	}
	for _, name := range []string{"timezone", "domain", "acme-email"} {
		f := flags.Lookup(name)
		require.NotNil(t, f, "flag %q should be registered", name)
		assert.Equal(t, "", f.DefValue)
	}
}

func TestSetupOptionsInvertSkipFlags(t *testing.T) {
	setupNoBot = true
	setupNoTools = false
	setupNoProxy = true
	setupDomain = "n8n.example.com"
	setupDryRun = true
	t.Cleanup(func() {
		setupNoBot = false
		setupNoProxy = false
		setupDomain = ""
		setupDryRun = false
	})

	opts := buildSetupOptions()

	assert.False(t, opts.IncludeBot)
	assert.True(t, opts.IncludeTools)
	assert.False(t, opts.ProxyTLS)
	assert.True(t, opts.DryRun)
	assert.Equal(t, "n8n.example.com", opts.Domain)
}

func TestSetupRejectsUnknownFlag(t *testing.T) {
	err := setupCmd.ParseFlags([]string{"--frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}
