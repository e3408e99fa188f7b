package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/config"
)

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"chat", "serve", "search", "suggest", "personas", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestBuildProvidersAuto(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.DefaultConfig()
	reg, err := buildProviders(cfg)
	require.NoError(t, err)

	// No key means no provider; personas use canned lines.
	assert.Nil(t, reg.Active())

	t.Setenv("OPENAI_API_KEY", "sk-test")
	reg, err = buildProviders(cfg)
	require.NoError(t, err)
	require.NotNil(t, reg.Active())
	assert.Equal(t, "openai", reg.Active().Name())
}

func TestBuildProvidersScripted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AI.Provider = "scripted"

	reg, err := buildProviders(cfg)
	require.NoError(t, err)
	require.NotNil(t, reg.Active())
	assert.Equal(t, "scripted", reg.Active().Name())
}

func TestCoordinatorOptions(t *testing.T) {
	opts := coordinatorOptions(3, 500, 5)
	assert.Equal(t, 3, opts.MinChars)
	assert.Equal(t, 500*time.Millisecond, opts.DebounceDelay)
	assert.Equal(t, 5, opts.MaxResults)
}
