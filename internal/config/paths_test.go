package config

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPathsXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG paths are not used on windows")
	}
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")

	p := DefaultPaths()
	assert.Equal(t, "/custom/config/parley", p.ConfigDir)
	assert.Equal(t, "/custom/data/parley", p.DataDir)
	assert.Equal(t, "/custom/cache/parley", p.CacheDir)
	assert.Equal(t, "/custom/config/parley/config.yaml", p.ConfigFile())
	assert.Equal(t, "/custom/data/parley/parley.db", p.DatabaseFile())
	assert.Equal(t, "/custom/data/parley/logs/parleyd.log", p.LogFile())
}

func TestDefaultPathsFallBackToHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG paths are not used on windows")
	}
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/home/tester")

	p := DefaultPaths()
	assert.Equal(t, filepath.Join("/home/tester", ".config", "parley"), p.ConfigDir)
	assert.Equal(t, filepath.Join("/home/tester", ".local", "share", "parley"), p.DataDir)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := &Paths{
		ConfigDir: filepath.Join(base, "config"),
		DataDir:   filepath.Join(base, "data"),
		CacheDir:  filepath.Join(base, "cache"),
	}
	require.NoError(t, p.EnsureDirectories())
	assert.DirExists(t, p.ConfigDir)
	assert.DirExists(t, p.LogDir())
}
