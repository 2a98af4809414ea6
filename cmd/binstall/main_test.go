package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantmind-br/binstall/internal/core"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("BINSTALL_CONFIG", "")
	t.Setenv("BINSTALL_LOGGING_COLOR", "never")
	t.Chdir(dir)
}

func TestRunVersion(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"version"}, &stdout, &stderr)

	assert.Equal(t, core.ExitSuccess, code)
	assert.Equal(t, "binstall version "+version+"\n", stdout.String())
}

func TestRunMissingInstallFlag(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, core.ExitGeneral, code)
	assert.Contains(t, stderr.String(), "install")
}

func TestRunInvalidName(t *testing.T) {
	isolate(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-i", "tool", "-n", "a/b"}, &stdout, &stderr)

	assert.Equal(t, core.ExitInvalidArgs, code)
	assert.Contains(t, stderr.String(), "invalid input")
}

func TestRunBadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[paths\n"), 0644))
	t.Setenv("BINSTALL_CONFIG", path)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"version"}, &stdout, &stderr)

	assert.Equal(t, core.ExitGeneral, code)
	assert.Contains(t, stderr.String(), "Error loading config")
}
