package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("BINSTALL_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://api.github.com/", cfg.GitHub.APIURL)
	assert.NotEmpty(t, cfg.Paths.CacheFile)
	assert.NotEmpty(t, cfg.Paths.LogFile)
	assert.NotEmpty(t, cfg.Platform.OS)
	assert.NotEmpty(t, cfg.Platform.Arch)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 600, cfg.Install.TimeoutSeconds)
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
bin_dir = "/opt/tools/bin"

[platform]
os = ["linux"]
arch = ["x86_64", "amd64"]
libc = ["musl"]

[install]
max_download_bytes = 1024
confirm_overwrite = false

[logging]
level = "debug"
color = "never"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/tools/bin", cfg.Paths.BinDir)
	assert.Equal(t, []string{"x86_64", "amd64"}, cfg.Platform.Arch)
	assert.Equal(t, []string{"musl"}, cfg.Platform.Libc)
	assert.Equal(t, int64(1024), cfg.Install.MaxDownloadBytes)
	assert.False(t, cfg.Install.ConfirmOverwrite)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "never", cfg.Logging.Color)
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadFrom_Env(t *testing.T) {
	t.Setenv("BINSTALL_GITHUB_TOKEN", "from-env")
	t.Setenv("BINSTALL_LOGGING_LEVEL", "warn")

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFrom_GitHubTokenFallback(t *testing.T) {
	t.Setenv("BINSTALL_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", " gh-token ")

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, "gh-token", cfg.GitHub.Token)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Install: InstallConfig{MaxDownloadBytes: 1, MaxExtractBytes: 1, TimeoutSeconds: 1},
			Logging: LoggingConfig{Color: "auto"},
		}
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Install.MaxExtractBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Logging.Color = "rainbow"
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()
	t.Setenv("BINSTALL_TEST_DIR", "/srv/x")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty path", input: "", want: ""},
		{name: "absolute path", input: "/usr/local/bin", want: "/usr/local/bin"},
		{name: "home expansion", input: "~/test", want: filepath.Join(homeDir, "test")},
		{name: "tilde in the middle", input: "/a/~b", want: "/a/~b"},
		{name: "env expansion", input: "$BINSTALL_TEST_DIR/bin", want: "/srv/x/bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
