package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, "", cfg.Crawler.UserAgent)
	assert.False(t, cfg.Crawler.KeepSelfLinks)
	assert.Equal(t, 50, cfg.Crawler.MaxIdleConns)
	assert.Equal(t, "output.txt", cfg.Output.Path)
	assert.Equal(t, "table", cfg.Output.Summary)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linksieve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
crawler:
  timeout: 3s
  user_agent: linksieve/test
  keep_self_links: true
output:
  path: results.json
  summary: markdown
`), 0o644))
	t.Setenv("LINKSIEVE_OUTPUT_PATH", "from-env.json")
	t.Setenv("LINKSIEVE_LOGGING_LEVEL", "debug")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Crawler.Timeout)
	assert.Equal(t, "linksieve/test", cfg.Crawler.UserAgent)
	assert.True(t, cfg.Crawler.KeepSelfLinks)
	assert.Equal(t, "from-env.json", cfg.Output.Path)
	assert.Equal(t, "markdown", cfg.Output.Summary)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LINKSIEVE_CRAWLER_TIMEOUT=7s\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("LINKSIEVE_CRAWLER_TIMEOUT") })

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Crawler.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Crawler: CrawlerConfig{Timeout: time.Second},
			Output:  OutputConfig{Path: "out.txt", Summary: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.Crawler.Timeout = 0 }, wantErr: true},
		{name: "negative token limit", mutate: func(c *Config) { c.Crawler.MaxTokenBytes = -1 }, wantErr: true},
		{name: "negative idle conns", mutate: func(c *Config) { c.Crawler.MaxIdleConns = -1 }, wantErr: true},
		{name: "no output path", mutate: func(c *Config) { c.Output.Path = "" }, wantErr: true},
		{name: "unknown summary", mutate: func(c *Config) { c.Output.Summary = "html" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
