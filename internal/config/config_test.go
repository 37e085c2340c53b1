package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(newFlagSet(), nil)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, "https://short.url/", cfg.BaseURL)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, 6, cfg.ShortcodeLength)
	assert.Equal(t, "clickData", cfg.LedgerKey)
	assert.Equal(t, 5*time.Second, cfg.PersistTimeout)
	assert.Equal(t, ModeFile, cfg.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "http://sho.rt/")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("PERSIST_TIMEOUT", "2s")

	cfg := Load(newFlagSet(), nil)

	assert.Equal(t, "http://sho.rt/", cfg.BaseURL)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.PersistTimeout)
	assert.Equal(t, ModeRedis, cfg.Mode)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:9000")

	cfg := Load(newFlagSet(), []string{"-a", "127.0.0.1:7000", "-n", "3", "-d", "postgres://u:p@localhost/db"})

	assert.Equal(t, "127.0.0.1:7000", cfg.ServerAddress)
	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, ModeDatabase, cfg.Mode)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base_url": "https://json.example/",
		"batch_size": 7,
		"ledger_key": "clicks",
		"file_storage_path": ""
	}`), 0o644))
	t.Setenv("BATCH_SIZE", "4")

	cfg := Load(newFlagSet(), []string{"-c", path})

	assert.Equal(t, "https://json.example/", cfg.BaseURL)
	assert.Equal(t, "clicks", cfg.LedgerKey)
	// окружение важнее файла
	assert.Equal(t, 4, cfg.BatchSize)
}

func TestLoad_MissingJSONFileKeepsDefaults(t *testing.T) {
	cfg := Load(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "nope.json")})

	assert.Equal(t, "https://short.url/", cfg.BaseURL)
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"database wins", Config{DatabaseDSN: "dsn", RedisAddress: "r", FileStoragePath: "f"}, ModeDatabase},
		{"redis", Config{RedisAddress: "r", FileStoragePath: "f"}, ModeRedis},
		{"file", Config{FileStoragePath: "f"}, ModeFile},
		{"memory", Config{}, ModeMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.resolveMode())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty server address", func(c *Config) { c.ServerAddress = "" }, true},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, true},
		{"zero shortcode length", func(c *Config) { c.ShortcodeLength = 0 }, true},
		{"too long shortcode", func(c *Config) { c.ShortcodeLength = 9 }, true},
		{"max shortcode length", func(c *Config) { c.ShortcodeLength = 8 }, false},
		{"empty ledger key", func(c *Config) { c.LedgerKey = "" }, true},
		{"zero timeout", func(c *Config) { c.PersistTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
