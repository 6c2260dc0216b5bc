package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  driver: postgres
  port: 5432
auth:
  access_secret: access
  refresh_secret: refresh
  access_ttl: 10m
game:
  root_gold: 250
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, int64(250), cfg.Game.RootGold)

	// 未配置的项使用默认值
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTTL)
	assert.Equal(t, int64(60), cfg.Game.SellRatePercent)
	assert.Equal(t, int64(10000), cfg.Game.StartingMoney)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  access_secret: from-file
  refresh_secret: refresh
`)
	t.Setenv("RPG_AUTH_ACCESS_SECRET", "from-env")
	t.Setenv("RPG_GAME_ROOT_GOLD", "42")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.AccessSecret)
	assert.Equal(t, int64(42), cfg.Game.RootGold)
}

func TestLoadConfig_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("RPG_AUTH_ACCESS_SECRET", "a")
	t.Setenv("RPG_AUTH_REFRESH_SECRET", "b")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3018, cfg.Server.Port)
}

func TestLoadConfig_RequiresSecrets(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 1\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "mysql"},
			Auth: AuthConfig{
				AccessSecret:  "a",
				RefreshSecret: "b",
				AccessTTL:     time.Minute,
				RefreshTTL:    time.Hour,
			},
			Game: GameConfig{SellRatePercent: 60},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "same secrets", mutate: func(c *Config) { c.Auth.RefreshSecret = "a" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }, wantErr: true},
		{name: "sell rate over 100", mutate: func(c *Config) { c.Game.SellRatePercent = 101 }, wantErr: true},
		{name: "zero access ttl", mutate: func(c *Config) { c.Auth.AccessTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
