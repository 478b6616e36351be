package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/store"
)

func newViper(t *testing.T, home string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	v.Set(KeyHome, home)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Load(newViper(t, home))
	require.NoError(t, err)
	require.Equal(t, store.DriverSQLite, cfg.DBDriver)
	require.Equal(t, filepath.Join(home, "data", "dice.db"), cfg.DBDSN)
	require.Equal(t, rules.EndRuleDisabled, cfg.MatchEndRule)
	require.Equal(t, "socket", cfg.ABCITransport)
}

func TestLoad_ConfigFileAndEnv(t *testing.T) {
	home := t.TempDir()
	toml := []byte(`
chain_id = "dice-test"

[game]
match_end_rule = "proper-round-limit"
nft_minter = "0xminter"

[log]
level = "debug"
format = "json"
`)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), toml, 0o644))
	t.Setenv("DICE_DB_SEED_CACHE_SIZE", "32")

	v := newViper(t, home)
	require.NoError(t, ReadConfigFile(v))
	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, "dice-test", cfg.ChainID)
	require.Equal(t, rules.EndRuleProperRoundLimit, cfg.MatchEndRule)
	require.Equal(t, "0xminter", cfg.NftMinter)
	require.Equal(t, LogFormatJSON, cfg.LogFormat)
	require.Equal(t, 32, cfg.SeedCacheSize)
}

func TestReadConfigFile_Missing(t *testing.T) {
	require.NoError(t, ReadConfigFile(newViper(t, t.TempDir())))
}

func TestValidate(t *testing.T) {
	base := DefaultConfig()
	base.DBDSN = "x.db"
	require.NoError(t, base.Validate())

	cases := map[string]func(*Config){
		"driver":    func(c *Config) { c.DBDriver = "mysql" },
		"dsn":       func(c *Config) { c.DBDriver = store.DriverPostgres; c.DBDSN = "" },
		"transport": func(c *Config) { c.ABCITransport = "http" },
		"level":     func(c *Config) { c.LogLevel = "loud" },
		"format":    func(c *Config) { c.LogFormat = "xml" },
		"chain":     func(c *Config) { c.ChainID = " " },
		"cache":     func(c *Config) { c.SeedCacheSize = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestLoad_BadEndRule(t *testing.T) {
	v := newViper(t, t.TempDir())
	v.Set(KeyMatchEndRule, "sudden-death")
	_, err := Load(v)
	require.ErrorContains(t, err, "unknown match end rule")
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFormat = LogFormatJSON
	var buf bytes.Buffer
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("DISCARD", "reason", "lobby full")
	require.Contains(t, buf.String(), `"reason":"lobby full"`)

	buf.Reset()
	logger.Debug("hidden")
	require.Empty(t, buf.String())
}
