// Package config loads node settings from flags, DICE_ environment variables
// and an optional <home>/config.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/aljosa/paima-cards/internal/rules"
	"github.com/aljosa/paima-cards/internal/store"
)

const (
	EnvPrefix = "DICE"

	KeyHome          = "home"
	KeyChainID       = "chain_id"
	KeyABCIAddr      = "abci.addr"
	KeyABCITransport = "abci.transport"
	KeyDBDriver      = "db.driver"
	KeyDBDSN         = "db.dsn"
	KeySeedCacheSize = "db.seed_cache_size"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyMatchEndRule  = "game.match_end_rule"
	KeyNftMinter     = "game.nft_minter"

	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

type Config struct {
	Home    string
	ChainID string

	ABCIAddr      string
	ABCITransport string

	DBDriver      string
	DBDSN         string
	SeedCacheSize int

	LogLevel  string
	LogFormat string

	MatchEndRule rules.EndRule
	NftMinter    string
}

func DefaultConfig() Config {
	return Config{
		Home:          ".dice",
		ChainID:       "dice-local",
		ABCIAddr:      "tcp://127.0.0.1:26658",
		ABCITransport: "socket",
		DBDriver:      store.DriverSQLite,
		SeedCacheSize: store.DefaultSeedCacheSize,
		LogLevel:      "info",
		LogFormat:     LogFormatPlain,
		MatchEndRule:  rules.EndRuleDisabled,
	}
}

// SetDefaults registers the defaults on v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(KeyHome, d.Home)
	v.SetDefault(KeyChainID, d.ChainID)
	v.SetDefault(KeyABCIAddr, d.ABCIAddr)
	v.SetDefault(KeyABCITransport, d.ABCITransport)
	v.SetDefault(KeyDBDriver, d.DBDriver)
	v.SetDefault(KeyDBDSN, "")
	v.SetDefault(KeySeedCacheSize, d.SeedCacheSize)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyLogFormat, d.LogFormat)
	v.SetDefault(KeyMatchEndRule, d.MatchEndRule.String())
	v.SetDefault(KeyNftMinter, "")
}

// BindEnv makes every key readable from DICE_<KEY>, dots becoming underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadConfigFile merges <home>/config.toml into v when the file exists.
func ReadConfigFile(v *viper.Viper) error {
	path := filepath.Join(v.GetString(KeyHome), "config.toml")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	rule, err := rules.ParseEndRule(v.GetString(KeyMatchEndRule))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Home:          v.GetString(KeyHome),
		ChainID:       v.GetString(KeyChainID),
		ABCIAddr:      v.GetString(KeyABCIAddr),
		ABCITransport: v.GetString(KeyABCITransport),
		DBDriver:      v.GetString(KeyDBDriver),
		DBDSN:         v.GetString(KeyDBDSN),
		SeedCacheSize: v.GetInt(KeySeedCacheSize),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
		MatchEndRule:  rule,
		NftMinter:     v.GetString(KeyNftMinter),
	}
	if cfg.DBDSN == "" && cfg.DBDriver == store.DriverSQLite {
		cfg.DBDSN = filepath.Join(cfg.Home, "data", "dice.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ChainID) == "" {
		return fmt.Errorf("%s must be set", KeyChainID)
	}
	if c.ABCIAddr == "" {
		return fmt.Errorf("%s must be set", KeyABCIAddr)
	}
	switch c.ABCITransport {
	case "socket", "grpc":
	default:
		return fmt.Errorf("%s: unknown transport %q (socket|grpc)", KeyABCITransport, c.ABCITransport)
	}
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("%s: unknown driver %q (sqlite|postgres)", KeyDBDriver, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%s must be set for %s", KeyDBDSN, c.DBDriver)
	}
	if c.SeedCacheSize < 0 {
		return fmt.Errorf("%s must not be negative", KeySeedCacheSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	switch c.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return fmt.Errorf("%s: unknown format %q (plain|json)", KeyLogFormat, c.LogFormat)
	}
	return nil
}

// NewLogger builds the node logger writing to w.
func (c Config) NewLogger(w io.Writer) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := []log.Option{log.LevelOption(lvl)}
	if c.LogFormat == LogFormatJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(w, opts...), nil
}
