package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aljosa/paima-cards/internal/app"
	"github.com/aljosa/paima-cards/internal/config"
)

const BinaryName = "dicechaind"

// NewRootCmd creates the root command. Settings resolve flag > DICE_ env >
// <home>/config.toml > default.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)

	rootCmd := &cobra.Command{
		Use:           BinaryName,
		Short:         "Dice card game state machine (ABCI)",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return config.ReadConfigFile(v)
		},
	}

	d := config.DefaultConfig()
	rootCmd.PersistentFlags().String(config.KeyHome, d.Home, "node home directory (config.toml, sqlite data)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, d.LogLevel, "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(config.KeyLogFormat, d.LogFormat, "log format (plain|json)")

	rootCmd.AddCommand(startCmd(v), configCmd(v))
	return rootCmd
}

func startCmd(v *viper.Viper) *cobra.Command {
	d := config.DefaultConfig()
	c := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			defer func() { _ = a.Close() }()

			srv, err := server.NewServer(cfg.ABCIAddr, cfg.ABCITransport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			srv.SetLogger(cmtLogger{logger})
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()

			logger.Info("abci server listening", "addr", cfg.ABCIAddr, "transport", cfg.ABCITransport,
				"db", cfg.DBDriver, "match_end_rule", cfg.MatchEndRule.String())
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
	c.Flags().String(config.KeyChainID, d.ChainID, "chain id mixed into block seeds before InitChain")
	c.Flags().String(config.KeyABCIAddr, d.ABCIAddr, "ABCI listen address")
	c.Flags().String(config.KeyABCITransport, d.ABCITransport, "ABCI transport (socket|grpc)")
	c.Flags().String(config.KeyDBDriver, d.DBDriver, "database driver (sqlite|postgres)")
	c.Flags().String(config.KeyDBDSN, "", "database DSN (default <home>/data/dice.db for sqlite)")
	c.Flags().Int(config.KeySeedCacheSize, d.SeedCacheSize, "block seeds kept in memory")
	c.Flags().String(config.KeyMatchEndRule, d.MatchEndRule.String(), "match end rule (disabled|proper-round-limit)")
	c.Flags().String(config.KeyNftMinter, "", "only sender allowed to record NFT mints (empty: anyone)")
	return c
}

// configCmd prints the resolved configuration.
func configCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s = %q\n", config.KeyHome, cfg.Home)
			fmt.Fprintf(out, "%s = %q\n", config.KeyChainID, cfg.ChainID)
			fmt.Fprintf(out, "%s = %q\n", config.KeyABCIAddr, cfg.ABCIAddr)
			fmt.Fprintf(out, "%s = %q\n", config.KeyABCITransport, cfg.ABCITransport)
			fmt.Fprintf(out, "%s = %q\n", config.KeyDBDriver, cfg.DBDriver)
			fmt.Fprintf(out, "%s = %q\n", config.KeyDBDSN, cfg.DBDSN)
			fmt.Fprintf(out, "%s = %d\n", config.KeySeedCacheSize, cfg.SeedCacheSize)
			fmt.Fprintf(out, "%s = %q\n", config.KeyLogLevel, cfg.LogLevel)
			fmt.Fprintf(out, "%s = %q\n", config.KeyLogFormat, cfg.LogFormat)
			fmt.Fprintf(out, "%s = %q\n", config.KeyMatchEndRule, cfg.MatchEndRule.String())
			fmt.Fprintf(out, "%s = %q\n", config.KeyNftMinter, cfg.NftMinter)
			return nil
		},
	}
}
