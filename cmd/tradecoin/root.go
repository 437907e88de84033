package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/tradecoin/internal/config"
	"github.com/aretw0/tradecoin/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradecoin",
	Short: "Tradecoin is a custody ledger for physical commodities",
	Long: `Tradecoin tracks raw commodity claims, their escrowed sale and the custody of the
commodities and compositions minted from them.

Configuration is read from --config (YAML) and TRADECOIN_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("admin", "", "Admin address granted on a fresh ledger")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// setup loads the configuration and applies the persistent flags over it.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if admin, _ := cmd.Flags().GetString("admin"); admin != "" {
		cfg.Admin = admin
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
