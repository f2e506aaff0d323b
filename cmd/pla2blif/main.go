// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pla2blif CLI, which converts PLA
// truth tables into BLIF netlists.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/pla2blif/internal/convert"
	"github.com/pdiddy/pla2blif/internal/watch"
	"github.com/pdiddy/pla2blif/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger carries diagnostics for the running command. It is replaced in
// PersistentPreRunE once the log level is known.
var logger = zap.NewNop()

// rootCmd is the base command for the pla2blif CLI.
var rootCmd = &cobra.Command{
	Use:   "pla2blif",
	Short: "Convert PLA truth tables to BLIF netlists",
	Long: `pla2blif converts circuits described as PLA sum-of-products truth tables
into BLIF netlists. Variables are renamed to canonical positional names
(i0, i1, ... and o0, o1, ...) and every output gets its own .names block
listing each asserted minterm literally, without don't-care compression.

By default every .pla file in ./pla is converted into ./blif, and each run
is recorded in a conversion index under the output directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pla2blif.yaml or ~/.config/pla2blif/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: debug, info, warn, or error")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("convert.source_dir", "pla")
	viper.SetDefault("convert.dest_dir", "blif")
	viper.SetDefault("convert.extension", ".pla")
	viper.SetDefault("convert.comment", convert.DefaultComment)
	viper.SetDefault("convert.jobs", 1)
	viper.SetDefault("index.enabled", true)
	viper.SetDefault("watch.debounce", watch.DefaultDebounce)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pla2blif")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pla2blif"))
		}
	}

	viper.SetEnvPrefix("PLA2BLIF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds the named flags of one command to config keys. Commands
// bind at run time because several of them expose the same keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig returns the merged configuration from defaults, config file,
// environment and bound flags.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
