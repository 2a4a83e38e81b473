// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the feastfit CLI. The serve command
// runs the HTTP API; search, refine, coach, and logs exercise the same
// pipeline and meal log store from the terminal.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/feastfit/internal/meallog"
	"github.com/pdiddy/feastfit/internal/recommend"
	"github.com/pdiddy/feastfit/internal/secrets"
	"github.com/pdiddy/feastfit/internal/upstream"
	"github.com/pdiddy/feastfit/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// cliClientID is the rate-limit identity for terminal commands.
const cliClientID = "cli"

var rootCmd = &cobra.Command{
	Use:   "feastfit",
	Short: "Macro-fit restaurant recommendations",
	Long: `feastfit turns a calorie target, a protein minimum, and a craving into a
ranked list of nearby restaurants, each with a Perfect Fit Score.

Use serve to run the HTTP API. The search, refine, coach, and logs commands
run the same pipeline from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./feastfit.yaml or ~/.config/feastfit/feastfit.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "development logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("feastfit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "feastfit"))
		}
	}

	if err := registerDefaults(types.DefaultConfig()); err != nil {
		fmt.Fprintln(os.Stderr, "warning: registering config defaults:", err)
	}

	viper.SetEnvPrefix("FEASTFIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// registerDefaults walks cfg and registers every leaf as a viper default
// so that FEASTFIT_* environment variables can override nested keys.
func registerDefaults(cfg types.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults("", tree)
	return nil
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig decodes viper settings over the defaults and fills
// credentials from .secrets/ or the environment.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Upstream.APIKey == "" {
		cfg.Upstream.APIKey = secrets.APIKey(loadedSecrets, os.Getenv)
	}
	if cfg.Store.Driver == meallog.DriverPostgres {
		if dsn := loadedSecrets[secrets.DatabaseDSN]; dsn != "" {
			cfg.Store.DSN = dsn
		}
	}
	return cfg, nil
}

// newLogger returns a development console logger when --verbose is set.
// Otherwise the server gets a production JSON logger and terminal
// commands stay quiet.
func newLogger(cmd *cobra.Command, server bool) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	switch {
	case verbose:
		return zap.NewDevelopment()
	case server:
		return zap.NewProduction()
	default:
		return zap.NewNop(), nil
	}
}

// newPipeline wires the upstream client into a recommendation pipeline.
func newPipeline(cfg types.Config, log *zap.Logger) *recommend.Pipeline {
	return recommend.New(upstream.New(cfg.Upstream), nil, cfg, recommend.WithLogger(log))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
