// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the thesis-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/thesis-engine/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the thesis-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "thesis-engine",
	Short: "Simulate and validate survey data for quantitative research",
	Long: `thesis-engine generates synthetic Likert-scale survey data that matches a
study's target correlations, reliabilities and distributions, then checks
whether the data supports the planned analysis.

The pipeline runs correlation structure, multivariate sampling, item
expansion, noise injection, scoring and the validation gate. The gate ends
in a proceed, caution or regenerate verdict.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(viper.GetBool("verbose"), viper.GetBool("log_json"), os.Stderr)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./thesis-engine.yaml or ~/.config/thesis-engine/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))

	setDefaults()
}

func initConfig() {
	// A .env file in the working directory may carry THESIS_ENGINE_* overrides.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("thesis-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "thesis-engine"))
		}
	}

	viper.SetEnvPrefix("THESIS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
