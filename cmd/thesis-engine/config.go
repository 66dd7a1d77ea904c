// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/thesis-engine/pkg/types"
)

// setDefaults registers every pipeline key with viper so config files,
// THESIS_ENGINE_* variables and flags can all override it.
func setDefaults() {
	d := types.DefaultPipelineConfig()
	viper.SetDefault("simulation.seed", d.Simulation.Seed)
	viper.SetDefault("simulation.sample_size", d.Simulation.SampleSize)
	viper.SetDefault("simulation.noise_scale", d.Simulation.NoiseScale)
	viper.SetDefault("simulation.within_instrument_r", d.Simulation.WithinInstrumentR)
	viper.SetDefault("simulation.psd_policy", string(d.Simulation.PSDPolicy))
	viper.SetDefault("noise.careless_rate", d.Noise.CarelessRate)
	viper.SetDefault("noise.missing_rate", d.Noise.MissingRate)
	viper.SetDefault("scoring.min_items", d.Scoring.MinItems)
	viper.SetDefault("validation.alpha", d.Validation.Alpha)
	viper.SetDefault("validation.target_power", d.Validation.TargetPower)
	viper.SetDefault("validation.floor_ceiling_share", d.Validation.FloorCeilingShare)
	viper.SetDefault("validation.severe_floor_ceiling_share", d.Validation.SevereFloorCeilingShare)
	viper.SetDefault("output_dir", d.OutputDir)
	viper.SetDefault("ledger_path", d.LedgerPath)
}

// flagKeys maps command flags onto config keys.
var flagKeys = map[string]string{
	"seed":        "simulation.seed",
	"sample-size": "simulation.sample_size",
	"noise":       "simulation.noise_scale",
	"within-r":    "simulation.within_instrument_r",
	"psd-policy":  "simulation.psd_policy",
	"careless":    "noise.careless_rate",
	"missing":     "noise.missing_rate",
	"min-items":   "scoring.min_items",
	"out":         "output_dir",
	"ledger":      "ledger_path",
}

// bindFlags binds the flags of fs that appear in flagKeys. Only flags the
// user set take precedence over the config file.
func bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	})
}

// pipelineConfig resolves the effective configuration.
func pipelineConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

// progressWriter is where pipeline progress goes: stdout, or stderr when
// stdout carries JSON.
func progressWriter(fs *pflag.FlagSet) io.Writer {
	if jsonOutput, _ := fs.GetBool("json"); jsonOutput {
		return os.Stderr
	}
	return os.Stdout
}
