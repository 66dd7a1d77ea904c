// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/thesis-engine/internal/artifacts"
	"github.com/pdiddy/thesis-engine/internal/study"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

const configFile = "thesis-engine.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the project layout with a sample study and config",
	Long: `Init creates inputs/ and the output directories, writes a sample study
to inputs/study.yaml and a default thesis-engine.yaml. Existing files are
left alone.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := types.DefaultPipelineConfig()
	dirs := append([]string{"inputs"}, artifacts.Dirs(cfg.OutputDir)...)
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}

	studyPath := filepath.Join("inputs", study.DefaultFile)
	if err := study.WriteSample(studyPath); err != nil {
		fmt.Printf("   skipped %s: %v\n", studyPath, err)
	} else {
		fmt.Println("  ", studyPath)
	}

	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("   skipped %s: already exists\n", configFile)
	} else {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		if err := os.WriteFile(configFile, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", configFile, err)
		}
		fmt.Println("  ", configFile)
	}

	fmt.Println("Project initialized.")
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
