// Package main contains Mage build targets for thesis-engine developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"inputs",
	"outputs/data",
	"outputs/feasibility",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "thesis-engine"
	cmdPkg  = "./cmd/thesis-engine"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath(), cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", binPath())
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Simulate builds the CLI and runs the pipeline on inputs/study.yaml.
// SIM_ARGS passes extra flags, e.g. SIM_ARGS="-n 250 --seed 7".
func Simulate() error {
	mg.Deps(Build)
	args := append([]string{"simulate"}, strings.Fields(os.Getenv("SIM_ARGS"))...)
	return sh.RunV(binPath(), args...)
}

// Validate builds the CLI and validates the responses file named by RESPONSES.
func Validate() error {
	mg.Deps(Build)
	responses := os.Getenv("RESPONSES")
	if responses == "" {
		return fmt.Errorf("set RESPONSES to a raw responses CSV")
	}
	return sh.RunV(binPath(), "validate", "--responses", responses)
}

// Runs lists the recorded runs.
func Runs() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "runs")
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords("docs")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (documentation):           %d\n", docWords)
	return nil
}

// countGoLines counts non-blank lines in production and test Go files,
// skipping vendored reference material under underscore directories.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in .md and .yaml files under root.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".md", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
