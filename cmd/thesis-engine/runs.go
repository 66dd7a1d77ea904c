// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/artifacts"
	"github.com/pdiddy/thesis-engine/internal/ledger"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run ledger",
	Long: `Runs lists the simulation and validation runs recorded in the ledger,
newest first, so successive regeneration attempts can be compared.`,
	RunE: runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the feasibility report of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func openLedger(cmd *cobra.Command) (*ledger.Store, error) {
	bindFlags(cmd.Flags())
	cfg, err := pipelineConfig()
	if err != nil {
		return nil, err
	}
	return ledger.NewStore(cfg.LedgerPath)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	verdict, _ := cmd.Flags().GetString("verdict")
	runs, err := store.List(cmd.Context(), ledger.ListOptions{Verdict: types.Verdict(verdict), Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-16s  %-8s  %-20s  %6s  %6s  %-10s  %s\n",
		"ID", "Created", "Mode", "Study", "N", "Seed", "Verdict", "Concerns")
	fmt.Fprintln(os.Stdout, mutedStyle.Render(strings.Repeat("-", 96)))
	for _, r := range runs {
		studyName := r.Study
		if len(studyName) > 20 {
			studyName = studyName[:17] + "..."
		}
		style, ok := verdictStyles[types.Verdict(r.Verdict)]
		verdictText := fmt.Sprintf("%-10s", r.Verdict)
		if ok {
			verdictText = style.Render(verdictText)
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-16s  %-8s  %-20s  %6d  %6d  %s  %d\n",
			r.ID[:8], r.CreatedAt.Format("2006-01-02 15:04"), r.Mode, studyName,
			r.SampleSize, r.Seed, verdictText, r.Concerns)
	}
	fmt.Fprintf(os.Stdout, "\n%d runs\n", len(runs))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	report, err := run.DecodeReport()
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	os.Stdout.Write(artifacts.FeasibilityMarkdown(run.Study, *report))
	return nil
}

func init() {
	runsCmd.PersistentFlags().String("ledger", "", "run ledger database (default from config)")
	runsCmd.PersistentFlags().Bool("json", false, "print as JSON")
	runsCmd.Flags().Int("limit", 20, "maximum number of runs")
	runsCmd.Flags().String("verdict", "", "only runs with this verdict (proceed, caution, regenerate)")

	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
