package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster"
)

var (
	solveOutputPath string
	solveNoOptimize bool
	solveAPIVersion int
)

var solveCmd = &cobra.Command{
	Use:   "solve <request.json>",
	Short: "Run the full solve pipeline against a local request file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, req, err := loadRequest(args[0])
		if err != nil {
			return err
		}

		cfg := roster.DefaultConfig()
		cfg.EnableOptimizer = !solveNoOptimize
		cfg.Output.APIVersion = solveAPIVersion

		started := time.Now()
		outcome, err := roster.Solve(context.Background(), req, cfg, raw)
		if err != nil {
			return fmt.Errorf("solve failed: %w", err)
		}

		printSolveSummary(outcome, time.Since(started))

		if solveOutputPath != "" {
			encoded, err := json.MarshalIndent(outcome.Output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode output: %w", err)
			}
			if err := os.WriteFile(solveOutputPath, encoded, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Printf("\nFull output document written to %s\n", solveOutputPath)
		}

		return nil
	},
}

func init() {
	solveCmd.Flags().StringVarP(&solveOutputPath, "out", "o", "", "write the full output document to this file")
	solveCmd.Flags().BoolVar(&solveNoOptimize, "no-optimize", false, "skip the local-search optimizer pass")
	solveCmd.Flags().IntVar(&solveAPIVersion, "api-version", 1, "output schema version (2 enables daily coverage)")
}

func loadRequest(path string) (map[string]interface{}, *model.RosterRequest, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, fmt.Errorf("malformed JSON in %s: %w", path, err)
	}

	// RosterRequest carries no JSON tags, so the same marshal/unmarshal
	// round trip the HTTP handlers use maps the raw map's keys onto the
	// exported struct fields.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, err
	}
	var req model.RosterRequest
	if err := json.Unmarshal(encoded, &req); err != nil {
		return nil, nil, fmt.Errorf("request does not match the roster request schema: %w", err)
	}

	return raw, &req, nil
}

func printSolveSummary(outcome *roster.Outcome, elapsed time.Duration) {
	out := outcome.Output

	fmt.Printf("Run %s — %s (%.2fs)\n", out.SolverRun.RunID, out.SolverRun.Status, elapsed.Seconds())
	fmt.Printf("Quality: %s   Score: overall=%.1f hard=%.1f soft=%.1f\n",
		out.SolutionQuality.QualityGrade, out.Score.Overall, out.Score.Hard, out.Score.Soft)

	if out.SolverRun.Status != "FEASIBLE" {
		color.Red("solve completed with unresolved hard constraint violations")
	}

	for id, warning := range outcome.ICPMPWarnings {
		color.Yellow("requirement %s: %s", id, warning)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Employee", "Assigned", "Off", "Unassigned", "Not used"})
	table.SetBorder(false)

	byEmployee := map[string]*struct{ assigned, off, unassigned, notUsed int }{}
	for _, entry := range out.EmployeeRoster {
		counts := &struct{ assigned, off, unassigned, notUsed int }{}
		for _, day := range entry.DailyStatus {
			switch day.Status {
			case model.StatusAssigned:
				counts.assigned++
			case model.StatusOffDay:
				counts.off++
			case model.StatusUnassigned:
				counts.unassigned++
			default:
				counts.notUsed++
			}
		}
		byEmployee[entry.EmployeeID] = counts
	}
	for empID, counts := range byEmployee {
		table.Append([]string{
			empID,
			fmt.Sprintf("%d", counts.assigned),
			fmt.Sprintf("%d", counts.off),
			fmt.Sprintf("%d", counts.unassigned),
			fmt.Sprintf("%d", counts.notUsed),
		})
	}
	table.Render()

	fmt.Printf("\nRoster totals: assigned=%d off=%d unassigned=%d notUsed=%d\n",
		out.RosterSummary.TotalAssigned, out.RosterSummary.TotalOffDay,
		out.RosterSummary.TotalUnassigned, out.RosterSummary.TotalNotUsed)

	if len(out.ScoreBreakdown) > 0 {
		fmt.Println("\nConstraint violations:")
		for _, b := range out.ScoreBreakdown {
			color.Yellow("  %-20s penalty=%-4d count=%d", b.ConstraintType, b.Penalty, b.ViolationCount)
		}
	}
}
