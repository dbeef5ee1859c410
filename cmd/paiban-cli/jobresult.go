package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paiban/roster/pkg/output"
	"github.com/paiban/roster/pkg/roster"
)

var jobResultOutputPath string

var jobResultCmd = &cobra.Command{
	Use:   "job-result <jobId>",
	Short: "Fetch a completed job's output document from a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var doc output.Output
		url := fmt.Sprintf("%s/api/v1/jobs/%s/result", serverURL, args[0])
		if err := getJSON(url, &doc); err != nil {
			return err
		}

		printSolveSummary(&roster.Outcome{Output: &doc}, 0)

		if jobResultOutputPath != "" {
			encoded, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			if err := os.WriteFile(jobResultOutputPath, encoded, 0o644); err != nil {
				return fmt.Errorf("failed to write result file: %w", err)
			}
			fmt.Printf("\nFull output document written to %s\n", jobResultOutputPath)
		}

		return nil
	},
}

func init() {
	jobResultCmd.Flags().StringVarP(&jobResultOutputPath, "out", "o", "", "write the full output document to this file")
}
