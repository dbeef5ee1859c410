// Command paiban-cli is the operator-facing front end for the roster
// engine: solve/validate run the pipeline directly against a local
// request file, job-status/job-result talk to a running paiban-server
// over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "paiban-cli",
	Short: "Roster engine command line client",
	Long: `paiban-cli drives the roster engine from a terminal: run a solve or
a feasibility check against a local request file, or check on a job
submitted to a running server.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:7012", "paiban-server base URL (job-status/job-result only)")
	rootCmd.AddCommand(solveCmd, validateCmd, jobStatusCmd, jobResultCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
