package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var jobStatusCmd = &cobra.Command{
	Use:   "job-status <jobId>",
	Short: "Poll a submitted job's status on a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var status struct {
			JobID           string     `json:"jobId"`
			Status          string     `json:"status"`
			CreatedAt       time.Time  `json:"createdAt"`
			StartedAt       *time.Time `json:"startedAt,omitempty"`
			CompletedAt     *time.Time `json:"completedAt,omitempty"`
			ErrorMessage    string     `json:"errorMessage,omitempty"`
			ResultAvailable bool       `json:"resultAvailable"`
			ResultSizeBytes int        `json:"resultSizeBytes,omitempty"`
		}

		if err := getJSON(fmt.Sprintf("%s/api/v1/jobs/%s", serverURL, args[0]), &status); err != nil {
			return err
		}

		fmt.Printf("job %s: %s\n", status.JobID, status.Status)
		fmt.Printf("created:   %s\n", status.CreatedAt.Format(time.RFC3339))
		if status.StartedAt != nil {
			fmt.Printf("started:   %s\n", status.StartedAt.Format(time.RFC3339))
		}
		if status.CompletedAt != nil {
			fmt.Printf("completed: %s\n", status.CompletedAt.Format(time.RFC3339))
		}
		if status.ErrorMessage != "" {
			color.Red("error: %s", status.ErrorMessage)
		}
		if status.ResultAvailable {
			color.Green("result ready (%d bytes) — fetch with: paiban-cli job-result %s", status.ResultSizeBytes, args[0])
		}

		return nil
	},
}

// getJSON fetches url and decodes its body into dst, surfacing the
// engine's structured error envelope on a non-2xx response.
func getJSON(url string, dst interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var appErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(body, &appErr); jsonErr == nil && appErr.Code != "" {
			return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
		}
		return fmt.Errorf("server returned %s: %s", resp.Status, string(body))
	}

	return json.Unmarshal(body, dst)
}
