package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/paiban/roster/pkg/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <request.json>",
	Short: "Check a request file against the structural and feasibility rules, without solving",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, req, err := loadRequest(args[0])
		if err != nil {
			return err
		}

		res := validator.Validate(req)

		for _, w := range res.Warnings {
			color.Yellow("WARNING [%s] %s: %s", w.Code, w.Field, w.Message)
		}
		for _, e := range res.Errors {
			color.Red("ERROR [%s] %s: %s", e.Code, e.Field, e.Message)
		}

		if res.IsValid {
			color.Green("request is valid (%d warnings)", len(res.Warnings))
			return nil
		}

		return fmt.Errorf("request failed validation with %d error(s)", len(res.Errors))
	},
}
