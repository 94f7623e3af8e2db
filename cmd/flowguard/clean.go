package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cleanOutputPath string

var cleanCmd = &cobra.Command{
	Use:   "clean <workflow.json>",
	Short: "Sanitize and normalize a workflow file",
	Long: "Runs the compliance pipeline in clean mode over a workflow JSON file. " +
		"Prints the cleaned graph, the applied fixes and the report; use " +
		"--output to write the cleaned graph back to disk. Exits non-zero " +
		"when errors remain after cleaning.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := offlinePipeline(cmd)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		result := pipeline.CleanJSON(raw)
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if cleanOutputPath != "" && result.Cleaned != nil {
			cleaned, err := json.MarshalIndent(result.Cleaned, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(cleanOutputPath, append(cleaned, '\n'), 0o644); err != nil {
				return err
			}
		}

		if !result.Report.Valid {
			return fmt.Errorf("workflow still has %d error(s) after cleaning", result.Report.Summary.Errors)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "write the cleaned workflow to this file")
}
