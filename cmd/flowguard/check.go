package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/internal/compliance"
	"flowguard-mcp/internal/config"
)

var checkCmd = &cobra.Command{
	Use:   "check <workflow.json>",
	Short: "Validate a workflow file without modifying it",
	Long: "Runs the compliance pipeline in check mode over a workflow JSON file " +
		"and prints the report. Exits non-zero when the workflow has errors.",
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

		report := pipeline.CheckJSON(raw)
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if !report.Valid {
			return fmt.Errorf("workflow has %d error(s)", report.Summary.Errors)
		}
		return nil
	},
}

// offlinePipeline builds a pipeline from configuration alone, no server and
// no database involved.
func offlinePipeline(cmd *cobra.Command) (*compliance.Pipeline, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("configuration loading failed: %w", err)
	}
	provider := catalog.NewProvider(catalogSource(cfg))
	if err := provider.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("catalog load failed: %w", err)
	}
	cat, err := provider.Current()
	if err != nil {
		return nil, err
	}
	return compliance.New(cat, complianceOptions(cfg)), nil
}
