package main

import (
	"github.com/spf13/cobra"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/internal/compliance"
	"flowguard-mcp/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "flowguard",
	Short:         "Workflow compliance broker between AI agents and the automation platform",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(seedCmd)
}

// catalogSource picks the configured catalog backing store. A node database
// export wins over a JSON document; with neither, the embedded seed is used.
func catalogSource(cfg *config.Config) catalog.Source {
	if cfg.Catalog.SQLitePath != "" {
		return catalog.SQLiteSource{Path: cfg.Catalog.SQLitePath}
	}
	if cfg.Catalog.Path != "" {
		return catalog.FileSource{Path: cfg.Catalog.Path}
	}
	return catalog.EmbeddedSource{}
}

func complianceOptions(cfg *config.Config) compliance.Options {
	return compliance.Options{
		ServerManagedKeys: cfg.Compliance.ServerManagedKeys,
		ContestedKeys:     cfg.Compliance.ContestedKeys,
		PositionPolicy:    compliance.PositionPolicy(cfg.Compliance.PositionPolicy),
	}
}
