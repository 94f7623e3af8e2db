package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowguard-mcp/internal/catalog"
	"flowguard-mcp/internal/config"
	"flowguard-mcp/internal/logging"
	"flowguard-mcp/internal/repository"
)

var seedCatalogFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Prepare backing stores: audit schema and node database",
	Long: "Creates the validation_runs table when the audit trail is enabled " +
		"and exports the catalog into the configured node database. The " +
		"catalog comes from --catalog-file when given, otherwise from the " +
		"embedded seed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.NewLogger()

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("configuration loading failed: %w", err)
		}

		if cfg.DB.Enable {
			dbPool, err := initDatabase(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("database initialization failed: %w", err)
			}
			defer dbPool.Close()

			if err := repository.NewPostgresAuditStore(dbPool).EnsureSchema(ctx); err != nil {
				return fmt.Errorf("audit schema setup failed: %w", err)
			}
			logger.Info("Audit schema ready")
		}

		if cfg.Catalog.SQLitePath == "" {
			logger.Info("No node database configured, nothing to export")
			return nil
		}

		entries, err := seedEntries()
		if err != nil {
			return err
		}
		if err := catalog.WriteSQLite(ctx, cfg.Catalog.SQLitePath, entries); err != nil {
			return err
		}
		logger.Info("Node database seeded", "path", cfg.Catalog.SQLitePath, "node_types", len(entries))
		return nil
	},
}

func seedEntries() ([]catalog.NodeTypeSchema, error) {
	if seedCatalogFile == "" {
		return catalog.EmbeddedEntries()
	}
	data, err := os.ReadFile(seedCatalogFile)
	if err != nil {
		return nil, err
	}
	return catalog.ParseDocument(data)
}

func init() {
	seedCmd.Flags().StringVar(&seedCatalogFile, "catalog-file", "", "catalog JSON document to export")
}
