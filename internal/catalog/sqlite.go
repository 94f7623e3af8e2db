package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSource loads the catalog from the platform's node database export.
// The node_types table stores list-valued columns as JSON text.
type SQLiteSource struct {
	Path string
}

// Load opens the database read-only and materializes every node type entry.
func (s SQLiteSource) Load(ctx context.Context) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.Path))
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", s.Path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT canonical_type, aliases, default_version, valid_versions,
		       outputs, description
		FROM node_types
		ORDER BY canonical_type`)
	if err != nil {
		return nil, fmt.Errorf("catalog: query node_types: %w", err)
	}
	defer rows.Close()

	var entries []NodeTypeSchema
	for rows.Next() {
		var (
			entry        NodeTypeSchema
			aliasesJSON  string
			versionsJSON string
			description  sql.NullString
		)
		if err := rows.Scan(&entry.CanonicalType, &aliasesJSON,
			&entry.DefaultVersion, &versionsJSON, &entry.Outputs, &description); err != nil {
			return nil, fmt.Errorf("catalog: scan node_types row: %w", err)
		}
		if aliasesJSON != "" {
			if err := json.Unmarshal([]byte(aliasesJSON), &entry.Aliases); err != nil {
				return nil, fmt.Errorf("catalog: %s: bad aliases column: %w", entry.CanonicalType, err)
			}
		}
		if err := json.Unmarshal([]byte(versionsJSON), &entry.ValidVersions); err != nil {
			return nil, fmt.Errorf("catalog: %s: bad valid_versions column: %w", entry.CanonicalType, err)
		}
		entry.Description = description.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate node_types: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog: node database %s is empty", s.Path)
	}
	return New(entries)
}

// WriteSQLite exports a catalog document into a node database, creating the
// node_types table if needed. Used by the seed command.
func WriteSQLite(ctx context.Context, path string, entries []NodeTypeSchema) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS node_types (
			canonical_type TEXT PRIMARY KEY,
			aliases TEXT NOT NULL DEFAULT '[]',
			default_version REAL NOT NULL,
			valid_versions TEXT NOT NULL,
			outputs INTEGER NOT NULL DEFAULT 0,
			description TEXT
		)`); err != nil {
		return fmt.Errorf("catalog: create node_types: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, entry := range entries {
		aliases, err := json.Marshal(entry.Aliases)
		if err != nil {
			return err
		}
		versions, err := json.Marshal(entry.ValidVersions)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO node_types
				(canonical_type, aliases, default_version, valid_versions, outputs, description)
			VALUES (?, ?, ?, ?, ?, ?)`,
			entry.CanonicalType, string(aliases), entry.DefaultVersion,
			string(versions), entry.Outputs, entry.Description); err != nil {
			return fmt.Errorf("catalog: insert %s: %w", entry.CanonicalType, err)
		}
	}
	return tx.Commit()
}

// ParseDocument exposes the on-disk JSON format for tooling (seed command).
func ParseDocument(data []byte) ([]NodeTypeSchema, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return doc.NodeTypes, nil
}

// EmbeddedEntries returns the seed catalog entries compiled into the binary.
func EmbeddedEntries() ([]NodeTypeSchema, error) {
	return ParseDocument(embeddedNodes)
}
