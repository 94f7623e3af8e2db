package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed data/nodes.json
var embeddedNodes []byte

// catalogDocument is the on-disk catalog format.
type catalogDocument struct {
	NodeTypes []NodeTypeSchema `json:"nodeTypes"`
}

// EmbeddedSource loads the catalog seed compiled into the binary.
type EmbeddedSource struct{}

// Load parses the embedded seed catalog.
func (EmbeddedSource) Load(ctx context.Context) (*Catalog, error) {
	return parseCatalogJSON(embeddedNodes)
}

// FileSource loads the catalog from a JSON document on disk.
type FileSource struct {
	Path string
}

// Load reads and parses the catalog file.
func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", s.Path, err)
	}
	return parseCatalogJSON(data)
}

func parseCatalogJSON(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if len(doc.NodeTypes) == 0 {
		return nil, fmt.Errorf("catalog: document declares no node types")
	}
	return New(doc.NodeTypes)
}
