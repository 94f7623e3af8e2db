package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog is an immutable set of node-type schemas plus the migration rule
// table. Build one with New; never mutate it afterwards.
type Catalog struct {
	types      map[string]*NodeTypeSchema
	aliases    map[string]string
	migrations map[migrationKey]Migration
}

// New builds a catalog from schema entries and wires in the built-in
// migration rules for the types it knows. Entry order does not matter;
// alias conflicts resolve in favor of the lexicographically first canonical
// type so lookups stay deterministic.
func New(entries []NodeTypeSchema) (*Catalog, error) {
	sorted := make([]NodeTypeSchema, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CanonicalType < sorted[j].CanonicalType
	})

	c := &Catalog{
		types:   make(map[string]*NodeTypeSchema, len(sorted)),
		aliases: make(map[string]string, len(sorted)*2),
	}
	for i := range sorted {
		entry := sorted[i]
		if entry.CanonicalType == "" {
			return nil, fmt.Errorf("catalog entry %d has no canonical type", i)
		}
		if _, dup := c.types[entry.CanonicalType]; dup {
			return nil, fmt.Errorf("duplicate catalog entry for %q", entry.CanonicalType)
		}
		if entry.DefaultVersion == 0 && len(entry.ValidVersions) > 0 {
			entry.DefaultVersion = entry.ValidVersions[len(entry.ValidVersions)-1]
		}
		c.types[entry.CanonicalType] = &entry

		c.addAlias(bareName(entry.CanonicalType), entry.CanonicalType)
		for _, alias := range entry.Aliases {
			c.addAlias(alias, entry.CanonicalType)
		}
	}

	c.migrations = builtinMigrations(c)
	return c, nil
}

func (c *Catalog) addAlias(alias, canonical string) {
	key := strings.ToLower(alias)
	if key == "" {
		return
	}
	if _, taken := c.aliases[key]; !taken {
		c.aliases[key] = canonical
	}
}

// Get looks up a schema by its exact canonical identifier.
func (c *Catalog) Get(canonical string) (*NodeTypeSchema, bool) {
	s, ok := c.types[canonical]
	return s, ok
}

// Resolve maps a raw type identifier to its catalog entry. It accepts the
// canonical form, a bare short form or declared alias ("webhook"), and the
// malformed partial-prefix variants the platform is known to tolerate on
// write ("nodes-base.webhook"). Anything else does not resolve; Resolve
// never guesses.
func (c *Catalog) Resolve(raw string) (*NodeTypeSchema, bool) {
	if s, ok := c.types[raw]; ok {
		return s, true
	}
	if canonical, ok := c.aliases[strings.ToLower(raw)]; ok {
		return c.types[canonical], true
	}

	// Partial prefix: accept only when the raw prefix is a truncation of
	// the canonical package prefix for the bare name.
	dot := strings.LastIndex(raw, ".")
	if dot <= 0 || dot == len(raw)-1 {
		return nil, false
	}
	rawPrefix, bare := raw[:dot], raw[dot+1:]
	canonical, ok := c.aliases[strings.ToLower(bare)]
	if !ok {
		return nil, false
	}
	canonicalPrefix := canonical[:strings.LastIndex(canonical, ".")]
	if strings.HasSuffix(canonicalPrefix, rawPrefix) || strings.HasPrefix(canonicalPrefix, rawPrefix) {
		return c.types[canonical], true
	}
	return nil, false
}

// Migration returns the declared migration rule from the given version of a
// canonical type, if one exists.
func (c *Catalog) Migration(canonical string, from float64) (Migration, bool) {
	m, ok := c.migrations[migrationKey{Type: canonical, From: from}]
	return m, ok
}

// Types returns all entries sorted by canonical identifier.
func (c *Catalog) Types() []*NodeTypeSchema {
	out := make([]*NodeTypeSchema, 0, len(c.types))
	for _, s := range c.types {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CanonicalType < out[j].CanonicalType
	})
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.types) }

func bareName(canonical string) string {
	if dot := strings.LastIndex(canonical, "."); dot >= 0 {
		return canonical[dot+1:]
	}
	return canonical
}
