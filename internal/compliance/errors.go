// Package compliance implements the workflow normalization and compliance
// validation engine: a pure pipeline that takes an arbitrary, possibly
// server-contaminated workflow graph and produces either a cleaned,
// API-compliant graph with a log of applied fixes, or a structured rejection
// explaining what is wrong and why it could not be safely auto-repaired.
package compliance

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking via errors.Is().
var (
	// ErrStructural indicates a missing or malformed required field.
	ErrStructural = errors.New("structural error")

	// ErrReferential indicates a connection referencing an absent node.
	ErrReferential = errors.New("referential error")

	// ErrCompatibility indicates an unrecognized type identifier.
	ErrCompatibility = errors.New("compatibility error")

	// ErrVersionMigration indicates an unsupported version with no
	// declared migration path.
	ErrVersionMigration = errors.New("version migration error")
)

// StructuralError reports a missing or malformed required field.
type StructuralError struct {
	NodeName string
	Msg      string
}

func (e *StructuralError) Error() string {
	if e.NodeName != "" {
		return fmt.Sprintf("%s: node %q: %s", ErrStructural.Error(), e.NodeName, e.Msg)
	}
	return fmt.Sprintf("%s: %s", ErrStructural.Error(), e.Msg)
}

func (e *StructuralError) Unwrap() error { return ErrStructural }

// ReferentialError reports a connection addressing a node that does not
// exist in the graph.
type ReferentialError struct {
	Missing string
	Msg     string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s: %s", ErrReferential.Error(), e.Msg)
}

func (e *ReferentialError) Unwrap() error { return ErrReferential }

// CompatibilityError reports a node type identifier the catalog does not
// recognize under any canonical form, alias or known malformed variant.
type CompatibilityError struct {
	NodeName string
	RawType  string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("%s: node %q: unknown type %q", ErrCompatibility.Error(), e.NodeName, e.RawType)
}

func (e *CompatibilityError) Unwrap() error { return ErrCompatibility }

// VersionMigrationError reports a declared version the catalog does not
// support and for which no migration rule exists.
type VersionMigrationError struct {
	NodeName string
	Type     string
	Version  float64
}

func (e *VersionMigrationError) Error() string {
	return fmt.Sprintf("%s: node %q: %s has no support or migration path for version %v",
		ErrVersionMigration.Error(), e.NodeName, e.Type, e.Version)
}

func (e *VersionMigrationError) Unwrap() error { return ErrVersionMigration }
