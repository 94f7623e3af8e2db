// Package catalog holds the immutable node-type schema catalog: the lookup
// from component-type identifier to its known valid versions, accepted
// parameter shapes and migration rules. The catalog is loaded once per
// process and treated as read-only; reloads swap the whole reference.
package catalog

// ParameterSpec describes one accepted parameter of a node type version.
type ParameterSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// ShapeDescriptor is the accepted parameter shape of one node type version.
type ShapeDescriptor struct {
	Parameters []ParameterSpec `json:"parameters"`
}

// NodeTypeSchema is one catalog entry: a canonical fully-qualified type
// identifier, the versions the platform accepts for it, and optional
// metadata. Shapes is keyed by the version rendered as a JSON number string
// ("2", "4.2").
type NodeTypeSchema struct {
	CanonicalType  string                     `json:"canonicalType"`
	Aliases        []string                   `json:"aliases,omitempty"`
	DefaultVersion float64                    `json:"defaultVersion"`
	ValidVersions  []float64                  `json:"validVersions"`
	Outputs        int                        `json:"outputs,omitempty"`
	Description    string                     `json:"description,omitempty"`
	Shapes         map[string]ShapeDescriptor `json:"shapes,omitempty"`
}

// SupportsVersion reports whether v is one of the entry's valid versions.
func (s *NodeTypeSchema) SupportsVersion(v float64) bool {
	for _, valid := range s.ValidVersions {
		if valid == v {
			return true
		}
	}
	return false
}

// BranchOutputs returns the declared output-slot count for branching types,
// or 1 for linear types.
func (s *NodeTypeSchema) BranchOutputs() int {
	if s.Outputs > 1 {
		return s.Outputs
	}
	return 1
}
