package models

import (
	"encoding/json"
)

// Port categories used as keys in a ConnectionMap. PortMain carries the
// default data flow; the ai_* ports are side channels used by agent-style
// nodes for tools, language models and memory.
const (
	PortMain          = "main"
	PortAITool        = "ai_tool"
	PortAILanguageMod = "ai_languageModel"
	PortAIMemory      = "ai_memory"
)

// Connection is a single directed edge from one node's output slot to
// another node's input slot. Node is the target's name (not its id), Type
// must match the port category the edge is filed under, and Index is the
// target input slot.
type Connection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// ConnectionMap maps a source node name to its port categories, each port
// holding an ordered list of output slots, each slot a list of edges.
type ConnectionMap map[string]map[string][][]Connection

// Node is a single automation component instance within a workflow graph.
// Name is the addressing key used by connections and must be unique within
// the graph. Fields outside the platform's accepted node shape are captured
// in Extra on decode so the sanitizer can strip and report them.
type Node struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion,omitempty"`
	Position    []float64      `json:"position,omitempty"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	NotesInFlow bool           `json:"notesInFlow,omitempty"`
	OnError     string         `json:"onError,omitempty"`
	RetryOnFail bool           `json:"retryOnFail,omitempty"`
	MaxTries    int            `json:"maxTries,omitempty"`
	ExecuteOnce bool           `json:"executeOnce,omitempty"`

	// Extra holds fields the platform does not accept on a node. Never
	// re-serialized.
	Extra map[string]json.RawMessage `json:"-"`
}

// nodeKnownKeys are the JSON keys the Node struct models explicitly.
var nodeKnownKeys = map[string]bool{
	"id": true, "name": true, "type": true, "typeVersion": true,
	"position": true, "parameters": true, "credentials": true,
	"disabled": true, "notes": true, "notesInFlow": true,
	"onError": true, "retryOnFail": true, "maxTries": true,
	"executeOnce": true,
}

// nodeAlias avoids UnmarshalJSON recursion.
type nodeAlias Node

// UnmarshalJSON decodes a node leniently: unknown keys land in Extra and a
// malformed position is left nil for the validator to flag instead of
// failing the whole decode.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// Decode the known shape, tolerating a malformed position.
	if pos, ok := raw["position"]; ok {
		var probe []float64
		if json.Unmarshal(pos, &probe) != nil {
			delete(raw, "position")
		}
	}
	relaxed, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var alias nodeAlias
	if err := json.Unmarshal(relaxed, &alias); err != nil {
		return err
	}
	*n = Node(alias)

	for key, val := range raw {
		if nodeKnownKeys[key] {
			continue
		}
		if n.Extra == nil {
			n.Extra = map[string]json.RawMessage{}
		}
		n.Extra[key] = val
	}
	return nil
}

// WorkflowGraph is a workflow definition as accepted by the platform's
// management API. Only the five typed fields are valid on submission; any
// other top-level key present on decode (server-managed metadata on a graph
// fetched via GET) is captured in Extra for the sanitizer to remove.
type WorkflowGraph struct {
	Name        string         `json:"name"`
	Nodes       []Node         `json:"nodes"`
	Connections ConnectionMap  `json:"connections"`
	Settings    map[string]any `json:"settings"`
	StaticData  map[string]any `json:"staticData,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var graphKnownKeys = map[string]bool{
	"name": true, "nodes": true, "connections": true,
	"settings": true, "staticData": true,
}

type graphAlias WorkflowGraph

func (g *WorkflowGraph) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var alias graphAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*g = WorkflowGraph(alias)

	for key, val := range raw {
		if graphKnownKeys[key] {
			continue
		}
		if g.Extra == nil {
			g.Extra = map[string]json.RawMessage{}
		}
		g.Extra[key] = val
	}
	return nil
}

// Clone returns a deep copy of the graph. The validation pipeline operates
// on a clone so the caller's reference is never mutated.
func (g *WorkflowGraph) Clone() *WorkflowGraph {
	if g == nil {
		return nil
	}
	out := &WorkflowGraph{
		Name:       g.Name,
		Settings:   cloneMap(g.Settings),
		StaticData: cloneMap(g.StaticData),
	}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			out.Nodes[i] = n.clone()
		}
	}
	if g.Connections != nil {
		out.Connections = make(ConnectionMap, len(g.Connections))
		for src, ports := range g.Connections {
			outPorts := make(map[string][][]Connection, len(ports))
			for port, slots := range ports {
				outSlots := make([][]Connection, len(slots))
				for i, slot := range slots {
					outSlots[i] = append([]Connection(nil), slot...)
				}
				outPorts[port] = outSlots
			}
			out.Connections[src] = outPorts
		}
	}
	if g.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(g.Extra))
		for k, v := range g.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

func (n Node) clone() Node {
	out := n
	out.Position = append([]float64(nil), n.Position...)
	out.Parameters = cloneMap(n.Parameters)
	out.Credentials = cloneMap(n.Credentials)
	if n.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(n.Extra))
		for k, v := range n.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// cloneMap deep-copies a decoded-JSON map. Values are limited to the shapes
// encoding/json produces (maps, slices, scalars).
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
