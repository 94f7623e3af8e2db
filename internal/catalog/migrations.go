package catalog

// Migration is a declared, verified transform from one type-version's
// parameter shape to another's. The normalizer applies it only when a rule
// exists for the exact (type, fromVersion) pair; there is no best-guess
// fallback.
type Migration struct {
	ToVersion float64
	Summary   string
	Transform func(params map[string]any) map[string]any
}

type migrationKey struct {
	Type string
	From float64
}

// builtinMigrations is the rule table keyed by (type, fromVersion). Adding
// support for a new incompatible version means adding an entry here, not new
// branching logic in the normalizer.
func builtinMigrations(c *Catalog) map[migrationKey]Migration {
	rules := make(map[migrationKey]Migration)

	const httpRequest = "n8n-nodes-base.httpRequest"
	if _, ok := c.types[httpRequest]; ok {
		for _, from := range []float64{1, 2, 3} {
			rules[migrationKey{httpRequest, from}] = Migration{
				ToVersion: 4.2,
				Summary:   "pinned to stable version 4.2; parameters collapsed to the minimal options shape",
				Transform: collapseHTTPRequestParameters,
			}
		}
	}

	const ifNode = "n8n-nodes-base.if"
	if _, ok := c.types[ifNode]; ok {
		rules[migrationKey{ifNode, 1}] = Migration{
			ToVersion: 2,
			Summary:   "flat condition list restructured into combinator form with typed operators",
			Transform: structureIfConditions,
		}
	}

	return rules
}

// collapseHTTPRequestParameters reduces a pre-v4 httpRequest parameter set
// to the shape v4.2 accepts: url, method and authentication survive,
// everything else folds into (or is replaced by) an options object.
func collapseHTTPRequestParameters(in map[string]any) map[string]any {
	out := make(map[string]any, 4)
	for _, key := range []string{"url", "method", "authentication"} {
		if v, ok := in[key]; ok {
			out[key] = v
		}
	}
	if opts, ok := in["options"].(map[string]any); ok {
		out["options"] = opts
	} else {
		out["options"] = map[string]any{}
	}
	return out
}

// structureIfConditions upgrades the v1 flat per-type condition lists
// ({string: [...], number: [...], boolean: [...]}) to the v2 structured
// shape: an explicit combinator, per-condition operator type/operation, and
// a caseSensitive/typeValidation options block.
func structureIfConditions(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}

	flat, _ := in["conditions"].(map[string]any)
	conditions := []any{}
	for _, condType := range []string{"string", "number", "boolean"} {
		list, _ := flat[condType].([]any)
		for _, raw := range list {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			operation, _ := entry["operation"].(string)
			if operation == "" {
				operation = "equals"
			}
			conditions = append(conditions, map[string]any{
				"leftValue":  entry["value1"],
				"rightValue": entry["value2"],
				"operator": map[string]any{
					"type":      condType,
					"operation": operation,
				},
			})
		}
	}

	out["conditions"] = map[string]any{
		"combinator": "and",
		"conditions": conditions,
		"options": map[string]any{
			"caseSensitive":  true,
			"typeValidation": "strict",
		},
	}
	return out
}
