package llm

// rootCauseSchema mirrors the schema the classifier sends.
func rootCauseSchema() *Schema {
	return &Schema{
		Name:        "root-cause-judgment",
		Description: "Probability that an answer explains the root cause",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"root_cause_probability": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"reasoning":              map[string]any{"type": "string"},
				"label":                  map[string]any{"type": "string", "enum": []any{"root_cause", "workaround"}},
			},
			"required":             []any{"root_cause_probability", "reasoning"},
			"additionalProperties": false,
		},
	}
}
