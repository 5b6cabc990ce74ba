package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"root_cause_probability":0.7,"reasoning":"stale DNS cache"}`, false},
		{"valid with optional enum", `{"root_cause_probability":0,"reasoning":"r","label":"workaround"}`, false},
		{"missing required", `{"reasoning":"r"}`, true},
		{"wrong type", `{"root_cause_probability":"high","reasoning":"r"}`, true},
		{"out of range", `{"root_cause_probability":1.5,"reasoning":"r"}`, true},
		{"bad enum", `{"root_cause_probability":0.5,"reasoning":"r","label":"maybe"}`, true},
		{"extra property", `{"root_cause_probability":0.5,"reasoning":"r","confidence":1}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(rootCauseSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
				if string(inv.Content) != tt.raw {
					t.Errorf("content = %q, want %q", inv.Content, tt.raw)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`plain text reply`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedArray(t *testing.T) {
	schema := &Schema{
		Name: "test-batch-judgment",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"scores": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "number"},
				},
			},
			"required": []any{"scores"},
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"scores":[0.1,0.9]}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := validateResponse(schema, json.RawMessage(`{"scores":["high"]}`)); err == nil {
		t.Fatal("expected error for wrong item type")
	}
}
