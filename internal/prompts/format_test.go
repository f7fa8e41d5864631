package prompts

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	vars := map[string]string{"a": "x", "b": "y"}
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"plain", "no placeholders", "no placeholders", nil},
		{"substitute", "{a} and {b}", "x and y", nil},
		{"adjacent", "{a}{b}", "xy", nil},
		{"escaped", "{{a}} {a}", "{a} x", nil},
		{"unknown", "{a} {c}", "{a} {c}", ErrUnknownPlaceholder},
		{"unclosed", "{a", "{a", ErrUnbalancedBrace},
		{"stray close", "a}", "a}", ErrUnbalancedBrace},
		{"nested open", "{a{b}", "{a{b}", ErrUnbalancedBrace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.in, vars)
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
