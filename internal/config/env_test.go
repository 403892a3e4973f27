package config

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_WMDRAW_VAR", "test_value")
	t.Setenv("TEST_WMDRAW_FONT", "gomono:12")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no variables", "plain text", "plain text"},
		{"braced", "a ${TEST_WMDRAW_VAR} b", "a test_value b"},
		{"bare", "a $TEST_WMDRAW_VAR b", "a test_value b"},
		{"unset becomes empty", "a ${UNSET_WMDRAW_12345} b", "a  b"},
		{"unset with default", "${UNSET_WMDRAW_12345:-fixed}", "fixed"},
		{"set ignores default", "${TEST_WMDRAW_FONT:-fixed}", "gomono:12"},
		{"empty default", "${UNSET_WMDRAW_12345:-}", ""},
		{"adjacent", "${TEST_WMDRAW_VAR}${TEST_WMDRAW_VAR}", "test_valuetest_value"},
		{"color is untouched", "#ff0000", "#ff0000"},
		{"lone dollar", "cost $5", "cost $5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.expected {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExpandEnvConfig(t *testing.T) {
	t.Setenv("TEST_WMDRAW_HOST", "box")

	cfg := DefaultConfig()
	cfg.Bar.Font = "${UNSET_WMDRAW_12345:-gomono}:10"
	cfg.Blocks = []Block{{Text: "host $TEST_WMDRAW_HOST"}}
	ExpandEnvConfig(&cfg)

	if cfg.Bar.Font != "gomono:10" {
		t.Errorf("font = %q", cfg.Bar.Font)
	}
	if cfg.Blocks[0].Text != "host box" {
		t.Errorf("block text = %q", cfg.Blocks[0].Text)
	}

	ExpandEnvConfig(nil)
}
