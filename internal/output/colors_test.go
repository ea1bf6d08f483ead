package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestColorSchemes(t *testing.T) {
	for name, scheme := range map[string]*ColorScheme{
		"default":  DefaultColorScheme(),
		"no color": NoColorScheme(),
	} {
		t.Run(name, func(t *testing.T) {
			if scheme.Method == nil || scheme.URL == nil || scheme.StatusOK == nil ||
				scheme.StatusError == nil || scheme.HeaderKey == nil || scheme.Field == nil ||
				scheme.Success == nil || scheme.Error == nil || scheme.Highlight == nil {
				t.Errorf("%s scheme has nil colors: %+v", name, scheme)
			}
		})
	}

	// Disabled colors print the plain text
	if out := NoColorScheme().Method.Sprint("GET"); out != "GET" {
		t.Errorf("Expected plain 'GET' but got %q", out)
	}
}

func TestColorSchemeStatus(t *testing.T) {
	scheme := DefaultColorScheme()
	tests := []struct {
		code int
		ok   bool
	}{
		{200, true},
		{201, true},
		{302, true},
		{400, false},
		{422, false},
		{500, false},
		{0, false},
	}

	for _, tt := range tests {
		got := scheme.Status(tt.code)
		if tt.ok && got != scheme.StatusOK {
			t.Errorf("Expected StatusOK for %d", tt.code)
		}
		if !tt.ok && got != scheme.StatusError {
			t.Errorf("Expected StatusError for %d", tt.code)
		}
	}
}

func TestNoColorFor(t *testing.T) {
	var buf bytes.Buffer
	if IsTerminal(&buf) {
		t.Error("A buffer is not a terminal")
	}
	if !NoColorFor(&buf, false) {
		t.Error("Expected no color for a non-terminal writer")
	}
	if !NoColorFor(&buf, true) {
		t.Error("Expected no color when requested")
	}
}

func TestIcons(t *testing.T) {
	tests := []struct {
		name string
		fn   func(bool) string
		icon string
	}{
		{"success", SuccessIcon, "✓"},
		{"error", ErrorIcon, "✗"},
		{"info", InfoIcon, "ℹ"},
		{"warning", WarningIcon, "⚠"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(true); got != tt.icon {
				t.Errorf("Expected %q but got %q", tt.icon, got)
			}
			if got := tt.fn(false); !strings.Contains(got, tt.icon) {
				t.Errorf("Expected colored output to contain %q but got %q", tt.icon, got)
			}
		})
	}
}
