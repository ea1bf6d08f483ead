package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/yampi-go/api"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
current: store
profiles:
  store:
    environment: sandbox
    merchant: my-store
    token: abcdef123456
    timeout: 5s
    forceAlias: true
    headers:
      X-Trace: "1"
  other:
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Path() != path {
		t.Errorf("Expected path '%s' but got '%s'", path, config.Path())
	}
	if config.Current != "store" {
		t.Errorf("Expected current profile 'store' but got '%s'", config.Current)
	}
	if len(config.Profiles) != 2 {
		t.Fatalf("Expected 2 profiles but got %d", len(config.Profiles))
	}

	p := config.Profile("")
	if p.Merchant != "my-store" {
		t.Errorf("Expected merchant 'my-store' but got '%s'", p.Merchant)
	}
	if !p.ForceAlias {
		t.Error("Expected forceAlias to be set")
	}
	if p.Headers["X-Trace"] != "1" {
		t.Errorf("Expected X-Trace header but got %v", p.Headers)
	}
	if config.Profiles["other"] == nil {
		t.Error("Expected empty profile to be materialized")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "config.yaml")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected missing file to load as empty config: %v", err)
	}
	if len(config.Profiles) != 0 {
		t.Errorf("Expected no profiles but got %d", len(config.Profiles))
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{name: "malformed yaml", content: "profiles: [", contains: "error parsing"},
		{name: "bad environment", content: "profiles:\n  a:\n    environment: qa\n", contains: "profiles.a.environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error but got nil")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error containing '%s' but got '%v'", tt.contains, err)
			}
		})
	}
}

func TestLoadConfig_MissingCurrent(t *testing.T) {
	path := writeConfig(t, "current: b\nprofiles:\n  a: {}\n")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected a missing current profile to load: %v", err)
	}
	if config.Current != "" {
		t.Errorf("Expected current to be cleared but got '%s'", config.Current)
	}
	if config.MissingCurrent() != "b" {
		t.Errorf("Expected missing current 'b' but got '%s'", config.MissingCurrent())
	}
	if name := config.ProfileName(""); name != DefaultProfile {
		t.Errorf("Expected fallback to '%s' but got '%s'", DefaultProfile, name)
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	config.Current = "store"
	p := config.Profile("store")
	p.JWT = "jwt-token"
	p.Password = "never-saved"

	if err := config.Save(); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected config file to exist: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600 but got %v", info.Mode().Perm())
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "never-saved") {
		t.Error("Password must not be written to disk")
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if reloaded.Profile("").JWT != "jwt-token" {
		t.Errorf("Expected saved jwt but got '%s'", reloaded.Profile("").JWT)
	}
}

func TestSaveConfig_NoPath(t *testing.T) {
	config := &Config{}
	if err := config.Save(); err == nil {
		t.Error("Expected error saving config without a path")
	}
}

func TestProfileName(t *testing.T) {
	config := &Config{Profiles: map[string]*Profile{}}
	if name := config.ProfileName(""); name != DefaultProfile {
		t.Errorf("Expected '%s' but got '%s'", DefaultProfile, name)
	}

	config.Current = "store"
	if name := config.ProfileName(""); name != "store" {
		t.Errorf("Expected 'store' but got '%s'", name)
	}
	if name := config.ProfileName("other"); name != "other" {
		t.Errorf("Expected 'other' but got '%s'", name)
	}
}

func TestResolve(t *testing.T) {
	config := &Config{
		Profiles: map[string]*Profile{
			"default": {Merchant: "file-store", Token: "file-token"},
			"alt":     {Merchant: "alt-store"},
		},
	}

	t.Setenv("YAMPI_TOKEN", "env-token")
	t.Setenv("YAMPI_PASSWORD", "env-pass")

	name, p, err := config.Resolve("")
	if err != nil {
		t.Fatalf("Failed to resolve profile: %v", err)
	}
	if name != "default" {
		t.Errorf("Expected 'default' but got '%s'", name)
	}
	if p.Token != "env-token" || p.Merchant != "file-store" || p.Password != "env-pass" {
		t.Errorf("Unexpected resolved profile: %+v", p)
	}
	if config.Profiles["default"].Token != "file-token" {
		t.Error("Resolve must not modify the stored profile")
	}

	t.Setenv("YAMPI_PROFILE", "alt")
	name, p, err = config.Resolve("")
	if err != nil {
		t.Fatalf("Failed to resolve profile: %v", err)
	}
	if name != "alt" || p.Merchant != "alt-store" {
		t.Errorf("Expected alt profile but got '%s' %+v", name, p)
	}

	t.Setenv("YAMPI_TIMEOUT", "never")
	if _, _, err := config.Resolve("default"); err == nil {
		t.Error("Expected invalid environment timeout to fail validation")
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		expected string
		wantErr  bool
	}{
		{name: "default", profile: Profile{}, expected: api.ProductionURL},
		{name: "production", profile: Profile{Environment: "production"}, expected: api.ProductionURL},
		{name: "sandbox", profile: Profile{Environment: "SANDBOX"}, expected: api.SandboxURL},
		{name: "local", profile: Profile{Environment: "local"}, expected: api.LocalURL},
		{name: "url wins", profile: Profile{Environment: "sandbox", URL: "http://x.test"}, expected: "http://x.test"},
		{name: "unknown", profile: Profile{Environment: "qa"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.profile.BaseURL()
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected '%s' but got '%s'", tt.expected, result)
			}
		})
	}
}

func TestTimeoutDuration(t *testing.T) {
	d, err := (&Profile{}).TimeoutDuration()
	if err != nil || d != api.DefaultTimeout {
		t.Errorf("Expected default timeout but got %v, %v", d, err)
	}

	d, err = (&Profile{Timeout: "1m"}).TimeoutDuration()
	if err != nil || d != time.Minute {
		t.Errorf("Expected 1m but got %v, %v", d, err)
	}

	if _, err := (&Profile{Timeout: "abc"}).TimeoutDuration(); err == nil {
		t.Error("Expected error for invalid timeout")
	}
}

func TestMasked(t *testing.T) {
	p := &Profile{Token: "abcdef123456", JWT: "xyz", Password: "pw", Headers: map[string]string{"A": "1"}}
	masked := p.Masked()

	if masked.Token != "****3456" {
		t.Errorf("Expected '****3456' but got '%s'", masked.Token)
	}
	if masked.JWT != "****" {
		t.Errorf("Expected '****' but got '%s'", masked.JWT)
	}
	if masked.Password != "" {
		t.Error("Expected password to be cleared")
	}

	masked.Headers["A"] = "2"
	if p.Headers["A"] != "1" {
		t.Error("Masked must not share headers with the original")
	}
	if p.Token != "abcdef123456" {
		t.Error("Masked must not modify the original")
	}
}
