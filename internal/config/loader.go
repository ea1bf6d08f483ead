package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/yampi-go/api"
)

const (
	envconfigPrefix = "YAMPI"

	// DefaultProfile is used when neither the file nor the caller names one.
	DefaultProfile = "default"
)

// Environment names accepted by Profile.Environment.
const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
	EnvLocal      = "local"
)

// Config is the on-disk CLI configuration: a set of named profiles and the
// one currently selected.
type Config struct {
	Current  string              `yaml:"current,omitempty"`
	Profiles map[string]*Profile `yaml:"profiles,omitempty"`

	path string
	// missingCurrent is a current profile named by the file that does not exist.
	missingCurrent string
}

// Profile holds everything needed to build a request against one store.
type Profile struct {
	Environment string            `yaml:"environment,omitempty"`
	URL         string            `yaml:"url,omitempty"`
	Version     string            `yaml:"version,omitempty"`
	Merchant    string            `yaml:"merchant,omitempty"`
	Token       string            `yaml:"token,omitempty"`
	JWT         string            `yaml:"jwt,omitempty"`
	Email       string            `yaml:"email,omitempty"`
	Timeout     string            `yaml:"timeout,omitempty"`
	ForceAlias  bool              `yaml:"forceAlias,omitempty"`
	ForgetAlias bool              `yaml:"forgetAlias,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`

	// Password is only ever read from the environment.
	Password string `yaml:"-"`
}

// env holds the YAMPI_* overrides.
type env struct {
	Profile     string `envconfig:"PROFILE"`
	Environment string `envconfig:"ENVIRONMENT"`
	URL         string `envconfig:"URL"`
	Merchant    string `envconfig:"MERCHANT"`
	Token       string `envconfig:"TOKEN"`
	JWT         string `envconfig:"JWT"`
	Email       string `envconfig:"EMAIL"`
	Password    string `envconfig:"PASSWORD"`
	Timeout     string `envconfig:"TIMEOUT"`
}

// DefaultPath returns ~/.yampi/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, ".yampi", "config.yaml"), nil
}

// LoadConfig reads the configuration at path. A missing file yields an empty
// configuration bound to path, so a later Save creates it.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Profiles: map[string]*Profile{},
		path:     path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file at %s", path)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "error parsing config file at %s", path)
	}
	if config.Profiles == nil {
		config.Profiles = map[string]*Profile{}
	}
	for name, p := range config.Profiles {
		if p == nil {
			config.Profiles[name] = &Profile{}
		}
	}

	// A dangling current profile falls back to DefaultProfile so that
	// "config use" can still repair the file.
	if _, ok := config.Profiles[config.Current]; config.Current != "" && !ok {
		config.missingCurrent = config.Current
		config.Current = ""
	}

	if errs := ValidateConfig(config); len(errs) > 0 {
		return nil, errors.Wrapf(errs, "invalid config file at %s", path)
	}

	return config, nil
}

// MissingCurrent returns the current profile named by the file when no such
// profile exists, or "".
func (c *Config) MissingCurrent() string {
	return c.missingCurrent
}

// Path returns the file the configuration is read from and saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration back to its file, creating the directory
// when needed. The file holds tokens, so it is only readable by its owner.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return errors.Wrapf(err, "error creating config directory for %s", c.path)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", c.path)
	}
	return nil
}

// ProfileName resolves which profile to use: the explicit name, then the
// file's current profile, then DefaultProfile.
func (c *Config) ProfileName(name string) string {
	if name != "" {
		return name
	}
	if c.Current != "" {
		return c.Current
	}
	return DefaultProfile
}

// Profile returns the named profile, creating an empty one when it does not
// exist yet.
func (c *Config) Profile(name string) *Profile {
	name = c.ProfileName(name)
	p, ok := c.Profiles[name]
	if !ok || p == nil {
		p = &Profile{}
		c.Profiles[name] = p
	}
	return p
}

// ProfileNames lists the profiles in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve loads the YAMPI_* environment and returns the selected profile with
// the environment applied on top of a copy. The stored profile is untouched.
func (c *Config) Resolve(name string) (string, *Profile, error) {
	var e env
	if err := envconfig.Process(envconfigPrefix, &e); err != nil {
		return "", nil, errors.Wrap(err, "error getting configuration from environment")
	}
	if name == "" {
		name = e.Profile
	}
	name = c.ProfileName(name)

	resolved := c.Profile(name).Clone()
	resolved.applyEnv(e)

	if errs := ValidateProfile(name, resolved); len(errs) > 0 {
		return "", nil, errs
	}
	return name, resolved, nil
}

func (p *Profile) applyEnv(e env) {
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&p.Environment, e.Environment)
	override(&p.URL, e.URL)
	override(&p.Merchant, e.Merchant)
	override(&p.Token, e.Token)
	override(&p.JWT, e.JWT)
	override(&p.Email, e.Email)
	override(&p.Password, e.Password)
	override(&p.Timeout, e.Timeout)
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	clone := *p
	if p.Headers != nil {
		clone.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			clone.Headers[k] = v
		}
	}
	return &clone
}

// BaseURL returns the explicit URL, or the URL of the named environment.
// Profiles without either target production.
func (p *Profile) BaseURL() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	switch strings.ToLower(p.Environment) {
	case "", EnvProduction:
		return api.ProductionURL, nil
	case EnvSandbox:
		return api.SandboxURL, nil
	case EnvLocal:
		return api.LocalURL, nil
	}
	return "", errors.Errorf("unknown environment %q", p.Environment)
}

// TimeoutDuration parses Timeout, falling back to api.DefaultTimeout.
func (p *Profile) TimeoutDuration() (time.Duration, error) {
	if p.Timeout == "" {
		return api.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid timeout %q", p.Timeout)
	}
	return d, nil
}

// Masked returns a copy safe to print: secrets keep only their last four
// characters.
func (p *Profile) Masked() *Profile {
	masked := p.Clone()
	masked.Token = mask(p.Token)
	masked.JWT = mask(p.JWT)
	masked.Password = ""
	return masked
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
