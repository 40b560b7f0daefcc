// Package config holds the small configuration surface of the core:
// provider priorities per model, the default call timeout, build
// strictness, and the names of the credential keys each provider
// expects. Credential values never live in the file; they are read from
// the environment at context-construction time.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/finquery/finquery/api"
)

// Duration wraps time.Duration with yaml support for strings like "45s".
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or a bare number of
// seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds int
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full configuration surface of the core.
type Config struct {
	// Timeout is the default per-call deadline.
	Timeout Duration `yaml:"timeout"`

	// FatalBuildWarnings promotes interface merge warnings to errors.
	FatalBuildWarnings bool `yaml:"fatal_build_warnings"`

	// Priorities orders providers per model for default selection.
	Priorities map[string][]string `yaml:"priorities"`

	// CredentialKeys names, per provider, the credential map keys the
	// provider's fetcher expects. The values come from environment
	// variables named after the upper-cased key.
	CredentialKeys map[string][]string `yaml:"credential_keys"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Timeout:        Duration(30 * time.Second),
		Priorities:     make(map[string][]string),
		CredentialKeys: make(map[string][]string),
	}
}

// Load reads a yaml configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(30 * time.Second)
	}
	return cfg, nil
}

// CredentialsFromEnv resolves the configured credential keys against the
// environment. A key named polygon_api_key reads POLYGON_API_KEY.
// Providers with no resolvable keys are omitted.
func (c *Config) CredentialsFromEnv() map[string]api.Credentials {
	out := make(map[string]api.Credentials)
	for providerName, keys := range c.CredentialKeys {
		creds := make(api.Credentials)
		for _, key := range keys {
			if v, ok := os.LookupEnv(strings.ToUpper(key)); ok && v != "" {
				creds[key] = v
			}
		}
		if len(creds) > 0 {
			out[providerName] = creds
		}
	}
	return out
}
