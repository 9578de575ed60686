package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/proposal-engine/internal/session"
)

// FileName is the default configuration file name.
const FileName = ".proposal.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PROPOSAL_*). Nested keys use a double
// underscore: PROPOSAL_SERVER__PORT sets server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("PROPOSAL_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "PROPOSAL_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic:  true,
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderGoogle:     true,
	ProviderOllama:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.WorkspaceDir == "" {
		return fmt.Errorf("workspace_dir is required")
	}

	for _, p := range c.AttachmentPatterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid attachment pattern %q", p)
		}
	}

	for name, v := range map[string]string{"primary": c.Defaults.Primary, "accent": c.Defaults.Accent} {
		if v == "" {
			continue
		}
		if _, err := session.NormalizeColor(v); err != nil {
			return fmt.Errorf("defaults.%s: %w", name, err)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("server.data_dir is required")
	}
	if _, err := c.SessionMaxAge(); err != nil {
		return err
	}

	if c.Vision.Provider != "" && !validProviders[c.Vision.Provider] {
		return fmt.Errorf("invalid vision.provider %q: must be one of anthropic, openai, openrouter, google, ollama", c.Vision.Provider)
	}
	if c.Vision.RPM < 0 {
		return fmt.Errorf("vision.rpm must be non-negative")
	}

	return nil
}

// SessionMaxAge parses server.session_max_age. Empty means sessions are
// never swept.
func (c *Config) SessionMaxAge() (time.Duration, error) {
	if c.Server.SessionMaxAge == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Server.SessionMaxAge)
	if err != nil {
		return 0, fmt.Errorf("invalid server.session_max_age %q: %w", c.Server.SessionMaxAge, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("server.session_max_age must be non-negative")
	}
	return d, nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
