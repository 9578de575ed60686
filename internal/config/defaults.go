package config

import "github.com/ziadkadry99/proposal-engine/internal/session"

// defaultVisionModels maps each provider to a vision-capable model.
var defaultVisionModels = map[ProviderType]string{
	ProviderAnthropic:  "claude-sonnet-4-5-20250929",
	ProviderOpenAI:     "gpt-4o",
	ProviderOpenRouter: "openai/gpt-4o",
	ProviderGoogle:     "gemini-2.5-flash",
	ProviderOllama:     "llava",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkspaceDir:       ".",
		AttachmentPatterns: append([]string(nil), session.DefaultAttachmentPatterns...),
		Server: ServerConfig{
			Port:          8080,
			DataDir:       "proposal_data",
			SessionMaxAge: "24h",
		},
		Vision: VisionConfig{
			Provider: ProviderOpenAI,
			Model:    defaultVisionModels[ProviderOpenAI],
		},
	}
}

// DefaultVisionModel returns the default vision model for the provider, or
// the OpenAI default if the provider is unknown.
func DefaultVisionModel(provider ProviderType) string {
	if m, ok := defaultVisionModels[provider]; ok {
		return m
	}
	return defaultVisionModels[ProviderOpenAI]
}

// Fields returns the configured export defaults.
func (c *Config) Fields() session.Fields {
	d := c.Defaults
	return session.Fields{
		Recipient: d.Recipient,
		Proposer:  d.Proposer,
		Tel:       d.Tel,
		Email:     d.Email,
		Primary:   d.Primary,
		Accent:    d.Accent,
	}
}

// SessionOptions returns the workspace options shared by every session.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		TemplateSource:     c.TemplatePath,
		AttachmentsDir:     c.AttachmentsDir,
		AttachmentPatterns: c.AttachmentPatterns,
	}
}
