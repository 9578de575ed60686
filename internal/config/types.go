package config

// ProviderType identifies an LLM provider used for page extraction.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
)

// Config is the top-level proposal configuration, corresponding to .proposal.yml.
type Config struct {
	WorkspaceDir       string         `yaml:"workspace_dir" koanf:"workspace_dir"`
	TemplatePath       string         `yaml:"template_path" koanf:"template_path"`
	AttachmentsDir     string         `yaml:"attachments_dir" koanf:"attachments_dir"`
	AttachmentPatterns []string       `yaml:"attachment_patterns" koanf:"attachment_patterns"`
	Defaults           DefaultsConfig `yaml:"defaults" koanf:"defaults"`
	Server             ServerConfig   `yaml:"server" koanf:"server"`
	Vision             VisionConfig   `yaml:"vision" koanf:"vision"`
}

// DefaultsConfig holds the export field values used when a request leaves
// them empty.
type DefaultsConfig struct {
	Recipient string `yaml:"recipient" koanf:"recipient"`
	Proposer  string `yaml:"proposer" koanf:"proposer"`
	Tel       string `yaml:"tel" koanf:"tel"`
	Email     string `yaml:"email" koanf:"email"`
	Primary   string `yaml:"primary" koanf:"primary"`
	Accent    string `yaml:"accent" koanf:"accent"`
}

// ServerConfig holds settings of the editing server.
type ServerConfig struct {
	Port            int    `yaml:"port" koanf:"port"`
	DataDir         string `yaml:"data_dir" koanf:"data_dir"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	// SessionMaxAge is how long an idle session is kept, e.g. "24h".
	SessionMaxAge string `yaml:"session_max_age" koanf:"session_max_age"`
}

// VisionConfig selects the model that turns page images into pages.
type VisionConfig struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
	// RPM limits requests per minute; 0 means unlimited.
	RPM int `yaml:"rpm" koanf:"rpm"`
}
