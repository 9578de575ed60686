package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/proposal-engine/internal/session"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to proposal! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Template.
	templatePrompt := promptui.Prompt{
		Label: "Path to the proposal HTML template",
		Validate: func(s string) error {
			if s == "" {
				return nil
			}
			if _, err := os.Stat(s); err != nil {
				return fmt.Errorf("template not found")
			}
			return nil
		},
	}
	templatePath, err := templatePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("template path: %w", err)
	}
	cfg.TemplatePath = templatePath

	// 2. Shared attachments.
	attachPrompt := promptui.Prompt{
		Label:   "Directory of attachment page images (leave blank for none)",
		Default: "",
	}
	attachDir, err := attachPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("attachments dir: %w", err)
	}
	cfg.AttachmentsDir = attachDir

	// 3. Default proposer and contact.
	proposerPrompt := promptui.Prompt{Label: "Proposing organisation"}
	if cfg.Defaults.Proposer, err = proposerPrompt.Run(); err != nil {
		return nil, fmt.Errorf("proposer: %w", err)
	}
	telPrompt := promptui.Prompt{Label: "Contact phone number"}
	if cfg.Defaults.Tel, err = telPrompt.Run(); err != nil {
		return nil, fmt.Errorf("tel: %w", err)
	}
	emailPrompt := promptui.Prompt{Label: "Contact email (leave blank to drop the email line)"}
	if cfg.Defaults.Email, err = emailPrompt.Run(); err != nil {
		return nil, fmt.Errorf("email: %w", err)
	}

	// 4. Theme colours.
	validColor := func(s string) error {
		if s == "" {
			return nil
		}
		_, err := session.NormalizeColor(s)
		return err
	}
	primaryPrompt := promptui.Prompt{Label: "Primary colour (#rrggbb, blank keeps the template's)", Validate: validColor}
	if cfg.Defaults.Primary, err = primaryPrompt.Run(); err != nil {
		return nil, fmt.Errorf("primary colour: %w", err)
	}
	accentPrompt := promptui.Prompt{Label: "Accent colour (#rrggbb, blank keeps the template's)", Validate: validColor}
	if cfg.Defaults.Accent, err = accentPrompt.Run(); err != nil {
		return nil, fmt.Errorf("accent colour: %w", err)
	}

	// 5. Vision provider for page extraction.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider for page extraction",
		Items: []string{"openai", "anthropic", "google", "openrouter", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Vision.Provider = ProviderType(providerStr)
	cfg.Vision.Model = DefaultVisionModel(cfg.Vision.Provider)

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Vision.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running proposal extract.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// SplitAndTrim splits a comma-separated string and trims whitespace.
func SplitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
