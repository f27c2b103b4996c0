// Package llm provides centralized LLM configuration and client abstractions
// for the generation and conversation calls made by the prep station.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short free-text help: answer outlines, refinements
	TierLite ModelTier = "lite"
	// TierStandard is for structured output and the interviewer conversation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form analysis such as resume optimization reports
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one wired today.
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Temperature applies to one-shot generation calls.
	Temperature float32
	// ChatTemperature applies to conversational sessions.
	ChatTemperature float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     0.4,
		ChatTemperature: 0.7,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok && model != "" {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier.
// An empty model name leaves the tier unchanged.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:        c.Provider,
		Models:          make(map[ModelTier]string, len(c.Models)+1),
		Temperature:     c.Temperature,
		ChatTemperature: c.ChatTemperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	if model != "" {
		newConfig.Models[tier] = model
	}
	return newConfig
}
