package config

import (
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	DefaultBaseURL = "http://127.0.0.1:8080/v1"
)

type ModelConfig struct {
	// Provider selects the completion backend: "openai" speaks the OpenAI
	// compatible chat API (llama.cpp server, vLLM, OpenAI itself), "anthropic"
	// talks to the Messages API.
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`

	// HealthURL is polled before the first call. Empty derives <host>/health from BaseURL.
	HealthURL     string        `mapstructure:"health_url"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
}

func NewModelConfig() *ModelConfig {
	return &ModelConfig{
		Provider:      ProviderOpenAI,
		BaseURL:       DefaultBaseURL,
		APIKey:        "sk-no-key-required",
		Model:         "local",
		HealthTimeout: 60 * time.Second,
	}
}

func (c *ModelConfig) GetHealthURL() string {
	if c.HealthURL != "" {
		return c.HealthURL
	}
	base := strings.TrimRight(c.BaseURL, "/")
	base = strings.TrimSuffix(base, "/v1")
	return base + "/health"
}
