package domain

import "time"

// ProviderConfig is one entry of the model configs listing. Only the first
// model config addresses outbound messages.
type ProviderConfig struct {
	Provider string            `json:"provider"`
	APIKey   string            `json:"api_key,omitempty"`
	Configs  []ModelConfig     `json:"configs"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ModelConfig struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Model           string            `json:"model"`
	SystemPrompt    string            `json:"system_prompt,omitempty"`
	Temperature     float64           `json:"temperature,omitempty"`
	Credentials     map[string]string `json:"credentials,omitempty"`
	MaxLastMessages int               `json:"max_last_messages,omitempty"`
	UserPrompt      string            `json:"user_prompt,omitempty"`
}

// LLMName returns the name used to address outbound messages.
func (p *ProviderConfig) LLMName() string {
	if p == nil || len(p.Configs) == 0 {
		return ""
	}
	return p.Configs[0].Name
}

// Usable reports whether the config can address an outbound message.
func (p *ProviderConfig) Usable() bool {
	return p.LLMName() != ""
}

// Providers the backend knows how to address.
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure openai"
	ProviderOllama      = "ollama"
)

// Provider is a registered provider account.
type Provider struct {
	ID        string            `json:"id"`
	Provider  string            `json:"provider"`
	APIKey    string            `json:"api_key"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type NewProvider struct {
	Name     string            `json:"name"`
	APIKey   string            `json:"api_key"`
	Metadata map[string]string `json:"metadata"`
}

// NewModelConfig registers a model under an existing provider.
type NewModelConfig struct {
	ID              string            `json:"id,omitempty"`
	Name            string            `json:"name"`
	Model           string            `json:"model"`
	Provider        string            `json:"provider"`
	SystemPrompt    string            `json:"system_prompt"`
	UserPrompt      string            `json:"user_prompt"`
	Temperature     float64           `json:"temperature"`
	MaxLastMessages int               `json:"max_last_messages"`
	Credentials     map[string]string `json:"credentials"`
}

// ModelConfigPatch changes only the fields that are set.
type ModelConfigPatch struct {
	Name            *string           `json:"name,omitempty"`
	Model           *string           `json:"model,omitempty"`
	SystemPrompt    *string           `json:"system_prompt,omitempty"`
	UserPrompt      *string           `json:"user_prompt,omitempty"`
	Temperature     *float64          `json:"temperature,omitempty"`
	MaxLastMessages *int              `json:"max_last_messages,omitempty"`
	Credentials     map[string]string `json:"credentials,omitempty"`
}
