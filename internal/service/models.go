package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ElarizT/Mavericks/internal/domain"
)

type ModelService struct {
	api   *APIClient
	cache *ModelsCache
}

func NewModelService(api *APIClient, cache *ModelsCache) *ModelService {
	return &ModelService{api: api, cache: cache}
}

// Configs lists the provider/model configurations available to the user.
func (s *ModelService) Configs(ctx context.Context) ([]domain.ProviderConfig, error) {
	token, err := s.api.Token(ctx)
	if err != nil {
		return nil, err
	}
	if cached := s.cache.Get(token); cached != nil {
		return cached, nil
	}

	var configs []domain.ProviderConfig
	if err := s.api.Get(ctx, "/api/llm/model/configs", nil, &configs); err != nil {
		return nil, fmt.Errorf("fetch model configs: %w", err)
	}
	if configs == nil {
		configs = []domain.ProviderConfig{}
	}

	s.cache.Set(token, configs)
	return configs, nil
}

// First returns the first provider entry, nil when the listing is empty.
func (s *ModelService) First(ctx context.Context) (*domain.ProviderConfig, error) {
	configs, err := s.Configs(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, nil
	}
	first := configs[0]
	return &first, nil
}

// Prompt returns the backend's default system prompt.
func (s *ModelService) Prompt(ctx context.Context) (string, error) {
	var resp struct {
		SystemPrompt string `json:"system_prompt"`
	}
	if err := s.api.Get(ctx, "/api/llm/model/prompt", nil, &resp); err != nil {
		return "", fmt.Errorf("fetch prompt: %w", err)
	}
	return resp.SystemPrompt, nil
}

func (s *ModelService) Model(ctx context.Context, id string) (*domain.ModelConfig, error) {
	var cfg domain.ModelConfig
	if err := s.api.Get(ctx, modelConfigPath(id), nil, &cfg); err != nil {
		return nil, fmt.Errorf("get model config: %w", err)
	}
	return &cfg, nil
}

func (s *ModelService) CreateProvider(ctx context.Context, p domain.NewProvider) (*domain.Provider, error) {
	var created domain.Provider
	if err := s.api.PostJSON(ctx, "/api/llm/model/provider", p, &created); err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	s.cache.Invalidate()
	return &created, nil
}

func (s *ModelService) UpdateProvider(ctx context.Context, provider, apiKey string, metadata map[string]string) (*domain.Provider, error) {
	body := struct {
		APIKey   string            `json:"api_key"`
		Metadata map[string]string `json:"metadata"`
	}{APIKey: apiKey, Metadata: metadata}

	var updated domain.Provider
	if err := s.api.Patch(ctx, "/api/llm/model/providers/"+url.PathEscape(provider), nil, body, &updated); err != nil {
		return nil, fmt.Errorf("update provider: %w", err)
	}
	s.cache.Invalidate()
	return &updated, nil
}

// CreateModel registers a model config and returns the refreshed listing.
func (s *ModelService) CreateModel(ctx context.Context, m domain.NewModelConfig) ([]domain.ProviderConfig, error) {
	var configs []domain.ProviderConfig
	if err := s.api.PostJSON(ctx, "/api/llm/model/config", m, &configs); err != nil {
		return nil, fmt.Errorf("create model config: %w", err)
	}
	s.cache.Invalidate()
	return configs, nil
}

func (s *ModelService) UpdateModel(ctx context.Context, id string, patch domain.ModelConfigPatch) (*domain.ModelConfig, error) {
	var cfg domain.ModelConfig
	if err := s.api.Patch(ctx, modelConfigPath(id), nil, patch, &cfg); err != nil {
		return nil, fmt.Errorf("update model config: %w", err)
	}
	s.cache.Invalidate()
	return &cfg, nil
}

func (s *ModelService) DeleteModel(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, modelConfigPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete model config: %w", err)
	}
	s.cache.Invalidate()
	return nil
}

func modelConfigPath(id string) string {
	return "/api/llm/model/config/" + url.PathEscape(id)
}
