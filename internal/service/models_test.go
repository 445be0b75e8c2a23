package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElarizT/Mavericks/internal/domain"
)

const modelConfigsJSON = `[
	{"provider":"openai","configs":[{"id":"c1","name":"gpt-4o","model":"gpt-4o","temperature":0.2}]},
	{"provider":"anthropic","configs":[{"id":"c2","name":"claude"}]}
]`

func modelConfigsHandler(calls *atomic.Int32, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(body))
	}
}

func TestModelService_FirstIsCached(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/configs", modelConfigsHandler(&calls, modelConfigsJSON))
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")
	models := NewModelService(api, NewModelsCache(time.Minute))
	ctx := context.Background()

	first, err := models.First(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "openai", first.Provider)
	assert.Equal(t, "gpt-4o", first.LLMName())
	assert.True(t, first.Usable())

	configs, err := models.Configs(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 2)
	assert.EqualValues(t, 1, calls.Load())

	// First hands out a copy.
	first.Provider = "changed"
	again, err := models.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "openai", again.Provider)
}

func TestModelService_EmptyListing(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/configs", modelConfigsHandler(&calls, `[]`))
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")
	models := NewModelService(api, NewModelsCache(time.Minute))

	first, err := models.First(context.Background())
	require.NoError(t, err)
	assert.Nil(t, first)

	// An empty listing is cached too.
	_, err = models.Configs(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestModelService_FetchError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/configs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")

	_, err := NewModelService(api, NewModelsCache(time.Minute)).First(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestModelService_Prompt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/prompt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"system_prompt":"You are a lawyer."}`))
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")

	prompt, err := NewModelService(api, NewModelsCache(time.Minute)).Prompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "You are a lawyer.", prompt)
}

func TestModelsCache(t *testing.T) {
	cache := NewModelsCache(20 * time.Millisecond)
	assert.Nil(t, cache.Get("tok"))

	cache.Set("tok", []domain.ProviderConfig{{Provider: "openai"}})
	assert.Len(t, cache.Get("tok"), 1)
	assert.Nil(t, cache.Get("other"))

	cache.Invalidate()
	assert.Nil(t, cache.Get("tok"))

	cache.Set("tok", []domain.ProviderConfig{})
	assert.NotNil(t, cache.Get("tok"))
	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, cache.Get("tok"))
}

func TestModelService_RefetchAfterRelogin(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/configs", modelConfigsHandler(&calls, modelConfigsJSON))
	api, creds := newTestAPI(t, mux)
	models := NewModelService(api, NewModelsCache(time.Minute))
	ctx := context.Background()

	login(t, creds, "tok")
	_, err := models.Configs(ctx)
	require.NoError(t, err)

	login(t, creds, "tok-2")
	_, err = models.Configs(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestModelService_Model(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/config/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c 1", r.PathValue("id"))
		w.Write([]byte(`{"id":"c 1","name":"gpt-4o","model":"gpt-4o","max_last_messages":8}`))
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")

	cfg, err := NewModelService(api, NewModelsCache(time.Minute)).Model(context.Background(), "c 1")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Name)
	assert.Equal(t, 8, cfg.MaxLastMessages)
}

func TestModelService_MutationsInvalidateCache(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/configs", modelConfigsHandler(&calls, modelConfigsJSON))
	mux.HandleFunc("POST /api/llm/model/provider", func(w http.ResponseWriter, r *http.Request) {
		var body domain.NewProvider
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, domain.ProviderOllama, body.Name)
		assert.Equal(t, "http://ollama:11434", body.Metadata["base_url"])
		w.Write([]byte(`{"id":"p1","provider":"ollama","api_key":"k"}`))
	})
	mux.HandleFunc("PATCH /api/llm/model/providers/{provider}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, domain.ProviderAzureOpenAI, r.PathValue("provider"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new-key", body["api_key"])
		w.Write([]byte(`{"id":"p2","provider":"azure openai","api_key":"new-key"}`))
	})
	mux.HandleFunc("POST /api/llm/model/config", func(w http.ResponseWriter, r *http.Request) {
		var body domain.NewModelConfig
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3", body.Model)
		w.Write([]byte(modelConfigsJSON))
	})
	mux.HandleFunc("PATCH /api/llm/model/config/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"temperature": 0.7}, body)
		w.Write([]byte(`{"id":"c1","name":"gpt-4o","temperature":0.7}`))
	})
	mux.HandleFunc("DELETE /api/llm/model/config/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c1", r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")
	models := NewModelService(api, NewModelsCache(time.Minute))
	ctx := context.Background()

	refetched := func(t *testing.T) {
		t.Helper()
		before := calls.Load()
		_, err := models.Configs(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+1, calls.Load())
	}
	refetched(t)

	provider, err := models.CreateProvider(ctx, domain.NewProvider{
		Name:     domain.ProviderOllama,
		Metadata: map[string]string{"base_url": "http://ollama:11434"},
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", provider.ID)
	refetched(t)

	provider, err = models.UpdateProvider(ctx, domain.ProviderAzureOpenAI, "new-key", nil)
	require.NoError(t, err)
	assert.Equal(t, "new-key", provider.APIKey)
	refetched(t)

	configs, err := models.CreateModel(ctx, domain.NewModelConfig{Name: "local", Model: "llama3", Provider: domain.ProviderOllama})
	require.NoError(t, err)
	assert.Len(t, configs, 2)
	refetched(t)

	temp := 0.7
	cfg, err := models.UpdateModel(ctx, "c1", domain.ModelConfigPatch{Temperature: &temp})
	require.NoError(t, err)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	refetched(t)

	require.NoError(t, models.DeleteModel(ctx, "c1"))
	refetched(t)
}

func TestModelService_FailedMutationKeepsCache(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/llm/model/configs", modelConfigsHandler(&calls, modelConfigsJSON))
	mux.HandleFunc("DELETE /api/llm/model/config/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Model config not found"}`))
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")
	models := NewModelService(api, NewModelsCache(time.Minute))
	ctx := context.Background()

	_, err := models.Configs(ctx)
	require.NoError(t, err)

	err = models.DeleteModel(ctx, "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	_, err = models.Configs(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
