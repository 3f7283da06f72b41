package services

import (
	"fmt"
	"os"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyCorpusDir       = "corpus.dir"
	keyChunkSize       = "chunking.size"
	keyChunkOverlap    = "chunking.overlap"
	keyRetrievalK      = "retrieval.k"
	keyRetrievalFetchK = "retrieval.fetch_k"
	keyRetrievalLambda = "retrieval.lambda"
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyRetryAttempts   = "retry.max_attempts"
	keyRetryRate       = "retry.requests_per_second"
)

// Environment fallbacks for API keys, so keys never have to live in the
// config file.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

// SettingsService reads and writes application settings through the
// config store, applying defaults for anything unset.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider, err := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	if err != nil {
		return nil, err
	}
	llmProvider, err := s.getProvider(keyLLMProvider, defaults.LLM.Provider)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		CorpusDir: s.getString(keyCorpusDir, defaults.CorpusDir),
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			K:      s.getInt(keyRetrievalK, defaults.Retrieval.K),
			FetchK: s.getInt(keyRetrievalFetchK, defaults.Retrieval.FetchK),
			Lambda: s.getFloatAllowZero(keyRetrievalLambda, defaults.Retrieval.Lambda),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Retry: domain.RetrySettings{
			MaxAttempts:       s.getInt(keyRetryAttempts, defaults.Retry.MaxAttempts),
			RequestsPerSecond: s.getFloat(keyRetryRate, defaults.Retry.RequestsPerSecond),
		},
	}

	applyEnvKeys(settings)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	pairs := []struct {
		key   string
		value any
	}{
		{keyCorpusDir, settings.CorpusDir},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyRetrievalK, settings.Retrieval.K},
		{keyRetrievalFetchK, settings.Retrieval.FetchK},
		{keyRetrievalLambda, settings.Retrieval.Lambda},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyRetryAttempts, settings.Retry.MaxAttempts},
		{keyRetryRate, settings.Retry.RequestsPerSecond},
	}
	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	// API keys are only written when set, so a key cleared from the
	// environment is not wiped from the file by an unrelated save.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// SetKey stores a raw config key. Used by `config set`.
func (s *SettingsService) SetKey(key string, value any) error {
	return s.configStore.Set(key, value)
}

// Path returns the location of the config file.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if v := s.configStore.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// getIntAllowZero distinguishes an explicit zero from an unset key.
func (s *SettingsService) getIntAllowZero(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return fallback
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	if v := s.configStore.GetFloat(key); v != 0 {
		return v
	}
	return fallback
}

// getFloatAllowZero distinguishes an explicit zero from an unset key.
// Lambda needs this: zero is a valid setting (maximal diversity).
func (s *SettingsService) getFloatAllowZero(key string, fallback float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return fallback
}

// getProvider surfaces an unparseable provider name instead of quietly
// substituting the default, so a typo in the config file fails at load.
func (s *SettingsService) getProvider(key string, fallback domain.Provider) (domain.Provider, error) {
	raw := s.configStore.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	return domain.ParseProvider(raw)
}

// applyEnvKeys fills empty API keys from the environment.
func applyEnvKeys(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = envKeyFor(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = envKeyFor(settings.LLM.Provider)
	}
}

func envKeyFor(provider domain.Provider) string {
	switch provider {
	case domain.ProviderOpenAI:
		return os.Getenv(envOpenAIKey)
	case domain.ProviderAnthropic:
		return os.Getenv(envAnthropicKey)
	default:
		return ""
	}
}
