package domain

import "fmt"

// Provider identifies a remote model provider.
type Provider string

// Supported providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderOllama, ProviderAnthropic:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, s)
	}
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	Size    int
	Overlap int
}

// RetrievalSettings carries the default retrieval options.
type RetrievalSettings struct {
	K      int
	FetchK int
	Lambda float64
}

// EmbeddingSettings selects and configures the embedding provider.
type EmbeddingSettings struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
}

// LLMSettings selects and configures the generation provider.
type LLMSettings struct {
	Provider Provider
	Model    string
	BaseURL  string
	APIKey   string
}

// RetrySettings bounds retries of transient provider failures.
type RetrySettings struct {
	// MaxAttempts is the total number of tries, first call included.
	MaxAttempts int

	// RequestsPerSecond throttles outbound provider calls.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// AppSettings is the full application configuration.
type AppSettings struct {
	// CorpusDir is the directory documents are ingested from.
	CorpusDir string

	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retry     RetrySettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		CorpusDir: "sample_docs",
		Chunking: ChunkingSettings{
			Size:    1200,
			Overlap: 200,
		},
		Retrieval: RetrievalSettings{
			K:      7,
			FetchK: 20,
			Lambda: 0.5,
		},
		Embedding: EmbeddingSettings{
			Provider: ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		LLM: LLMSettings{
			Provider: ProviderOpenAI,
			Model:    "gpt-4o-mini",
		},
		Retry: RetrySettings{
			MaxAttempts:       3,
			RequestsPerSecond: 5,
		},
	}
}

// Validate checks the settings for values that cannot work.
func (s *AppSettings) Validate() error {
	if s.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidConfig)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.Size {
		return fmt.Errorf("%w: overlap must be in [0, chunk size)", ErrInvalidConfig)
	}
	opts := RetrievalOptions{
		K:      s.Retrieval.K,
		FetchK: s.Retrieval.FetchK,
		Lambda: s.Retrieval.Lambda,
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if _, err := ParseProvider(s.Embedding.Provider.String()); err != nil {
		return err
	}
	if _, err := ParseProvider(s.LLM.Provider.String()); err != nil {
		return err
	}
	if s.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: retry attempts must be positive", ErrInvalidConfig)
	}
	if s.Retry.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second cannot be negative", ErrInvalidConfig)
	}
	return nil
}
