// Package cli implements the askdocs command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/config/file"
	embollama "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/embedding/openai"
	llmanthropic "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/resultlog"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/source/filesystem"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/vector/bruteforce"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/core/services"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services used by the commands. Populated by ensureServices on first
// use; tests inject mocks directly.
var (
	settingsService *services.SettingsService
	ingestor        driving.Ingestor
	retriever       driving.Retriever
	answerer        driving.Answerer
	validator       driving.Validator

	// corpusSource backs ingest --watch and --init-sample.
	corpusSource *filesystem.Source

	appSettings *domain.AppSettings
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Ask questions about your local documents",
	Long: `askdocs indexes a directory of documents and answers questions
about them, citing the passages each answer is grounded on. Retrieval
uses maximal marginal relevance so the context sent to the model covers
different parts of the corpus instead of near-duplicates.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the reported version (set from main via ldflags).
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// appDir returns ~/.askdocs, creating it if needed.
func appDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".askdocs")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating app directory: %w", err)
	}
	return dir, nil
}

// ensureSettings wires the config store and settings service. Cheaper
// than the full pipeline; the config command needs only this much.
func ensureSettings() error {
	if settingsService != nil {
		return nil
	}

	// API keys may live in a local .env instead of the config file.
	_ = godotenv.Load()

	dir, err := appDir()
	if err != nil {
		return err
	}
	store, err := configfile.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// ensureServices wires the full pipeline: providers, storage, index,
// and the core services. Idempotent; tests pre-populate the service
// variables to bypass it.
func ensureServices(ctx context.Context) error {
	if ingestor != nil && retriever != nil && answerer != nil && validator != nil {
		return nil
	}

	if err := ensureSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}
	appSettings = settings

	embedder, err := buildEmbeddingService(settings.Embedding)
	if err != nil {
		return err
	}
	llm, err := buildLLMService(settings.LLM)
	if err != nil {
		return err
	}

	dir, err := appDir()
	if err != nil {
		return err
	}
	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	index, err := bruteforce.NewFromStore(ctx, store)
	if err != nil {
		return fmt.Errorf("loading vector index: %w", err)
	}
	sink, err := resultlog.NewSink(filepath.Join(dir, "data", resultlog.DefaultFileName))
	if err != nil {
		return fmt.Errorf("opening result log: %w", err)
	}

	corpusSource = filesystem.New(settings.CorpusDir)

	ingestService, err := services.NewIngestService(corpusSource, embedder, store, index, settings)
	if err != nil {
		return err
	}
	retrievalService := services.NewRetrievalService(embedder, index, store, settings)
	answerService := services.NewAnswerService(retrievalService, llm, sink, settings)

	ingestor = ingestService
	retriever = retrievalService
	answerer = answerService
	validator = services.NewValidationService(answerService)

	logger.Debug("pipeline wired: corpus=%s embedding=%s/%s llm=%s/%s",
		settings.CorpusDir,
		settings.Embedding.Provider, settings.Embedding.Model,
		settings.LLM.Provider, settings.LLM.Model)
	return nil
}

func buildEmbeddingService(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case domain.ProviderOpenAI:
		svc, err := embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai embeddings: %w", err)
		}
		return svc, nil
	case domain.ProviderOllama:
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	default:
		return nil, fmt.Errorf("%w: provider %q does not serve embeddings",
			domain.ErrInvalidConfig, cfg.Provider)
	}
}

func buildLLMService(cfg domain.LLMSettings) (driven.LLMService, error) {
	switch cfg.Provider {
	case domain.ProviderOpenAI:
		svc, err := llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai llm: %w", err)
		}
		return svc, nil
	case domain.ProviderOllama:
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case domain.ProviderAnthropic:
		svc, err := llmanthropic.NewLLMService(llmanthropic.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring anthropic llm: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q",
			domain.ErrInvalidConfig, cfg.Provider)
	}
}

// currentSettings returns the loaded settings, falling back to the
// settings service when the pipeline has not been wired.
func currentSettings() (*domain.AppSettings, error) {
	if appSettings != nil {
		return appSettings, nil
	}
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService.Get()
}
