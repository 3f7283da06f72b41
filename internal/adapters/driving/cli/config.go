package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration",
	Long: `View and change the configuration stored in ~/.askdocs/config.toml.

Keys use dot notation, for example:
  corpus.dir              directory documents are ingested from
  chunking.size           chunk size in characters
  chunking.overlap        overlap between consecutive chunks
  retrieval.k             chunks returned per query
  retrieval.fetch_k       candidate pool size before selection
  retrieval.lambda        relevance/diversity balance in [0,1]
  embedding.provider      openai or ollama
  embedding.model         embedding model name
  llm.provider            openai, ollama, or anthropic
  llm.model               generation model name`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [embedding|llm]",
	Short: "Store an API key without echoing it",
	Long: `Prompts for the provider API key with terminal echo disabled and
stores it for the given service. Keys can also come from the
OPENAI_API_KEY and ANTHROPIC_API_KEY environment variables, which take
effect without being written to the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Corpus]")
	cmd.Printf("  Directory: %s\n", settings.CorpusDir)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", settings.Retrieval.K)
	cmd.Printf("  Fetch K: %d\n", settings.Retrieval.FetchK)
	cmd.Printf("  Lambda: %.2f\n", settings.Retrieval.Lambda)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider)
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	printProviderDetails(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider)
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printProviderDetails(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Max attempts: %d\n", settings.Retry.MaxAttempts)
	cmd.Printf("  Requests per second: %.1f\n", settings.Retry.RequestsPerSecond)

	return nil
}

func printProviderDetails(cmd *cobra.Command, provider domain.Provider, baseURL, apiKey string) {
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider == domain.ProviderOllama {
		return
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := settingsService.SetKey(key, parseConfigValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	// Surface invalid combinations immediately rather than at next use.
	if _, err := settingsService.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

// parseConfigValue keeps numeric and boolean values typed in the TOML
// file instead of storing everything as strings.
func parseConfigValue(raw string) any {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return raw
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	var key string
	switch args[0] {
	case "embedding":
		key = "embedding.api_key"
	case "llm":
		key = "llm.api_key"
	default:
		return fmt.Errorf("unknown service %q: expected embedding or llm", args[0])
	}

	cmd.Print("API key: ")
	value, err := readSecret()
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}
	if value == "" {
		return errors.New("no key entered")
	}

	if err := settingsService.SetKey(key, value); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}
	cmd.Printf("Stored %s\n", key)
	return nil
}

// readSecret reads a line without echo when stdin is a terminal.
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}
	cmd.Println(settingsService.Path())
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
