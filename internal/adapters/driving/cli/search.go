package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

var (
	searchK      int
	searchFetchK int
	searchLambda float64
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the most relevant chunks for a query",
	Long: `Embeds the query and returns the top-k chunks selected by maximal
marginal relevance: each pick balances similarity to the query against
redundancy with the chunks already picked, so the results cover
different parts of the corpus. Lambda 1.0 is plain similarity ranking;
lambda 0.0 is maximal diversity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "k", "k", 0, "number of chunks to return (0 = configured default)")
	searchCmd.Flags().IntVar(&searchFetchK, "fetch-k", 0, "candidate pool size (0 = configured default)")
	searchCmd.Flags().Float64Var(&searchLambda, "lambda", -1, "relevance/diversity balance in [0,1] (-1 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if retriever == nil {
		return errors.New("retrieval service not configured")
	}

	opts, err := retrievalOptions()
	if err != nil {
		return err
	}

	results, err := retriever.Retrieve(ctx, query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			return errors.New("the index is empty; run 'askdocs ingest' first")
		}
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchList(cmd, results)
	return nil
}

// retrievalOptions merges command flags over the configured defaults.
func retrievalOptions() (domain.RetrievalOptions, error) {
	settings, err := currentSettings()
	if err != nil {
		return domain.RetrievalOptions{}, err
	}

	opts := domain.RetrievalOptions{
		K:      settings.Retrieval.K,
		FetchK: settings.Retrieval.FetchK,
		Lambda: settings.Retrieval.Lambda,
	}
	if searchK > 0 {
		opts.K = searchK
	}
	if searchFetchK > 0 {
		opts.FetchK = searchFetchK
	}
	if searchLambda >= 0 {
		opts.Lambda = searchLambda
	}
	return opts, nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	type searchResult struct {
		ChunkID    string  `json:"chunk_id"`
		DocumentID string  `json:"document_id"`
		Document   string  `json:"document"`
		Similarity float64 `json:"similarity"`
		Content    string  `json:"content"`
	}
	out := make([]searchResult, 0, len(results))
	for _, r := range results {
		out = append(out, searchResult{
			ChunkID:    r.Chunk.ID,
			DocumentID: r.Chunk.DocumentID,
			Document:   r.Document.Title,
			Similarity: r.Similarity,
			Content:    r.Chunk.Content,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchList(cmd *cobra.Command, results []domain.RetrievedChunk) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%s, %.3f)\n", i+1, r.Document.Title, r.Chunk.ID, r.Similarity)
		cmd.Printf("      %s\n", snippet(r.Chunk.Content, 160))
		cmd.Println()
	}
}

// snippet trims content to a single display line.
func snippet(content string, limit int) string {
	runes := []rune(content)
	for i, r := range runes {
		if r == '\n' {
			runes = runes[:i]
			break
		}
	}
	if len(runes) > limit {
		runes = append(runes[:limit], '…')
	}
	return string(runes)
}
