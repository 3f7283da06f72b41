package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Retrieves the most relevant chunks for the question, sends them to
the configured model as context, and prints the grounded answer with
the chunks it was based on. Every question and answer is appended to
the local result log.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer record as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if answerer == nil {
		return errors.New("answer service not configured")
	}

	record, err := answerer.Answer(ctx, question)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			return errors.New("the index is empty; run 'askdocs ingest' first")
		}
		return fmt.Errorf("answering failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !record.Answered() {
		cmd.Printf("No answer produced: %s\n", record.Error)
		return nil
	}

	cmd.Println(*record.Answer)
	cmd.Println()
	cmd.Printf("Sources (%d):\n", record.SourceCount)
	for _, id := range record.SourceChunkIDs {
		cmd.Printf("  %s\n", id)
	}
	return nil
}
