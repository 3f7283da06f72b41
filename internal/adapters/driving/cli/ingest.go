package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs-cli/internal/adapters/driven/source/filesystem"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs-cli/internal/logger"
)

var (
	ingestWatch      bool
	ingestInitSample bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the corpus directory",
	Long: `Discovers documents in the corpus directory, splits them into
overlapping chunks, embeds each chunk, and stores everything in the
local index. Chunk identifiers are deterministic, so re-running over an
unchanged corpus is a no-op.

With --watch, stays running and re-ingests whenever files under the
corpus directory change.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest on corpus changes")
	ingestCmd.Flags().BoolVar(&ingestInitSample, "init-sample", false, "write the sample corpus before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if ingestInitSample {
		paths, err := initSampleCorpus()
		if err != nil {
			return err
		}
		for _, path := range paths {
			cmd.Printf("Wrote %s\n", path)
		}
	}

	if err := ensureServices(ctx); err != nil {
		return err
	}
	if ingestor == nil {
		return errors.New("ingest service not configured")
	}

	stats, err := ingestor.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	printIngestStats(cmd, stats)

	if !ingestWatch {
		return nil
	}
	if corpusSource == nil {
		return errors.New("corpus source not configured")
	}

	watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	err = corpusSource.Watch(watchCtx, func() {
		stats, ingestErr := ingestor.Ingest(watchCtx)
		if ingestErr != nil {
			logger.Warn("re-ingestion failed: %v", ingestErr)
			return
		}
		printIngestStats(cmd, stats)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watching corpus: %w", err)
	}
	return nil
}

// initSampleCorpus writes the bundled sample documents into the
// configured corpus directory and returns the paths written.
func initSampleCorpus() ([]string, error) {
	if err := ensureSettings(); err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	written, err := filesystem.WriteSampleCorpus(settings.CorpusDir)
	if err != nil {
		return nil, fmt.Errorf("writing sample corpus: %w", err)
	}
	return written, nil
}

func printIngestStats(cmd *cobra.Command, stats driving.IngestStats) {
	cmd.Printf("Ingested %d document(s): %d chunk(s) indexed, %d unchanged\n",
		stats.Documents, stats.Chunks, stats.Skipped)
	if stats.Removed > 0 {
		cmd.Printf("Removed %d stale document(s) no longer in the corpus\n", stats.Removed)
	}
}
