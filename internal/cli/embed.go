package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"cellar/internal/usecase"
)

var embedForce bool

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate embeddings for enriched wines",
	Long: `Embed every catalog wine whose enrichment carries a real description.
Wines that already have an embedding are skipped unless --force is given.
Calls are paced by batch.interval and failures are reported per wine.

Examples:
  cellar embed
  cellar embed --force`,
	RunE: runEmbed,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "re-embed wines that already have an embedding")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	if embedder == nil {
		return fmt.Errorf("embeddings are disabled; set embedding.enabled in cellar.yaml")
	}

	st, err := openStore(ctx, GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("Embedding config: provider=%s, model=%s, dimension=%d\n", cfg.Embedding.Provider, embedder.ModelName(), embedder.Dimension())

	var (
		bar   *progressbar.ProgressBar
		barMu sync.Mutex
	)
	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = newProgressBar(total, "[cyan]Embedding[reset]")
		}
		_ = bar.Set(done)
	}

	embedUC := usecase.NewEmbedUseCase(st, embedder, newThrottle(cfg), cfg.Batch.Workers)
	result, err := embedUC.EmbedAll(ctx, usecase.EmbedOptions{Force: embedForce, Progress: progress})

	fmt.Printf("\nEmbedding complete:\n")
	fmt.Printf("  Embedded: %d\n", result.Processed)
	fmt.Printf("  Skipped:  %d\n", result.Skipped)
	fmt.Printf("  Failed:   %d\n", result.Failed)
	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s: %s\n", e.ID, e.Reason)
		}
	}

	if err != nil {
		return fmt.Errorf("embedding interrupted: %w", err)
	}
	return nil
}
