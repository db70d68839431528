package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"cellar/internal/adapter/fs"
	"cellar/internal/usecase"
)

var importOwner string

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import wine observations from catalog files",
	Long: `Import wines listed in YAML catalog files. Each wine is linked to an
existing catalog entry when name, producer and vintage match, otherwise a
new entry is created. The catalog is stored in .cellar/catalog.db.

Examples:
  cellar import .                      # Import every catalog file below the current directory
  cellar import labels.yaml --owner ana  # Import one file into ana's inventory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importOwner, "owner", "", "add imported wines to this user's inventory")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	cfg := GetConfig()
	ctx := cmd.Context()

	st, err := openStore(ctx, GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	walker := fs.NewWalker(cfg.Catalog.Includes, cfg.Catalog.Excludes)
	importUC := usecase.NewImportUseCase(st, st, newResolver(cfg), walker)

	fmt.Printf("Scanning %s...\n", path)

	var (
		bar       *progressbar.ProgressBar
		barMu     sync.Mutex
		startTime = time.Now()
	)
	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			bar = newProgressBar(total, "[cyan]Importing[reset]")
		}
		_ = bar.Set(done)

		elapsed := time.Since(startTime)
		if rate := float64(done) / elapsed.Seconds(); rate > 0 {
			eta := time.Duration(float64(total-done)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Importing[reset] ETA: %s", formatDuration(eta)))
		}
	}

	result, err := importUC.ImportPath(ctx, path, importOwner, progress)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("\nImport complete:\n")
	fmt.Printf("  Wines created: %d\n", result.Created)
	fmt.Printf("  Wines linked:  %d\n", result.Linked)
	fmt.Printf("  Failed:        %d\n", result.Failed)
	if importOwner != "" {
		fmt.Printf("  Inventory:     %s\n", importOwner)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s: %s\n", e.ID, e.Reason)
		}
	}

	if cfg.Embedding.Enabled && result.Created+result.Linked > 0 {
		fmt.Println("\nRun 'cellar embed' to embed new enrichment data.")
	}
	return nil
}
