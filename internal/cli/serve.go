package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cellar/internal/adapter/fs"
	"cellar/internal/adapter/httpapi"
	"cellar/internal/logging"
	"cellar/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolution and pairing HTTP API",
	Long: `Start an HTTP server exposing:

  POST   /v1/resolve                        resolve a wine observation
  POST   /v1/pairings                       rank wines for a dish
  GET    /v1/wines/{id}                     fetch a catalog wine
  POST   /v1/wines                          import wine observations
  POST   /v1/embeddings                     embed enriched wines (when enabled)
  GET    /v1/users/{user}/inventory         list a user's wines
  PUT    /v1/users/{user}/inventory/{wine}  add a wine
  DELETE /v1/users/{user}/inventory/{wine}  remove a wine
  GET    /healthz, /metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, GetRootDir(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	pairer, cached, err := newPairer(st, embedder, cfg)
	if err != nil {
		return err
	}

	r := newResolver(cfg)
	importUC := usecase.NewImportUseCase(st, st, r, fs.NewWalker(cfg.Catalog.Includes, cfg.Catalog.Excludes))
	opts := httpapi.Options{
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
		Importer:          importUC,
	}

	var embedUC *usecase.EmbedUseCase
	if embedder != nil {
		embedUC = usecase.NewEmbedUseCase(st, embedder, newThrottle(cfg), cfg.Batch.Workers)
		opts.Embedder = embedUC
	}
	if cached != nil {
		opts.OnInventoryChange = cached.Invalidate
		importUC.OnCatalogChange(cached.Invalidate)
		if embedUC != nil {
			embedUC.OnCatalogChange(cached.Invalidate)
		}
	}
	handler := httpapi.NewHandler(usecase.NewResolveUseCase(st, r), pairer, st, st, opts)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("cellar API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
