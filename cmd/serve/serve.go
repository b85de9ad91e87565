// Package serve implements the HTTP API server subcommand.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/birddex/internal/api"
	"github.com/tphakala/birddex/internal/conf"
	"github.com/tphakala/birddex/internal/datastore"
	"github.com/tphakala/birddex/internal/logging"
	"github.com/tphakala/birddex/internal/observability"
	"github.com/tphakala/birddex/internal/taxonomy"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Start the taxonomy and life-list API on the configured port.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")
	cmd.Flags().StringVar(&settings.Taxonomy.RemoteURL, "taxonomy-url", viper.GetString("taxonomy.remoteurl"), "URL to refresh the taxonomy dataset from at startup")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

// loadCatalog builds the species catalog from, in order of preference, the
// remote dataset URL, the configured file path, or the embedded dataset.
func loadCatalog(ctx context.Context, settings *conf.Settings) (*taxonomy.Catalog, error) {
	if settings.Taxonomy.RemoteURL != "" {
		fetcher, err := taxonomy.NewFetcher(taxonomy.FetcherConfig{
			URL:      settings.Taxonomy.RemoteURL,
			CacheTTL: time.Duration(settings.Taxonomy.CacheTTLHours) * time.Hour,
		})
		if err != nil {
			return nil, err
		}
		catalog, err := fetcher.FetchCatalog(ctx)
		if err == nil {
			return catalog, nil
		}
		logging.Warn("remote taxonomy fetch failed, falling back to local dataset", "error", err)
	}
	return taxonomy.Load(settings.Taxonomy.Path)
}

func runServer(ctx context.Context, settings *conf.Settings) error {
	logger := logging.ForService("serve")

	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database backend configured")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()

	catalog, err := loadCatalog(ctx, settings)
	if err != nil {
		return fmt.Errorf("loading taxonomy: %w", err)
	}
	logger.Info("taxonomy catalog loaded", "species", catalog.Len())

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("setting up metrics: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	controller := api.New(e, store, settings, catalog, metrics)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		logger.Info("starting API server", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return controller.Shutdown()
	}
	return nil
}
