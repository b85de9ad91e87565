package taxonomy

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/birddex/internal/errors"
	"github.com/tphakala/birddex/internal/logging"
)

// Package-level logger specific to the remote taxonomy fetcher. Initialized
// lazily so catalog and resolver tests never touch the filesystem.
var (
	remoteLogger   *slog.Logger
	remoteLevelVar = new(slog.LevelVar)
	remoteLogOnce  sync.Once
	closeRemoteLog func() error
)

func initRemoteLogger() {
	remoteLogOnce.Do(func() {
		var err error
		logFilePath := filepath.Join("logs", "taxonomy.log")
		remoteLevelVar.Set(slog.LevelInfo)

		remoteLogger, closeRemoteLog, err = logging.NewFileLogger(logFilePath, "taxonomy", remoteLevelVar)
		if err != nil {
			log.Printf("Failed to initialize taxonomy file logger at %s: %v. Service logging disabled.", logFilePath, err)
			fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: remoteLevelVar})
			remoteLogger = slog.New(fbHandler).With("service", "taxonomy")
			closeRemoteLog = func() error { return nil }
		}
	})
}

const remoteCacheKey = "taxonomy-dataset"

// FetcherConfig holds configuration for the remote taxonomy fetcher.
type FetcherConfig struct {
	URL      string        `json:"url"`
	Timeout  time.Duration `json:"timeout"`
	CacheTTL time.Duration `json:"cache_ttl"`
}

// DefaultFetcherConfig returns a FetcherConfig with sensible defaults.
// The taxonomy dataset rarely changes, so the cache TTL is generous.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:  30 * time.Second,
		CacheTTL: 24 * time.Hour,
	}
}

// Fetcher downloads the taxonomy dataset over HTTP and caches the parsed
// records for the configured TTL.
type Fetcher struct {
	config     FetcherConfig
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewFetcher creates a remote taxonomy fetcher. The dataset URL is required.
func NewFetcher(config FetcherConfig) (*Fetcher, error) {
	if config.URL == "" {
		return nil, errors.Newf("taxonomy dataset URL is required").
			Category(errors.CategoryConfiguration).
			Component("taxonomy").
			Build()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultFetcherConfig().Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultFetcherConfig().CacheTTL
	}

	initRemoteLogger()

	f := &Fetcher{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:  cache.New(config.CacheTTL, config.CacheTTL*2),
		logger: remoteLogger,
	}

	f.logger.Info("taxonomy fetcher initialized",
		"url", config.URL,
		"cache_ttl", config.CacheTTL)

	return f, nil
}

// Fetch downloads and parses the taxonomy dataset, serving the parsed
// records from cache while the TTL holds.
func (f *Fetcher) Fetch(ctx context.Context) ([]Record, error) {
	if cached, found := f.cache.Get(remoteCacheKey); found {
		if records, ok := cached.([]Record); ok {
			f.logger.Debug("taxonomy cache hit", "records", len(records))
			return records, nil
		}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.URL, http.NoBody)
	if err != nil {
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryNetwork).
			NetworkContext(f.config.URL, f.config.Timeout).
			Build()
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("taxonomy download failed", "url", f.config.URL, "error", err)
		return nil, errors.New(err).
			Component("taxonomy").
			Category(errors.CategoryNetwork).
			NetworkContext(f.config.URL, f.config.Timeout).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Errorf("taxonomy download returned status %d", resp.StatusCode)).
			Component("taxonomy").
			Category(errors.CategoryHTTP).
			NetworkContext(f.config.URL, f.config.Timeout).
			Context("status_code", resp.StatusCode).
			Build()
	}

	records, err := ParseRecords(resp.Body)
	if err != nil {
		return nil, err
	}

	f.cache.Set(remoteCacheKey, records, cache.DefaultExpiration)
	f.logger.Info("taxonomy dataset downloaded",
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds())

	return records, nil
}

// FetchCatalog downloads the dataset and builds a catalog from it.
func (f *Fetcher) FetchCatalog(ctx context.Context) (*Catalog, error) {
	records, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

// InvalidateCache drops the cached dataset so the next Fetch re-downloads.
func (f *Fetcher) InvalidateCache() {
	f.cache.Delete(remoteCacheKey)
}
