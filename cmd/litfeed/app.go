package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/litfeed/internal/archive"
	"github.com/nao1215/litfeed/internal/config"
	"github.com/nao1215/litfeed/internal/database"
	"github.com/nao1215/litfeed/internal/httpclient"
	"github.com/nao1215/litfeed/internal/language"
	"github.com/nao1215/litfeed/internal/log"
	"github.com/nao1215/litfeed/internal/quality"
	"github.com/nao1215/litfeed/internal/resolver"
	"github.com/nao1215/litfeed/internal/source"
	"github.com/spf13/cobra"
)

// app holds the components shared by the feed and resolve commands.
type app struct {
	cfg      *config.Config
	lang     config.LanguageConfig
	logger   *slog.Logger
	http     *httpclient.Client
	archive  *archive.Client
	scorer   *quality.Scorer
	detector *language.Detector

	// db is nil when the database is disabled.
	db *database.DB
}

// newApp builds the shared components. The caller must Close the app.
func newApp(ctx context.Context, cfg *config.Config, lc config.LanguageConfig, logger *slog.Logger) (*app, error) {
	hc, err := httpclient.New(
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithUserAgent(cfg.UserAgent),
		httpclient.WithMaxBodySize(cfg.MaxBodySize),
		httpclient.WithHeaders(lc.Headers),
		httpclient.WithProxy(cfg.ProxyAddress),
		httpclient.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	a := &app{
		cfg:    cfg,
		lang:   lc,
		logger: logger,
		http:   hc,
		archive: archive.NewClient(hc,
			archive.WithEndpoint(cfg.ArchiveEndpoint),
			archive.WithLogger(logger),
		),
		scorer: newScorer(cfg.MaxLinkDensity),
	}
	if cfg.DetectLanguage {
		a.detector = language.NewDetector(cfg.MinConfidence)
	}

	if cfg.NoDB {
		return a, nil
	}

	opts := database.DefaultOptions()
	opts.Logger = logger
	a.db, err = database.Open(cfg.DBDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", a.db.Path())

	if cfg.CacheTTL > 0 {
		n, err := a.db.Prune(ctx, cfg.CacheTTL)
		if err != nil {
			logger.Warn("failed to prune document cache", "error", err)
		} else if n > 0 {
			logger.Info("pruned document cache", "removed", n, "ttl", cfg.CacheTTL)
		}
	}
	return a, nil
}

// Close releases the database.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// cache returns the resolution cache: the database when enabled, otherwise
// a session-scoped memory cache.
func (a *app) cache() resolver.Cache {
	if a.db != nil {
		return a.db
	}
	return resolver.NewMemoryCache()
}

// resolver creates the page resolver.
func (a *app) resolver() *resolver.Resolver {
	return resolver.New(a.archive,
		resolver.WithCache(a.cache()),
		resolver.WithScorer(a.scorer),
		resolver.WithHubThreshold(a.cfg.HubThreshold),
		resolver.WithConcurrency(a.cfg.Concurrency),
		resolver.WithLogger(a.logger),
	)
}

// adapters creates the enabled source adapters in config.AllSources order.
func (a *app) adapters() []source.Adapter {
	var adapters []source.Adapter
	for _, name := range config.AllSources {
		if !a.cfg.SourceEnabled(name) {
			continue
		}
		switch name {
		case config.SourceArchive:
			opts := []source.ArchiveSearchOption{
				source.WithRandomPages(a.archive),
				source.WithSearchLogger(a.logger),
			}
			if len(a.lang.SearchTerms) > 0 {
				opts = append(opts, source.WithSearchTerms(map[string][]string{
					a.cfg.Language: a.lang.SearchTerms,
				}))
			}
			if len(a.lang.Categories) > 0 {
				opts = append(opts, source.WithCategories(a.archive, map[string][]string{
					a.cfg.Language: a.lang.Categories,
				}))
			}
			adapters = append(adapters, source.NewArchiveSearch(a.archive, opts...))
		case config.SourcePoemDB:
			adapters = append(adapters, source.NewPoemDB(a.http,
				source.WithPoemGate(a.scorer, a.detector),
				source.WithPoemLogger(a.logger),
			))
		case config.SourceEbook:
			adapters = append(adapters, source.NewEbookDB(a.http,
				source.WithEbookGate(a.scorer, a.detector),
				source.WithEbookLogger(a.logger),
			))
		case config.SourceScanned:
			opts := []source.ScannedOption{
				source.WithScannedGate(a.scorer, a.detector),
				source.WithScannedLogger(a.logger),
			}
			if a.lang.ScannedCollection != "" {
				opts = append(opts, source.WithScannedCollection(a.lang.ScannedCollection))
			}
			adapters = append(adapters, source.NewScannedBooks(a.http, opts...))
		}
	}
	return adapters
}

// newScorer returns a quality scorer with the given link density threshold.
func newScorer(maxLinkDensity float64) *quality.Scorer {
	th := quality.DefaultThresholds()
	if maxLinkDensity > 0 {
		th.MaxLinkDensity = maxLinkDensity
	}
	return quality.NewScorer(quality.WithThresholds(th))
}

// addConfigFlags registers the flags shared by commands that reach the
// archive.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Feed language (ISO 639-1: "+strings.Join(config.SupportedLanguages, ", ")+")")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .litfeed in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().String("proxy", "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().Int("hub-threshold", config.DefaultHubThreshold,
		"Number of sub-page links that marks a summary hub")
	cmd.Flags().Float64("max-link-density", config.DefaultMaxLinkDensity,
		"Highest share of link text a page may have to be accepted")
	addDBFlags(cmd)
	cmd.Flags().Duration("cache-ttl", 0,
		"Drop cached documents older than this at startup (0 keeps them forever)")
}

// buildConfig creates a Config from the configuration file and flags.
// Flags override file values only when they were set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, config.LanguageConfig, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Language, err = flags.GetString("lang"); err != nil {
		return nil, config.LanguageConfig{}, err
	}
	cfg.Language = strings.ToLower(cfg.Language)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, config.LanguageConfig{}, err
	}

	// An explicitly given file must exist; otherwise a missing file means
	// built-in defaults.
	var file *config.File
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		if file, err = config.LoadConfigFile(path); err != nil {
			return nil, config.LanguageConfig{}, err
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, config.LanguageConfig{}, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	lc := cfg.Apply(file)

	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, lc, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, lc, err
	}
	if flags.Changed("hub-threshold") {
		if cfg.HubThreshold, err = flags.GetInt("hub-threshold"); err != nil {
			return nil, lc, err
		}
	}
	if flags.Changed("max-link-density") {
		if cfg.MaxLinkDensity, err = flags.GetFloat64("max-link-density"); err != nil {
			return nil, lc, err
		}
	}
	if err := readDBFlags(cmd, cfg); err != nil {
		return nil, lc, err
	}
	if cfg.CacheTTL, err = flags.GetDuration("cache-ttl"); err != nil {
		return nil, lc, err
	}

	if cfg.Verbose, err = getVerboseFlag(cmd); err != nil {
		return nil, lc, err
	}
	return cfg, lc, nil
}

// addDBFlags registers the database location flags.
func addDBFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the document cache and history database")
	cmd.Flags().Bool("no-db", false,
		"Do not use the on-disk document cache and history")
}

// readDBFlags copies the database flags into cfg.
func readDBFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}
	cfg.NoDB, err = cmd.Flags().GetBool("no-db")
	return err
}

// getVerboseFlag retrieves the verbose flag from the command or its root.
func getVerboseFlag(cmd *cobra.Command) (bool, error) {
	if f := cmd.Flags().Lookup("verbose"); f != nil {
		return cmd.Flags().GetBool("verbose")
	}
	if f := cmd.Root().PersistentFlags().Lookup("verbose"); f != nil {
		return cmd.Root().PersistentFlags().GetBool("verbose")
	}
	return false, nil
}

// newLogger creates the logger for cfg. JSON output gets JSON logs so that
// both streams stay machine-readable.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONOutput {
		return log.NewJSONLogger(w, cfg.Verbose)
	}
	return log.NewLogger(w, cfg.Verbose)
}

// openOutput returns the writer for command output and a close function.
// An empty path means the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
