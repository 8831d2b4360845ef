package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "litfeed"

	// DefaultLanguage is the feed language when none is configured.
	DefaultLanguage = "en"

	// DefaultArchiveEndpoint is the MediaWiki API of the literary archive.
	// "{lang}" is replaced with the feed language.
	DefaultArchiveEndpoint = "https://{lang}.wikisource.org/w/api.php"

	// DefaultTimeout bounds each HTTP request. Full-text downloads of long
	// books are the slowest requests the feed makes.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies litfeed in HTTP requests. The archive's API
	// etiquette asks clients for a descriptive User-Agent.
	DefaultUserAgent = "litfeed/1.0 (+https://github.com/nao1215/litfeed)"

	// DefaultMaxBodySize limits the response body size to read. Plain-text
	// editions of long novels stay well below 8MB.
	DefaultMaxBodySize = 8 * 1024 * 1024

	// DefaultCount is the number of documents loaded per LoadMore.
	DefaultCount = 5

	// DefaultMaxItems is the number of live entries kept in the feed.
	DefaultMaxItems = 50

	// DefaultTeaserLimit is the teaser length in runes.
	DefaultTeaserLimit = 350

	// DefaultChunkSize is the reveal chunk length in runes.
	DefaultChunkSize = 700

	// DefaultHubThreshold is the number of sub-pages that makes a page a hub.
	DefaultHubThreshold = 5

	// DefaultMaxLinkDensity is the highest link density the quality scorer
	// accepts.
	DefaultMaxLinkDensity = 0.25

	// DefaultMinConfidence is the language detector confidence threshold.
	DefaultMinConfidence = 0.5

	// DefaultConcurrency is the number of adapters filled at once.
	DefaultConcurrency = 4
)

// Source names accepted in the sources list.
const (
	SourceArchive = "archive"
	SourcePoemDB  = "poemdb"
	SourceEbook   = "ebook"
	SourceScanned = "scanned"
)

// AllSources lists every source name in the order adapters are built.
var AllSources = []string{SourceArchive, SourcePoemDB, SourceEbook, SourceScanned}

// SupportedLanguages lists the feed languages.
var SupportedLanguages = []string{"en", "fr", "de", "es", "it", "pt"}

// Config holds all configuration options for litfeed.
// This struct is populated from the config file and CLI flags and passed
// through the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. Per-language settings live in the config file and are
// merged by File.GetLanguageConfig.
type Config struct {
	// Language is the ISO 639-1 code of the feed language.
	Language string

	// ArchiveEndpoint is the archive API URL; "{lang}" is substituted.
	ArchiveEndpoint string

	// Sources lists the enabled source adapters.
	Sources []string

	// ProxyAddress routes all requests through a SOCKS5 proxy in "host:port"
	// format. Empty means direct connections.
	ProxyAddress string

	// Timeout is the timeout of each HTTP request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Count is the number of documents loaded per LoadMore.
	Count int

	// MaxItems is the number of live entries kept in the feed.
	MaxItems int

	// TeaserLimit is the teaser length in runes.
	TeaserLimit int

	// ChunkSize is the reveal chunk length in runes.
	ChunkSize int

	// Full prints whole texts instead of teasers.
	Full bool

	// HubThreshold is the number of sub-pages that makes a page a hub.
	HubThreshold int

	// MaxLinkDensity is the highest link density the quality scorer accepts.
	MaxLinkDensity float64

	// MinConfidence is the language detector confidence threshold. Preloaded
	// documents detected as another language below it are dropped.
	MinConfidence float64

	// DetectLanguage enables the language gate on preloaded documents.
	DetectLanguage bool

	// Concurrency is the number of adapters filled at once.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONOutput writes newline-delimited JSON events.
	JSONOutput bool

	// MarkdownOutput writes one Markdown document at the end.
	MarkdownOutput bool

	// OutputFile is the output file path. Empty means stdout.
	OutputFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .litfeed in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// LanguageConfigs holds per-language settings loaded from the config file.
	LanguageConfigs *File

	// DBDir is the directory of the SQLite database holding the document
	// cache and session history. Defaults to the XDG data directory.
	DBDir string

	// NoDB disables the database; resolved documents are then cached in
	// memory for the session only and history is not recorded.
	NoDB bool

	// CacheTTL drops cached documents older than this at startup.
	// Zero keeps them forever.
	CacheTTL time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Language:        DefaultLanguage,
		ArchiveEndpoint: DefaultArchiveEndpoint,
		Sources:         slices.Clone(AllSources),
		Timeout:         DefaultTimeout,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		Count:           DefaultCount,
		MaxItems:        DefaultMaxItems,
		TeaserLimit:     DefaultTeaserLimit,
		ChunkSize:       DefaultChunkSize,
		HubThreshold:    DefaultHubThreshold,
		MaxLinkDensity:  DefaultMaxLinkDensity,
		MinConfidence:   DefaultMinConfidence,
		DetectLanguage:  true,
		Concurrency:     DefaultConcurrency,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for litfeed.
// On Linux: ~/.local/share/litfeed
// On macOS: ~/Library/Application Support/litfeed
// On Windows: %LOCALAPPDATA%\litfeed
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for litfeed.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for litfeed.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first sentinel error found.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
func (c *Config) Validate() error {
	if !slices.Contains(SupportedLanguages, c.Language) {
		return ErrUnsupportedLanguage
	}

	if len(c.Sources) == 0 {
		return ErrNoSource
	}
	for _, s := range c.Sources {
		if !slices.Contains(AllSources, s) {
			return ErrUnknownSource
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Count <= 0 {
		return ErrInvalidCount
	}

	if c.MaxItems < c.Count {
		return ErrInvalidMaxItems
	}

	if c.TeaserLimit <= 0 || c.ChunkSize <= 0 {
		return ErrInvalidSegmentSize
	}

	if c.HubThreshold <= 0 {
		return ErrInvalidHubThreshold
	}

	if c.MaxLinkDensity <= 0 || c.MaxLinkDensity > 1 {
		return ErrInvalidLinkDensity
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return ErrInvalidConfidence
	}

	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingOutputFormats
	}

	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	return nil
}

// SourceEnabled reports whether the named source is enabled.
func (c *Config) SourceEnabled(name string) bool {
	return slices.Contains(c.Sources, name)
}
