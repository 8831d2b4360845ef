package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrUnsupportedLanguage is returned when the feed language is not one
	// of SupportedLanguages.
	ErrUnsupportedLanguage = errors.New("unsupported language: use one of en, fr, de, es, it, pt")

	// ErrNoSource is returned when every source is disabled.
	ErrNoSource = errors.New("no source enabled: enable at least one of archive, poemdb, ebook, scanned")

	// ErrUnknownSource is returned when the sources list names an unknown source.
	ErrUnknownSource = errors.New("unknown source: use archive, poemdb, ebook or scanned")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidCount is returned when the load count is not positive.
	ErrInvalidCount = errors.New("invalid count: must be positive")

	// ErrInvalidMaxItems is returned when the feed cap is below the load count,
	// which would evict documents in the same load that rendered them.
	ErrInvalidMaxItems = errors.New("invalid max items: must be at least count")

	// ErrInvalidSegmentSize is returned when the teaser limit or chunk size is
	// not positive.
	ErrInvalidSegmentSize = errors.New("invalid teaser limit or chunk size: must be positive")

	// ErrInvalidHubThreshold is returned when the hub threshold is not positive.
	ErrInvalidHubThreshold = errors.New("invalid hub threshold: must be positive")

	// ErrInvalidLinkDensity is returned when the link density is outside (0, 1].
	ErrInvalidLinkDensity = errors.New("invalid max link density: must be greater than 0 and at most 1")

	// ErrInvalidConfidence is returned when the language confidence is outside [0, 1].
	ErrInvalidConfidence = errors.New("invalid language confidence: must be between 0 and 1")

	// ErrConflictingOutputFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")
)
