package config

// LanguageConfig holds settings for one feed language.
type LanguageConfig struct {
	// ArchiveURL overrides the archive API endpoint for this language.
	ArchiveURL string `yaml:"archiveURL,omitempty"`

	// SearchTerms replaces the built-in archive search terms.
	SearchTerms []string `yaml:"searchTerms,omitempty"`

	// Categories are archive categories whose members are drawn as
	// candidates, e.g. "Poèmes" or "Fables".
	Categories []string `yaml:"categories,omitempty"`

	// Sources overrides the enabled sources for this language.
	Sources []string `yaml:"sources,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// HubThreshold overrides the hub threshold for this language's archive.
	// If zero, the global HubThreshold is used.
	HubThreshold int `yaml:"hubThreshold,omitempty"`

	// MaxLinkDensity overrides the scorer's link density threshold.
	MaxLinkDensity float64 `yaml:"maxLinkDensity,omitempty"`

	// ScannedCollection restricts the scanned-book source to one collection.
	ScannedCollection string `yaml:"scannedCollection,omitempty"`
}

// File represents the structure of the .litfeed configuration file.
type File struct {
	// Languages maps language codes to their configuration.
	Languages map[string]LanguageConfig `yaml:"languages,omitempty"`

	// Defaults applies to every language unless overridden.
	Defaults LanguageConfig `yaml:"defaults,omitempty"`
}

// GetLanguageConfig returns the configuration for a language, merging the
// language-specific settings over the defaults.
func (cf *File) GetLanguageConfig(language string) LanguageConfig {
	result := cf.Defaults

	lc, ok := cf.Languages[language]
	if !ok {
		return result
	}
	if lc.ArchiveURL != "" {
		result.ArchiveURL = lc.ArchiveURL
	}
	if len(lc.SearchTerms) > 0 {
		result.SearchTerms = lc.SearchTerms
	}
	if len(lc.Categories) > 0 {
		result.Categories = lc.Categories
	}
	if len(lc.Sources) > 0 {
		result.Sources = lc.Sources
	}
	if len(lc.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(lc.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range lc.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	if lc.HubThreshold != 0 {
		result.HubThreshold = lc.HubThreshold
	}
	if lc.MaxLinkDensity != 0 {
		result.MaxLinkDensity = lc.MaxLinkDensity
	}
	if lc.ScannedCollection != "" {
		result.ScannedCollection = lc.ScannedCollection
	}
	return result
}

// Apply merges the file settings for c.Language into c. Fields set in the
// file override the built-in defaults; callers apply CLI flags afterwards.
func (c *Config) Apply(cf *File) LanguageConfig {
	c.LanguageConfigs = cf
	if cf == nil {
		return LanguageConfig{}
	}
	lc := cf.GetLanguageConfig(c.Language)
	if lc.ArchiveURL != "" {
		c.ArchiveEndpoint = lc.ArchiveURL
	}
	if len(lc.Sources) > 0 {
		c.Sources = lc.Sources
	}
	if lc.HubThreshold != 0 {
		c.HubThreshold = lc.HubThreshold
	}
	if lc.MaxLinkDensity != 0 {
		c.MaxLinkDensity = lc.MaxLinkDensity
	}
	return lc
}
