package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional, so each one is asserted here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default language is en", func(t *testing.T) {
		t.Parallel()
		if cfg.Language != "en" {
			t.Errorf("expected Language to be 'en', got %q", cfg.Language)
		}
	})

	t.Run("all sources are enabled", func(t *testing.T) {
		t.Parallel()
		if diff := cmp.Diff([]string{"archive", "poemdb", "ebook", "scanned"}, cfg.Sources); diff != "" {
			t.Errorf("sources mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("segmentation defaults are 350 and 700 runes", func(t *testing.T) {
		t.Parallel()
		if cfg.TeaserLimit != 350 || cfg.ChunkSize != 700 {
			t.Errorf("unexpected segmentation %d/%d", cfg.TeaserLimit, cfg.ChunkSize)
		}
	})

	t.Run("hub and link density thresholds match the scorer defaults", func(t *testing.T) {
		t.Parallel()
		if cfg.HubThreshold != 5 || cfg.MaxLinkDensity != 0.25 {
			t.Errorf("unexpected thresholds %d/%v", cfg.HubThreshold, cfg.MaxLinkDensity)
		}
	})

	t.Run("feed keeps at most 50 items", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxItems != 50 {
			t.Errorf("expected MaxItems to be 50, got %d", cfg.MaxItems)
		}
	})

	t.Run("database lives in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() || cfg.NoDB {
			t.Errorf("unexpected database settings %q, %v", cfg.DBDir, cfg.NoDB)
		}
	})

	t.Run("sources slice is not shared", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.Sources[0] = "changed"
		if AllSources[0] != SourceArchive {
			t.Error("NewConfig must copy AllSources")
		}
	})
}

// TestConfigValidate tests the Validate method. Each case breaks one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"default config is valid", func(*Config) {}, nil},
		{"unsupported language returns ErrUnsupportedLanguage", func(c *Config) { c.Language = "la" }, ErrUnsupportedLanguage},
		{"empty sources returns ErrNoSource", func(c *Config) { c.Sources = nil }, ErrNoSource},
		{"unknown source returns ErrUnknownSource", func(c *Config) { c.Sources = []string{"archive", "rss"} }, ErrUnknownSource},
		{"zero timeout returns ErrInvalidTimeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative body size returns ErrInvalidMaxBodySize", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"zero count returns ErrInvalidCount", func(c *Config) { c.Count = 0 }, ErrInvalidCount},
		{"max items below count returns ErrInvalidMaxItems", func(c *Config) { c.Count = 10; c.MaxItems = 5 }, ErrInvalidMaxItems},
		{"zero teaser returns ErrInvalidSegmentSize", func(c *Config) { c.TeaserLimit = 0 }, ErrInvalidSegmentSize},
		{"zero chunk returns ErrInvalidSegmentSize", func(c *Config) { c.ChunkSize = 0 }, ErrInvalidSegmentSize},
		{"zero hub threshold returns ErrInvalidHubThreshold", func(c *Config) { c.HubThreshold = 0 }, ErrInvalidHubThreshold},
		{"zero link density returns ErrInvalidLinkDensity", func(c *Config) { c.MaxLinkDensity = 0 }, ErrInvalidLinkDensity},
		{"link density above one returns ErrInvalidLinkDensity", func(c *Config) { c.MaxLinkDensity = 1.5 }, ErrInvalidLinkDensity},
		{"confidence above one returns ErrInvalidConfidence", func(c *Config) { c.MinConfidence = 1.5 }, ErrInvalidConfidence},
		{"json and markdown returns ErrConflictingOutputFormats", func(c *Config) { c.JSONOutput = true; c.MarkdownOutput = true }, ErrConflictingOutputFormats},
		{"negative cache ttl returns ErrInvalidCacheTTL", func(c *Config) { c.CacheTTL = -time.Hour }, ErrInvalidCacheTTL},
		{"markdown only is valid", func(c *Config) { c.MarkdownOutput = true }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestFileGetLanguageConfig tests merging language settings over defaults.
func TestFileGetLanguageConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: LanguageConfig{
			Sources:     []string{"archive", "ebook"},
			Headers:     map[string]string{"From": "reader@example.com", "X-Team": "default"},
			SearchTerms: []string{"poem"},
		},
		Languages: map[string]LanguageConfig{
			"fr": {
				ArchiveURL:   "https://fr.example.org/w/api.php",
				SearchTerms:  []string{"poème", "fable"},
				Categories:   []string{"Fables"},
				Headers:      map[string]string{"X-Team": "fr"},
				HubThreshold: 8,
			},
		},
	}

	t.Run("returns defaults for an unconfigured language", func(t *testing.T) {
		t.Parallel()

		got := cf.GetLanguageConfig("de")
		if diff := cmp.Diff(cf.Defaults, got); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("language settings override defaults", func(t *testing.T) {
		t.Parallel()

		want := LanguageConfig{
			ArchiveURL:   "https://fr.example.org/w/api.php",
			SearchTerms:  []string{"poème", "fable"},
			Categories:   []string{"Fables"},
			Sources:      []string{"archive", "ebook"},
			Headers:      map[string]string{"From": "reader@example.com", "X-Team": "fr"},
			HubThreshold: 8,
		}
		if diff := cmp.Diff(want, cf.GetLanguageConfig("fr")); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("merging does not mutate the defaults", func(t *testing.T) {
		t.Parallel()

		_ = cf.GetLanguageConfig("fr")
		if cf.Defaults.Headers["X-Team"] != "default" {
			t.Error("default headers were modified")
		}
	})

	t.Run("nil languages map", func(t *testing.T) {
		t.Parallel()

		empty := &File{Defaults: LanguageConfig{HubThreshold: 3}}
		if got := empty.GetLanguageConfig("fr").HubThreshold; got != 3 {
			t.Errorf("expected default hub threshold, got %d", got)
		}
	})
}

// TestConfigApply tests applying the file to a Config.
func TestConfigApply(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Language = "fr"
	lc := cfg.Apply(&File{Languages: map[string]LanguageConfig{
		"fr": {ArchiveURL: "https://fr.example.org/w/api.php", Sources: []string{"archive"}, HubThreshold: 7, MaxLinkDensity: 0.4},
	}})

	if cfg.ArchiveEndpoint != "https://fr.example.org/w/api.php" {
		t.Errorf("unexpected endpoint %q", cfg.ArchiveEndpoint)
	}
	if !cfg.SourceEnabled("archive") || cfg.SourceEnabled("poemdb") {
		t.Errorf("unexpected sources %v", cfg.Sources)
	}
	if cfg.HubThreshold != 7 || lc.HubThreshold != 7 {
		t.Errorf("unexpected hub threshold %d", cfg.HubThreshold)
	}
	if cfg.MaxLinkDensity != 0.4 {
		t.Errorf("unexpected max link density %v", cfg.MaxLinkDensity)
	}
	if cfg.LanguageConfigs == nil {
		t.Error("expected the file to be kept")
	}

	untouched := NewConfig()
	if lc := untouched.Apply(nil); lc.ArchiveURL != "" || untouched.ArchiveEndpoint != DefaultArchiveEndpoint {
		t.Error("nil file must leave the config unchanged")
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), ".litfeed")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return path
	}

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.litfeed")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := write(t, `defaults:
  sources: [archive, poemdb]
languages:
  fr:
    archiveURL: https://fr.wikisource.org/w/api.php
    searchTerms:
      - poème
      - sonnet
    categories:
      - Poèmes
    scannedCollection: bnf
`)
		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"archive", "poemdb"}, cfg.Defaults.Sources); diff != "" {
			t.Errorf("sources mismatch (-want +got):\n%s", diff)
		}
		fr, ok := cfg.Languages["fr"]
		if !ok {
			t.Fatal("expected fr in languages")
		}
		if len(fr.SearchTerms) != 2 || fr.Categories[0] != "Poèmes" || fr.ScannedCollection != "bnf" {
			t.Errorf("unexpected fr config %+v", fr)
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		path := write(t, "languages:\n  fr:\n    serchTerms: [poème]\n")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for a misspelled key")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfigFile(write(t, `invalid: yaml: content: [}`)); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("empty file initializes the Languages map", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile(write(t, ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Languages == nil {
			t.Error("expected Languages map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("finds the file in the current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("defaults: {}"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)

		if got := FindConfigFile(""); filepath.Base(got) != DefaultConfigFile || filepath.Dir(got) == "" {
			t.Errorf("unexpected path %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("XDG %s dir %q does not end in %q", name, dir, AppName)
		}
	}
}
