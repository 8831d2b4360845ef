package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/litfeed/internal/config"
	"github.com/nao1215/litfeed/internal/database"
	"github.com/nao1215/litfeed/internal/log"
	"github.com/nao1215/litfeed/internal/resolver"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".litfeed")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfig(t, `defaults:
  sources: [archive, poemdb]
  hubThreshold: 7
languages:
  fr:
    archiveURL: https://fr.example.org/w/api.php
    categories: [Fables]
    headers:
      From: reader@example.com
`)

	parse := func(t *testing.T, args ...string) (*config.Config, config.LanguageConfig) {
		t.Helper()
		cmd := NewFeedCmd()
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, lc, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := readFeedFlags(cmd, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return cfg, lc
	}

	t.Run("file values apply when flags are not set", func(t *testing.T) {
		t.Parallel()

		cfg, lc := parse(t, "--config", cfgPath, "--lang", "FR")
		if cfg.Language != "fr" {
			t.Errorf("expected language to be lower-cased, got %q", cfg.Language)
		}
		if cfg.ArchiveEndpoint != "https://fr.example.org/w/api.php" {
			t.Errorf("unexpected endpoint %q", cfg.ArchiveEndpoint)
		}
		if diff := cmp.Diff([]string{"archive", "poemdb"}, cfg.Sources); diff != "" {
			t.Errorf("sources mismatch (-want +got):\n%s", diff)
		}
		if cfg.HubThreshold != 7 {
			t.Errorf("expected hub threshold from file, got %d", cfg.HubThreshold)
		}
		if lc.Headers["From"] != "reader@example.com" {
			t.Errorf("expected headers from file, got %v", lc.Headers)
		}
	})

	t.Run("explicit flags override the file", func(t *testing.T) {
		t.Parallel()

		cfg, _ := parse(t, "--config", cfgPath, "--lang", "fr",
			"--sources", "ebook", "--hub-threshold", "3", "--max-link-density", "0.5", "--no-detect", "--full", "-n", "2")
		if diff := cmp.Diff([]string{"ebook"}, cfg.Sources); diff != "" {
			t.Errorf("sources mismatch (-want +got):\n%s", diff)
		}
		if cfg.HubThreshold != 3 || cfg.MaxLinkDensity != 0.5 || cfg.DetectLanguage || !cfg.Full || cfg.Count != 2 {
			t.Errorf("flags not applied: %+v", cfg)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewFeedCmd()
		if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
			t.Fatal(err)
		}
		if _, _, err := buildConfig(cmd); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("database flags", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cfg, _ := parse(t, "--config", cfgPath, "--db-dir", dir, "--cache-ttl", "48h")
		if cfg.DBDir != dir || cfg.NoDB || cfg.CacheTTL != 48*time.Hour {
			t.Errorf("unexpected database settings %q %v %v", cfg.DBDir, cfg.NoDB, cfg.CacheTTL)
		}
	})
}

func TestNewApp(t *testing.T) {
	t.Parallel()

	logger := log.NewLogger(&bytes.Buffer{}, false)

	t.Run("without database uses a memory cache", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.NoDB = true
		a, err := newApp(context.Background(), cfg, config.LanguageConfig{}, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer a.Close()

		if _, ok := a.cache().(*resolver.MemoryCache); !ok {
			t.Errorf("expected memory cache, got %T", a.cache())
		}
		if a.detector == nil {
			t.Error("expected language detector")
		}
	})

	t.Run("with database uses it as cache", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.DBDir = t.TempDir()
		cfg.CacheTTL = time.Hour
		a, err := newApp(context.Background(), cfg, config.LanguageConfig{}, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer a.Close()

		if _, ok := a.cache().(*database.DB); !ok {
			t.Errorf("expected database cache, got %T", a.cache())
		}
	})

	t.Run("invalid proxy fails", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.NoDB = true
		cfg.ProxyAddress = "not-a-proxy"
		if _, err := newApp(context.Background(), cfg, config.LanguageConfig{}, logger); err == nil {
			t.Error("expected error for invalid proxy address")
		}
	})

	t.Run("adapters follow the enabled sources", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.NoDB = true
		cfg.DetectLanguage = false
		cfg.Sources = []string{config.SourceScanned, config.SourceArchive}
		a, err := newApp(context.Background(), cfg, config.LanguageConfig{
			Categories:        []string{"Poems"},
			ScannedCollection: "gutenberg",
		}, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer a.Close()

		var names []string
		for _, ad := range a.adapters() {
			names = append(names, ad.Name())
		}
		if diff := cmp.Diff([]string{"archive", "scanned"}, names); diff != "" {
			t.Errorf("adapters mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("empty path writes to stdout", func(t *testing.T) {
		t.Parallel()

		cmd := NewFeedCmd()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		w, closeFn, err := openOutput(cmd, "")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte("hello")); err != nil {
			t.Fatal(err)
		}
		if err := closeFn(); err != nil {
			t.Fatal(err)
		}
		if buf.String() != "hello" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("file path creates directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a", "b", "feed.ndjson")
		w, closeFn, err := openOutput(NewFeedCmd(), path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte("{}\n")); err != nil {
			t.Fatal(err)
		}
		if err := closeFn(); err != nil {
			t.Fatal(err)
		}
		content, err := os.ReadFile(path)
		if err != nil || !strings.HasPrefix(string(content), "{}") {
			t.Errorf("unexpected file content %q: %v", content, err)
		}
	})
}
