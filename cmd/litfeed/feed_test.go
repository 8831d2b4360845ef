package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/litfeed/internal/config"
	"github.com/nao1215/litfeed/internal/feed"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/render"
	"github.com/spf13/cobra"
)

// executeRoot runs the root command with args and returns stdout and stderr.
func executeRoot(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFeedCmd(t *testing.T) {
	t.Parallel()

	srv := newFakeArchive(t)
	cfgPath := writeArchiveConfig(t, srv)

	t.Run("streams accepted archive texts as json", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "", "feed",
			"--lang", "fr", "--config", cfgPath, "--no-db", "--json", "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		line, _, _ := strings.Cut(stdout, "\n")
		var ev render.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid event %q: %v", line, err)
		}
		if ev.Event != render.EventPresent || ev.Doc == nil || ev.Doc.Title != "Le Lac" {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.Doc.Body != "" {
			t.Error("expected the body to be omitted without --full")
		}
		if !strings.HasPrefix(ev.Teaser, "Ainsi, toujours") {
			t.Errorf("unexpected teaser %q", ev.Teaser)
		}
	})

	t.Run("writes markdown to a file and text to stdout", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "out", "digest.md")
		stdout, _, err := executeRoot(t, "", "feed",
			"--lang", "fr", "--config", cfgPath, "--no-db", "--markdown", "-o", outPath, "-n", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Le Lac") {
			t.Errorf("expected the text feed on stdout:\n%s", stdout)
		}

		content, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read digest: %v", err)
		}
		if !strings.Contains(string(content), "# Reading feed (fr)") || !strings.Contains(string(content), "## Le Lac") {
			t.Errorf("unexpected digest:\n%s", content)
		}
	})

	t.Run("records the session in the database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		if _, _, err := executeRoot(t, "", "feed",
			"--lang", "fr", "--config", cfgPath, "--db-dir", dbDir, "-n", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stdout, _, err := executeRoot(t, "", "history", "--db-dir", dbDir, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, `"title": "Le Lac"`) {
			t.Errorf("expected the shown text in history:\n%s", stdout)
		}
	})

	t.Run("rejects conflicting output formats", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "", "feed",
			"--config", cfgPath, "--no-db", "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingOutputFormats) {
			t.Errorf("expected ErrConflictingOutputFormats, got %v", err)
		}
	})

	t.Run("rejects unknown sources", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "", "feed", "--no-db", "--sources", "rss")
		if !errors.Is(err, config.ErrUnknownSource) {
			t.Errorf("expected ErrUnknownSource, got %v", err)
		}
	})
}

// fakeLoader records LoadMore calls.
type fakeLoader struct {
	calls   int
	results []feed.Result
	err     error
	handles []render.Handle
}

func (f *fakeLoader) Handles() []render.Handle {
	return f.handles
}

func (f *fakeLoader) LoadMore(_ context.Context, count int, dir feed.Direction) (feed.Result, error) {
	f.calls++
	if f.err != nil {
		return feed.Result{}, f.err
	}
	if dir != feed.Down {
		return feed.Result{}, errors.New("unexpected direction")
	}
	if len(f.results) == 0 {
		return feed.Result{Loaded: count, Requested: count, Attempts: count}, nil
	}
	res := f.results[0]
	f.results = f.results[1:]
	return res, nil
}

func TestLoad(t *testing.T) {
	t.Parallel()

	newCmd := func(stdin string) (*cobra.Command, *bytes.Buffer) {
		cmd := &cobra.Command{}
		var stderr bytes.Buffer
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetErr(&stderr)
		return cmd, &stderr
	}

	t.Run("loads the requested number of pages", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newCmd("")
		l := &fakeLoader{}
		if err := load(context.Background(), cmd, l, nil, 5, feedOptions{pages: 3}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.calls != 3 {
			t.Errorf("expected 3 loads, got %d", l.calls)
		}
	})

	t.Run("interactive mode loads until q", func(t *testing.T) {
		t.Parallel()

		cmd, stderr := newCmd("\n\nq\n")
		l := &fakeLoader{}
		if err := load(context.Background(), cmd, l, nil, 5, feedOptions{pages: 1, interactive: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.calls != 3 {
			t.Errorf("expected 3 loads, got %d", l.calls)
		}
		if !strings.Contains(stderr.String(), "Enter for more") {
			t.Errorf("expected prompt, got %q", stderr.String())
		}
	})

	t.Run("interactive mode stops at end of input", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newCmd("\n")
		l := &fakeLoader{}
		if err := load(context.Background(), cmd, l, nil, 5, feedOptions{interactive: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.calls != 2 {
			t.Errorf("expected 2 loads, got %d", l.calls)
		}
	})

	t.Run("stops when the feed is exhausted", func(t *testing.T) {
		t.Parallel()

		cmd, stderr := newCmd("")
		l := &fakeLoader{results: []feed.Result{{Requested: 5, Attempts: 25}}}
		if err := load(context.Background(), cmd, l, nil, 5, feedOptions{pages: 3}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.calls != 1 {
			t.Errorf("expected 1 load, got %d", l.calls)
		}
		if !strings.Contains(stderr.String(), "No more texts") {
			t.Errorf("expected exhaustion notice, got %q", stderr.String())
		}
	})

	t.Run("returns load errors", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newCmd("")
		l := &fakeLoader{err: feed.ErrBusy}
		if err := load(context.Background(), cmd, l, nil, 5, feedOptions{pages: 1}); !errors.Is(err, feed.ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", err)
		}
	})
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  promptAction
	}{
		{"\n", actionMore},
		{"more\n", actionMore},
		{"m\n", actionReveal},
		{" M \n", actionReveal},
		{"q\n", actionQuit},
		{"QUIT\n", actionQuit},
		{"", actionQuit},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if got := prompt(&buf, bufio.NewScanner(strings.NewReader(tt.input))); got != tt.want {
			t.Errorf("prompt(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// fakeRevealer records revealed handles and serves fixed chunks.
type fakeRevealer struct {
	revealed []render.Handle
	chunks   []string
}

func (f *fakeRevealer) Reveal(h render.Handle) (string, bool, error) {
	f.revealed = append(f.revealed, h)
	if len(f.chunks) == 0 {
		return "", false, nil
	}
	c := f.chunks[0]
	f.chunks = f.chunks[1:]
	return c, len(f.chunks) > 0, nil
}

func TestLoadReadOn(t *testing.T) {
	t.Parallel()

	newCmd := func(stdin string) (*cobra.Command, *bytes.Buffer) {
		cmd := &cobra.Command{}
		var stderr bytes.Buffer
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetErr(&stderr)
		return cmd, &stderr
	}

	t.Run("m reveals the latest text without loading more", func(t *testing.T) {
		t.Parallel()

		cmd, stderr := newCmd("m\nm\nm\nq\n")
		l := &fakeLoader{handles: []render.Handle{"first", "latest"}}
		rv := &fakeRevealer{chunks: []string{"suite", "fin"}}
		if err := load(context.Background(), cmd, l, rv, 5, feedOptions{interactive: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.calls != 1 {
			t.Errorf("expected 1 load, got %d", l.calls)
		}
		if diff := cmp.Diff([]render.Handle{"latest", "latest", "latest"}, rv.revealed); diff != "" {
			t.Errorf("revealed handles mismatch (-want +got):\n%s", diff)
		}
		if !strings.Contains(stderr.String(), "End of text.") {
			t.Errorf("expected end of text notice, got %q", stderr.String())
		}
	})

	t.Run("m without a revealer prints a notice", func(t *testing.T) {
		t.Parallel()

		cmd, stderr := newCmd("m\n")
		l := &fakeLoader{handles: []render.Handle{"latest"}}
		if err := load(context.Background(), cmd, l, nil, 5, feedOptions{interactive: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr.String(), "cannot show more") {
			t.Errorf("expected notice, got %q", stderr.String())
		}
	})

	t.Run("chunk flag sizes reveals in the text sink", func(t *testing.T) {
		t.Parallel()

		cmd, _ := newCmd("m\nq\n")
		var out bytes.Buffer
		sink := render.NewTextSink(&out, render.WithDecoration(false))
		doc := model.NewDocument(model.SourceArchive, "fr", "Le Lac", strings.Join(lacStanzas, "\n"))
		h, err := sink.Present(doc, render.Hints{TeaserLimit: 100, ChunkSize: 120})
		if err != nil {
			t.Fatal(err)
		}
		l := &fakeLoader{handles: []render.Handle{h}}
		if err := load(context.Background(), cmd, l, sink, 5, feedOptions{interactive: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		e, _ := sink.Entry(h)
		shown := len([]rune(e.Text.Shown()))
		if shown <= 100 || shown > 220 {
			t.Errorf("expected teaser plus one chunk of at most 120 runes, got %d runes shown", shown)
		}
		if !strings.Contains(out.String(), "… Le Lac") {
			t.Errorf("expected the chunk on the output:\n%s", out.String())
		}
	})
}

func TestNewSink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*config.Config)
		check  func(render.Sink) bool
	}{
		{"text by default", func(*config.Config) {}, func(s render.Sink) bool { _, ok := s.(*render.TextSink); return ok }},
		{"json", func(c *config.Config) { c.JSONOutput = true }, func(s render.Sink) bool { _, ok := s.(*render.JSONSink); return ok }},
		{"markdown", func(c *config.Config) { c.MarkdownOutput = true }, func(s render.Sink) bool { _, ok := s.(*render.MarkdownSink); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.modify(cfg)
			sink, flush := newSink(&bytes.Buffer{}, cfg)
			if !tt.check(sink) {
				t.Errorf("unexpected sink %T", sink)
			}
			if err := flush(); err != nil {
				t.Errorf("flush failed: %v", err)
			}
		})
	}
}
