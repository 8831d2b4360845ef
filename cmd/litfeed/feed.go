package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nao1215/litfeed/internal/config"
	"github.com/nao1215/litfeed/internal/feed"
	"github.com/nao1215/litfeed/internal/pool"
	"github.com/nao1215/litfeed/internal/render"
	"github.com/spf13/cobra"
)

// NewFeedCmd creates the feed command.
func NewFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print a reading feed of literary texts",
		Long: `Feed draws literary texts from the enabled sources and prints each one as
a teaser. Archive pages are resolved through summary hubs and redirects;
lists, indexes and biographies are skipped.

Texts shown in one session are never repeated. With the database enabled,
resolved pages are cached across runs and every shown text is recorded in
the session history (see 'litfeed history').

Examples:
  # Print five French texts
  litfeed feed --lang fr

  # Keep reading: press Enter to load more, m to read on in the
  # latest text, q to quit
  litfeed feed -i

  # Only poems from the poem database, whole texts
  litfeed feed --sources poemdb --full

  # Stream NDJSON events
  litfeed feed --json -n 20

  # Write a Markdown digest and show the feed on the terminal
  litfeed feed --markdown -o digest.md`,
		Args: cobra.NoArgs,
		RunE: runFeedCmd,
	}

	addConfigFlags(cmd)

	cmd.Flags().IntP("count", "n", config.DefaultCount,
		"Number of texts loaded at a time")
	cmd.Flags().IntP("pages", "p", 1,
		"Number of loads in non-interactive mode")
	cmd.Flags().BoolP("interactive", "i", false,
		"Load more texts on Enter, read on with m, stop with q or end of input")
	cmd.Flags().Int("max-items", config.DefaultMaxItems,
		"Maximum number of texts kept in the feed")
	cmd.Flags().StringSlice("sources", config.AllSources,
		"Enabled sources ("+strings.Join(config.AllSources, ", ")+")")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of sources queried at once")
	cmd.Flags().Bool("no-detect", false,
		"Do not verify the language of preloaded texts")

	cmd.Flags().Bool("full", false,
		"Print whole texts instead of teasers")
	cmd.Flags().Int("teaser", config.DefaultTeaserLimit,
		"Teaser length in characters")
	cmd.Flags().Int("chunk", config.DefaultChunkSize,
		"Length of each further reveal (m in interactive mode) in characters")

	cmd.Flags().BoolP("json", "j", false,
		"Output NDJSON events (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown digest (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to the specified file; the terminal shows the plain feed")

	return cmd
}

// feedOptions are the feed command settings that are not part of Config.
type feedOptions struct {
	pages       int
	interactive bool
}

// runFeedCmd executes the feed command.
func runFeedCmd(cmd *cobra.Command, _ []string) error {
	cfg, lc, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := readFeedFlags(cmd, cfg)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, lc, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return runFeed(ctx, cmd, a, opts)
}

// readFeedFlags copies the feed flags into cfg. The sources flag overrides
// the configuration file only when set explicitly.
func readFeedFlags(cmd *cobra.Command, cfg *config.Config) (feedOptions, error) {
	flags := cmd.Flags()
	var opts feedOptions
	var err error

	if cfg.Count, err = flags.GetInt("count"); err != nil {
		return opts, err
	}
	if opts.pages, err = flags.GetInt("pages"); err != nil {
		return opts, err
	}
	if opts.pages < 1 {
		opts.pages = 1
	}
	if opts.interactive, err = flags.GetBool("interactive"); err != nil {
		return opts, err
	}
	if cfg.MaxItems, err = flags.GetInt("max-items"); err != nil {
		return opts, err
	}
	if flags.Changed("sources") {
		if cfg.Sources, err = flags.GetStringSlice("sources"); err != nil {
			return opts, err
		}
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return opts, err
	}
	noDetect, err := flags.GetBool("no-detect")
	if err != nil {
		return opts, err
	}
	cfg.DetectLanguage = !noDetect

	if cfg.Full, err = flags.GetBool("full"); err != nil {
		return opts, err
	}
	if cfg.TeaserLimit, err = flags.GetInt("teaser"); err != nil {
		return opts, err
	}
	if cfg.ChunkSize, err = flags.GetInt("chunk"); err != nil {
		return opts, err
	}

	if cfg.JSONOutput, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if cfg.MarkdownOutput, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return opts, err
	}
	return opts, nil
}

// runFeed wires the pool, the scheduler and the sinks and loads the feed.
func runFeed(ctx context.Context, cmd *cobra.Command, a *app, opts feedOptions) error {
	cfg := a.cfg

	out, closeOut, err := openOutput(cmd, cfg.OutputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	sink, flush := newSink(out, cfg)
	if cfg.OutputFile != "" {
		sink = render.NewMultiSink(sink, render.NewTextSink(cmd.OutOrStdout()))
	}

	p := pool.New(cfg.Language, a.adapters(),
		pool.WithConcurrency(cfg.Concurrency),
		pool.WithFillTimeout(pool.DefaultFillTimeout+cfg.Timeout),
		pool.WithLogger(a.logger),
	)
	defer p.Close()

	schedOpts := []feed.Option{
		feed.WithMaxItems(cfg.MaxItems),
		feed.WithHints(render.Hints{
			TeaserLimit: cfg.TeaserLimit,
			ChunkSize:   cfg.ChunkSize,
			Full:        cfg.Full,
		}),
		feed.WithLogger(a.logger),
	}
	if a.db != nil {
		schedOpts = append(schedOpts, feed.WithRecorder(a.db))
	}
	s := feed.New(p, a.resolver(), sink, schedOpts...)

	a.logger.Info("feed session started",
		"session", s.SessionID(),
		"language", cfg.Language,
		"sources", cfg.Sources,
	)

	rv, _ := sink.(render.Revealer)
	err = load(ctx, cmd, s, rv, cfg.Count, opts)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("feed interrupted", "session", s.SessionID())
		err = nil
	}
	if err != nil {
		return err
	}
	return flush()
}

// loader is the part of feed.Scheduler used by load.
type loader interface {
	LoadMore(ctx context.Context, count int, dir feed.Direction) (feed.Result, error)
	Handles() []render.Handle
}

// load runs LoadMore either opts.pages times or, in interactive mode, once
// per input line until "q" or end of input. In interactive mode "m" reveals
// the next chunk of the latest text through rv. It stops early when the feed
// is exhausted.
func load(ctx context.Context, cmd *cobra.Command, s loader, rv render.Revealer, count int, opts feedOptions) error {
	var input *bufio.Scanner
	if opts.interactive {
		input = bufio.NewScanner(cmd.InOrStdin())
	}
	errOut := cmd.ErrOrStderr()

	for page := 0; opts.interactive || page < opts.pages; page++ {
		res, err := s.LoadMore(ctx, count, feed.Down)
		if err != nil {
			return err
		}
		if res.Exhausted() {
			fmt.Fprintln(errOut, "No more texts available right now. Try other sources or another language.")
			return nil
		}

		if input == nil {
			continue
		}
		for {
			action := prompt(errOut, input)
			if action == actionQuit {
				return nil
			}
			if action == actionMore {
				break
			}
			if err := readOn(errOut, s, rv); err != nil {
				return err
			}
		}
	}
	return nil
}

// readOn reveals the next chunk of the most recently loaded text.
func readOn(w io.Writer, s loader, rv render.Revealer) error {
	if rv == nil {
		fmt.Fprintln(w, "This output format cannot show more of a text.")
		return nil
	}
	handles := s.Handles()
	if len(handles) == 0 {
		fmt.Fprintln(w, "Nothing to read on.")
		return nil
	}
	chunk, _, err := rv.Reveal(handles[len(handles)-1])
	if err != nil {
		return fmt.Errorf("reveal: %w", err)
	}
	if chunk == "" {
		fmt.Fprintln(w, "End of text.")
	}
	return nil
}

// promptAction is the user's answer to the interactive prompt.
type promptAction int

const (
	actionMore promptAction = iota
	actionReveal
	actionQuit
)

// prompt asks what to do next. End of input quits.
func prompt(w io.Writer, input *bufio.Scanner) promptAction {
	fmt.Fprint(w, "-- Enter for more, m to read on, q to quit -- ")
	if !input.Scan() {
		fmt.Fprintln(w)
		return actionQuit
	}
	switch strings.ToLower(strings.TrimSpace(input.Text())) {
	case "q", "quit":
		return actionQuit
	case "m":
		return actionReveal
	default:
		return actionMore
	}
}

// newSink creates the sink for the configured output format and the
// function that completes the output once the feed is done.
func newSink(w io.Writer, cfg *config.Config) (render.Sink, func() error) {
	switch {
	case cfg.JSONOutput:
		var opts []render.JSONSinkOption
		if cfg.Full {
			opts = append(opts, render.WithBody())
		}
		return render.NewJSONSink(w, opts...), func() error { return nil }
	case cfg.MarkdownOutput:
		md := render.NewMarkdownSink(w,
			render.WithMarkdownTitle(fmt.Sprintf("Reading feed (%s)", cfg.Language)),
		)
		return md, md.Flush
	default:
		return render.NewTextSink(w), func() error { return nil }
	}
}
