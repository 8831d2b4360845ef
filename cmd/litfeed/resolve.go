package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/render"
	"github.com/nao1215/litfeed/internal/resolver"
	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <title>...",
		Short: "Resolve archive pages to literary texts",
		Long: `Resolve fetches one archive page and follows summary hubs, redirects and
"multiple editions" pages until it finds a text the quality scorer accepts.

Use --trace to see every step of the resolution: which pages were treated
as hubs, which links were followed and why pages were rejected.

Several titles are resolved concurrently and printed in completion order.
The command fails only when none of them resolves.

Examples:
  # Resolve a French fable
  litfeed resolve "Le Corbeau et le Renard" --lang fr

  # Show the resolution steps
  litfeed resolve "Les Fleurs du mal" --lang fr --trace

  # Print the document and the trace as JSON
  litfeed resolve "Ozymandias" --json

  # Resolve several titles at once
  litfeed resolve "Le Lac" "L'Isolement" "Le Vallon" --lang fr`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResolveCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().Bool("trace", false, "Print every resolution step")
	cmd.Flags().BoolP("json", "j", false, "Output the document and trace as JSON")
	cmd.Flags().Bool("teaser", false, "Print the teaser only instead of the whole text")

	return cmd
}

// errNoneResolved is returned when no title of a batch resolves.
var errNoneResolved = errors.New("no title could be resolved")

// resolveOutput is the JSON output of the resolve command.
type resolveOutput struct {
	Identifier string          `json:"identifier,omitempty"`
	Document   *model.Document `json:"document,omitempty"`
	Trace      resolver.Trace  `json:"trace,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	cfg, lc, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	showTrace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return err
	}
	teaserOnly, err := cmd.Flags().GetBool("teaser")
	if err != nil {
		return err
	}
	cfg.Full = !teaserOnly
	if showTrace && len(args) > 1 {
		return errors.New("--trace accepts a single title")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	a, err := newApp(cmd.Context(), cfg, lc, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	hints := render.Hints{
		TeaserLimit: cfg.TeaserLimit,
		ChunkSize:   cfg.ChunkSize,
		Full:        cfg.Full,
	}
	candidates := make([]model.PageCandidate, 0, len(args))
	for _, arg := range args {
		candidates = append(candidates, model.PageCandidate{
			Identifier: arg,
			Source:     model.SourceArchive,
			Language:   cfg.Language,
		})
	}

	if len(candidates) == 1 {
		return runResolve(cmd.Context(), cmd.OutOrStdout(), a.resolver(), candidates[0], cfg.JSONOutput, showTrace, hints)
	}
	return runResolveBatch(cmd.Context(), cmd.OutOrStdout(), a.resolver(), candidates, cfg.JSONOutput, hints)
}

// tracer is the part of resolver.Resolver used by runResolve.
type tracer interface {
	ResolveTrace(ctx context.Context, c model.PageCandidate) (*model.Document, resolver.Trace, error)
}

// runResolve resolves c and prints the result.
func runResolve(ctx context.Context, w io.Writer, r tracer, c model.PageCandidate, asJSON, showTrace bool, hints render.Hints) error {
	doc, trace, resolveErr := r.ResolveTrace(ctx, c)

	if asJSON {
		out := resolveOutput{Document: doc, Trace: trace}
		if resolveErr != nil {
			out.Error = resolveErr.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return resolveErr
	}

	if showTrace {
		fmt.Fprintln(w, traceTable(trace))
	}
	if resolveErr != nil {
		return resolveErr
	}

	_, err := render.NewTextSink(w).Present(doc, hints)
	return err
}

// batcher is the part of resolver.Resolver used by runResolveBatch.
type batcher interface {
	ResolveBatch(ctx context.Context, candidates []model.PageCandidate, fn resolver.BatchFunc) error
}

// runResolveBatch resolves candidates concurrently. Documents are printed as
// they arrive; failures are listed in a table at the end. JSON output is one
// object per line.
func runResolveBatch(ctx context.Context, w io.Writer, r batcher, candidates []model.PageCandidate, asJSON bool, hints render.Hints) error {
	sink := render.NewTextSink(w)
	enc := json.NewEncoder(w)

	var (
		resolved int
		failures [][]string
		writeErr error
	)
	err := r.ResolveBatch(ctx, candidates, func(c model.PageCandidate, doc *model.Document, err error) {
		if writeErr != nil {
			return
		}
		if err == nil {
			resolved++
		}
		if asJSON {
			out := resolveOutput{Identifier: c.Identifier, Document: doc}
			if err != nil {
				out.Error = err.Error()
			}
			writeErr = enc.Encode(out)
			return
		}
		if err != nil {
			failures = append(failures, []string{c.Identifier, err.Error()})
			return
		}
		_, writeErr = sink.Present(doc, hints)
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	if len(failures) > 0 {
		fmt.Fprintln(w, renderTable([]string{"Title", "Error"}, failures, nil))
	}
	if resolved == 0 {
		return errNoneResolved
	}
	return nil
}

// traceTable renders a resolution trace.
func traceTable(trace resolver.Trace) string {
	rows := make([][]string, 0, len(trace))
	for _, s := range trace {
		rows = append(rows, []string{
			strconv.Itoa(s.Depth),
			s.Identifier,
			string(s.Action),
			s.Reason.String(),
			s.Next,
		})
	}
	return renderTable(
		[]string{"Depth", "Page", "Action", "Reason", "Next"},
		rows,
		[]columnAlignment{alignRight},
	)
}
