package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/litfeed/internal/archive"
	"github.com/nao1215/litfeed/internal/metadata"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/quality"
	"github.com/nao1215/litfeed/internal/title"
)

const (
	// MaxDepth is the deepest recursion level. A top-level resolution makes
	// at most MaxDepth+1 fetches.
	MaxDepth = 4

	// DefaultHubThreshold is the number of sub-page links from which a page
	// is treated as a summary hub.
	DefaultHubThreshold = 5
)

// Action describes what the resolver did with one fetched page.
type Action string

// Actions recorded in a Trace.
const (
	ActionCached   Action = "cached"
	ActionHub      Action = "hub"
	ActionRedirect Action = "redirect"
	ActionEditions Action = "editions"
	ActionFollow   Action = "follow"
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionFail     Action = "fail"
)

// Step is one recursion level of a resolution.
type Step struct {
	Depth      int                `json:"depth"`
	Identifier string             `json:"identifier"`
	Action     Action             `json:"action"`
	Reason     model.RejectReason `json:"reason,omitempty"`
	Next       string             `json:"next,omitempty"`
}

// Trace is the ordered list of steps of one resolution.
type Trace []Step

// Resolver turns page candidates into documents, following summary hubs,
// redirects and disguised hubs toward real content.
type Resolver struct {
	fetcher      archive.Fetcher
	scorer       *quality.Scorer
	cache        Cache
	hubThreshold int
	concurrency  int
	logger       *slog.Logger

	// rand is not safe for concurrent use; ResolveBatch shares it.
	randMu sync.Mutex
	rand   *rand.Rand
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache sets the resolution cache. The default is a fresh MemoryCache.
func WithCache(c Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithScorer sets the quality scorer.
func WithScorer(s *quality.Scorer) Option {
	return func(r *Resolver) {
		r.scorer = s
	}
}

// WithRand sets the random source used to pick links to follow.
func WithRand(rng *rand.Rand) Option {
	return func(r *Resolver) {
		r.rand = rng
	}
}

// WithHubThreshold sets the number of sub-page links that marks a summary hub.
func WithHubThreshold(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.hubThreshold = n
		}
	}
}

// WithConcurrency sets the number of parallel resolutions in ResolveBatch.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver fetching pages through fetcher.
func New(fetcher archive.Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:      fetcher,
		hubThreshold: DefaultHubThreshold,
		concurrency:  4,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scorer == nil {
		r.scorer = quality.NewScorer()
	}
	if r.cache == nil {
		r.cache = NewMemoryCache()
	}
	if r.rand == nil {
		seed := uint64(time.Now().UnixNano())
		r.rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve returns the document a candidate leads to. A nil document is always
// accompanied by a non-nil error; see the package errors for the taxonomy.
func (r *Resolver) Resolve(ctx context.Context, c model.PageCandidate) (*model.Document, error) {
	return r.resolve(ctx, c, 0, nil)
}

// ResolveTrace is Resolve that also records every recursion step.
func (r *Resolver) ResolveTrace(ctx context.Context, c model.PageCandidate) (*model.Document, Trace, error) {
	var trace Trace
	doc, err := r.resolve(ctx, c, 0, &trace)
	return doc, trace, err
}

func (r *Resolver) resolve(ctx context.Context, c model.PageCandidate, depth int, trace *Trace) (*model.Document, error) {
	record := func(s Step) {
		if trace != nil {
			s.Depth = depth
			s.Identifier = c.Identifier
			*trace = append(*trace, s)
		}
	}

	if depth > MaxDepth {
		record(Step{Action: ActionFail})
		return nil, fmt.Errorf("%w: %q at depth %d", ErrDepthExceeded, c.Identifier, depth)
	}
	if !title.IsValid(c.Identifier) {
		record(Step{Action: ActionFail})
		return nil, fmt.Errorf("%w: %q", ErrInvalidTitle, c.Identifier)
	}

	key := model.CacheKey{Language: c.Language, Identifier: c.Identifier}
	if doc, ok := r.cache.Get(ctx, key); ok {
		record(Step{Action: ActionCached})
		return doc, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := r.fetcher.FetchPage(ctx, c.Identifier, c.Language)
	if err != nil {
		record(Step{Action: ActionFail})
		return nil, fmt.Errorf("resolve %q: %w", c.Identifier, err)
	}

	base := page.Title
	if base == "" {
		base = c.Identifier
	}

	follow := func(action Action, reason model.RejectReason, next string) (*model.Document, error) {
		record(Step{Action: action, Reason: reason, Next: next})
		r.logger.Debug("following link",
			"from", base,
			"to", next,
			"action", string(action),
			"depth", depth+1,
		)
		return r.resolve(ctx, model.PageCandidate{
			Identifier:    next,
			Source:        c.Source,
			Language:      c.Language,
			PrecedingLink: base,
		}, depth+1, trace)
	}

	if subs := page.Links.SubPages(base); len(subs) >= r.hubThreshold {
		return follow(ActionHub, model.ReasonNone, r.pick(subs).Title)
	}

	switch kind := page.Kind(); kind {
	case archive.KindRedirect:
		next := page.RedirectTarget()
		if next == "" || next == base {
			next = r.pickTitle(r.plausible(page.Links, base))
		}
		if next != "" {
			return follow(ActionRedirect, model.ReasonNone, next)
		}
	case archive.KindEditions:
		if next := r.pickTitle(r.plausible(page.Links, base)); next != "" {
			return follow(ActionEditions, model.ReasonNone, next)
		}
	}

	text, err := page.Text()
	if err != nil {
		record(Step{Action: ActionFail})
		return nil, fmt.Errorf("resolve %q: %w", c.Identifier, err)
	}
	if strings.TrimSpace(text) == "" {
		record(Step{Action: ActionReject, Reason: model.ReasonEmpty})
		return nil, &RejectionError{Identifier: c.Identifier, Reason: model.ReasonEmpty}
	}

	verdict := r.scorer.Score(text, len(page.Links), base)
	if !verdict.Accepted {
		if verdict.Reason.IsHubLike() {
			if next := r.pickTitle(r.outbound(page.Links, base)); next != "" {
				return follow(ActionFollow, verdict.Reason, next)
			}
		}
		record(Step{Action: ActionReject, Reason: verdict.Reason})
		return nil, &RejectionError{Identifier: c.Identifier, Reason: verdict.Reason}
	}

	doc := model.NewDocument(c.Source, c.Language, base, text)
	doc.Identifier = c.Identifier
	doc.URL = page.URL
	doc.Author = metadata.ExtractAuthorOrUnknown(page.Links.Titles(), page.Categories, text)
	doc.GenreTag = metadata.ExtractGenre(base, text)

	r.cache.Put(ctx, key, doc)
	if base != c.Identifier {
		r.cache.Put(ctx, model.CacheKey{Language: c.Language, Identifier: base}, doc)
	}

	record(Step{Action: ActionAccept})
	r.logger.Debug("resolved document",
		"title", doc.Title,
		"author", doc.Author,
		"genre", doc.GenreTag,
		"depth", depth,
	)
	return doc, nil
}

// plausible returns the links an editions or redirect page may lead to:
// its sub-pages when it has any, otherwise valid main-namespace links.
func (r *Resolver) plausible(links model.LinkGraph, base string) model.LinkGraph {
	if subs := links.SubPages(base); len(subs) > 0 {
		return subs
	}
	return r.outbound(links, base)
}

// outbound returns the valid main-namespace links other than base itself.
func (r *Resolver) outbound(links model.LinkGraph, base string) model.LinkGraph {
	var out model.LinkGraph
	for _, l := range links.MainNamespace() {
		if l.Title != base && title.IsValid(l.Title) {
			out = append(out, l)
		}
	}
	return out
}

func (r *Resolver) pick(links model.LinkGraph) model.Link {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	return links[r.rand.IntN(len(links))]
}

func (r *Resolver) pickTitle(links model.LinkGraph) string {
	if len(links) == 0 {
		return ""
	}
	return r.pick(links).Title
}
