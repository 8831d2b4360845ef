package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/render"
)

const (
	// DefaultMaxItems is the number of live entries kept in the feed.
	DefaultMaxItems = 50

	// AttemptsPerItem bounds the pulls spent per requested item.
	AttemptsPerItem = 5
)

// Direction is the end of the feed that is extended.
type Direction int

const (
	// Down appends below the current entries and evicts from the top.
	Down Direction = iota

	// Up prepends above the current entries and evicts from the bottom.
	Up
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// State is the loading state of a Scheduler.
type State int

const (
	// StateIdle means no load is running.
	StateIdle State = iota

	// StateLoading means a LoadMore call is running.
	StateLoading
)

// Pool is the candidate queue the scheduler draws from. *pool.Pool
// implements it.
type Pool interface {
	Take() (model.PoolItem, bool)
	Fill(ctx context.Context) error
	Wait()
}

// Resolver turns a raw candidate into a document. *resolver.Resolver
// implements it.
type Resolver interface {
	Resolve(ctx context.Context, c model.PageCandidate) (*model.Document, error)
}

// Recorder is told about every document shown in a session.
// *database.DB implements it.
type Recorder interface {
	Record(ctx context.Context, sessionID string, doc *model.Document) error
}

// Result summarizes one LoadMore call. Loaded == 0 means the pool is
// exhausted for now; it is not an error.
type Result struct {
	Loaded    int `json:"loaded"`
	Requested int `json:"requested"`
	Attempts  int `json:"attempts"`
}

// Exhausted reports whether nothing could be loaded.
func (r Result) Exhausted() bool {
	return r.Loaded == 0
}

// entry is a live rendered document.
type entry struct {
	handle render.Handle
	key    model.Key
}

// Scheduler drives the feed. It is safe for concurrent use.
type Scheduler struct {
	pool      Pool
	resolver  Resolver
	sink      render.Sink
	shown     *model.ShownSet
	recorder  Recorder
	hints     render.Hints
	maxItems  int
	sessionID string
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	entries []entry
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMaxItems sets the number of live entries kept.
func WithMaxItems(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithShownSet shares a ShownSet with other components of the session.
func WithShownSet(shown *model.ShownSet) Option {
	return func(s *Scheduler) {
		if shown != nil {
			s.shown = shown
		}
	}
}

// WithRecorder sets the recorder informed of every shown document.
func WithRecorder(r Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = r
	}
}

// WithHints sets the segmentation hints passed to the sink.
func WithHints(h render.Hints) Option {
	return func(s *Scheduler) {
		s.hints = h
	}
}

// WithSessionID sets the session identifier passed to the recorder.
func WithSessionID(id string) Option {
	return func(s *Scheduler) {
		if id != "" {
			s.sessionID = id
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a Scheduler.
func New(pool Pool, resolver Resolver, sink render.Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		pool:      pool,
		resolver:  resolver,
		sink:      sink,
		shown:     model.NewShownSet(),
		hints:     render.DefaultHints(),
		maxItems:  DefaultMaxItems,
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SessionID returns the session identifier.
func (s *Scheduler) SessionID() string {
	return s.sessionID
}

// State returns the loading state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Shown returns the session's ShownSet.
func (s *Scheduler) Shown() *model.ShownSet {
	return s.shown
}

// Handles returns the live entries from top to bottom.
func (s *Scheduler) Handles() []render.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]render.Handle, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.handle
	}
	return out
}

// LoadMore extends the feed by up to count documents in direction dir.
//
// At most AttemptsPerItem*count items are pulled from the pool. Items whose
// key was already shown are skipped before resolution; documents whose
// resolved key or text fingerprint was already shown are skipped after it.
// An accepted document is marked shown before it is rendered. Transport and quality failures are
// logged and skipped. Only ctx cancellation and sink errors are returned.
func (s *Scheduler) LoadMore(ctx context.Context, count int, dir Direction) (Result, error) {
	if count <= 0 {
		return Result{}, ErrInvalidCount
	}

	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return Result{}, ErrBusy
	}
	s.state = StateLoading
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	res := Result{Requested: count}
	for res.Loaded < count && res.Attempts < AttemptsPerItem*count {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		item, ok := s.next(ctx)
		if !ok {
			break
		}
		res.Attempts++

		doc := s.accept(ctx, item)
		if doc == nil {
			continue
		}

		if err := s.present(ctx, doc, dir); err != nil {
			return res, err
		}
		res.Loaded++
	}

	if res.Exhausted() {
		s.logger.Warn("feed exhausted",
			"requested", count,
			"attempts", res.Attempts,
		)
	} else {
		s.logger.Debug("feed extended",
			"direction", dir.String(),
			"loaded", res.Loaded,
			"requested", count,
			"attempts", res.Attempts,
		)
	}
	return res, nil
}

// next takes an item, refilling the pool once when it is empty.
func (s *Scheduler) next(ctx context.Context) (model.PoolItem, bool) {
	if item, ok := s.pool.Take(); ok {
		return item, true
	}
	s.pool.Wait()
	if item, ok := s.pool.Take(); ok {
		return item, true
	}
	if err := s.pool.Fill(ctx); err != nil {
		s.logger.Debug("pool fill failed", "error", err)
	}
	s.pool.Wait()
	return s.pool.Take()
}

// accept returns the document for item, or nil when it is skipped.
func (s *Scheduler) accept(ctx context.Context, item model.PoolItem) *model.Document {
	if s.shown.Has(item.Key()) {
		return nil
	}

	doc := item.Document
	if doc == nil {
		var err error
		doc, err = s.resolver.Resolve(ctx, item.Candidate)
		if err != nil {
			s.logger.Debug("candidate skipped",
				"identifier", item.Candidate.Identifier,
				"error", err,
			)
			return nil
		}
		if doc == nil {
			return nil
		}
	}

	if !s.shown.AddDocument(doc) {
		s.logger.Debug("document already shown",
			"title", doc.Title,
			"source", doc.Source.String(),
		)
		return nil
	}
	return doc
}

// present renders doc, records it and enforces the entry cap.
func (s *Scheduler) present(ctx context.Context, doc *model.Document, dir Direction) error {
	h, err := s.sink.Present(doc, s.hints)
	if err != nil {
		return fmt.Errorf("present %q: %w", doc.Title, err)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, s.sessionID, doc); err != nil {
			s.logger.Warn("failed to record shown document", "title", doc.Title, "error", err)
		}
	}

	s.mu.Lock()
	e := entry{handle: h, key: doc.Key()}
	if dir == Up {
		s.entries = append([]entry{e}, s.entries...)
	} else {
		s.entries = append(s.entries, e)
	}
	var evicted []entry
	if over := len(s.entries) - s.maxItems; over > 0 {
		if dir == Up {
			evicted = append(evicted, s.entries[len(s.entries)-over:]...)
			s.entries = s.entries[:len(s.entries)-over]
		} else {
			evicted = append(evicted, s.entries[:over]...)
			s.entries = append([]entry(nil), s.entries[over:]...)
		}
	}
	s.mu.Unlock()

	for _, ev := range evicted {
		if err := s.sink.Evict(ev.handle); err != nil {
			s.logger.Warn("failed to evict entry", "key", ev.key.String(), "error", err)
		}
	}
	return nil
}
