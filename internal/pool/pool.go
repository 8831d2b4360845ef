package pool

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/source"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Fill after Close.
var ErrClosed = errors.New("pool is closed")

const (
	// DefaultLowWater is the pool size below which Take starts a refill.
	DefaultLowWater = 5

	// DefaultFillTimeout bounds one background fill.
	DefaultFillTimeout = 30 * time.Second

	// DefaultConcurrency is the number of adapters filled at once.
	DefaultConcurrency = 4
)

// State is the fill state of a Pool.
type State int

const (
	// StateIdle means no fill is in flight.
	StateIdle State = iota

	// StateFilling means a fill is in flight.
	StateFilling
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFilling:
		return "filling"
	default:
		return "unknown"
	}
}

// Pool is a shuffled, deduplicated queue of items for one language.
// It is safe for concurrent use.
type Pool struct {
	adapters    []source.Adapter
	language    string
	lowWater    int
	concurrency int
	fillTimeout time.Duration
	logger      *slog.Logger

	// base is the parent context of background fills; cancel stops them.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	rng    *rand.Rand
	items  []model.PoolItem
	keys   map[model.Key]struct{}
	state  State
	done   chan struct{}
	closed bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithLowWater sets the refill threshold. Zero disables background refills.
func WithLowWater(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.lowWater = n
		}
	}
}

// WithConcurrency sets the number of adapters filled at once.
func WithConcurrency(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithFillTimeout bounds each background fill.
func WithFillTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.fillTimeout = d
		}
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(p *Pool) {
		p.rng = rng
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// New creates an empty Pool drawing from adapters for language.
// Call Close to stop background fills.
func New(language string, adapters []source.Adapter, opts ...Option) *Pool {
	p := &Pool{
		adapters:    adapters,
		language:    language,
		lowWater:    DefaultLowWater,
		concurrency: DefaultConcurrency,
		fillTimeout: DefaultFillTimeout,
		keys:        make(map[model.Key]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.rng == nil {
		seed := uint64(time.Now().UnixNano())
		p.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	p.base, p.cancel = context.WithCancel(context.Background())
	return p
}

// Language returns the language the pool is filled for.
func (p *Pool) Language() string {
	return p.language
}

// Len returns the number of items in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// State returns the current fill state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Fill asks every adapter for a batch and merges the results into the pool.
// If a fill is already in flight Fill returns nil immediately; use Wait to
// block until it finishes. An error is returned only when no adapter
// contributed any item.
func (p *Pool) Fill(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.state == StateFilling {
		p.mu.Unlock()
		return nil
	}
	p.begin()
	p.mu.Unlock()

	return p.fill(ctx)
}

// Take removes and returns the head of the pool. It reports false when the
// pool is empty. Dropping below the low-water mark starts a background fill.
func (p *Pool) Take() (model.PoolItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var item model.PoolItem
	ok := len(p.items) > 0
	if ok {
		item = p.items[0]
		p.items[0] = model.PoolItem{}
		p.items = p.items[1:]
		delete(p.keys, item.Key())
	}

	if len(p.items) < p.lowWater && p.state == StateIdle && !p.closed {
		p.begin()
		go func() {
			ctx, cancel := context.WithTimeout(p.base, p.fillTimeout)
			defer cancel()
			if err := p.fill(ctx); err != nil {
				p.logger.Debug("background fill failed", "language", p.language, "error", err)
			}
		}()
	}
	return item, ok
}

// Wait blocks until the fill in flight, if any, has finished.
func (p *Pool) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close cancels background fills and waits for them to return.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	p.Wait()
}

// begin marks a fill in flight. p.mu must be held.
func (p *Pool) begin() {
	p.state = StateFilling
	p.done = make(chan struct{})
}

// fill runs one fill. The caller must have called begin.
func (p *Pool) fill(ctx context.Context) error {
	start := time.Now()
	batches := make([][]model.PoolItem, len(p.adapters))
	errs := make([]error, len(p.adapters))

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, a := range p.adapters {
		g.Go(func() error {
			items, err := a.Fill(ctx, p.language)
			if err != nil {
				p.logger.Debug("adapter fill failed", "adapter", a.Name(), "language", p.language, "error", err)
				errs[i] = err
			}
			batches[i] = items
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // errors are collected per adapter

	p.mu.Lock()
	defer p.mu.Unlock()
	added := p.merge(batches)
	p.state = StateIdle
	close(p.done)

	p.logger.Debug("pool filled",
		"language", p.language,
		"added", added,
		"size", len(p.items),
		"elapsed", time.Since(start),
	)

	if added == 0 {
		if err := errors.Join(errs...); err != nil {
			return err
		}
		return ctx.Err()
	}
	return nil
}

// merge appends unseen items and reshuffles the pool. p.mu must be held.
func (p *Pool) merge(batches [][]model.PoolItem) int {
	added := 0
	for _, batch := range batches {
		for _, item := range batch {
			if item.Language() != p.language {
				continue
			}
			k := item.Key()
			if _, dup := p.keys[k]; dup {
				continue
			}
			p.keys[k] = struct{}{}
			p.items = append(p.items, item)
			added++
		}
	}
	if added > 0 {
		p.rng.Shuffle(len(p.items), func(i, j int) {
			p.items[i], p.items[j] = p.items[j], p.items[i]
		})
	}
	return added
}
