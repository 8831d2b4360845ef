package render

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/segment"
)

// ErrUnknownHandle is returned by Evict for a handle the sink never issued
// or already evicted.
var ErrUnknownHandle = errors.New("unknown render handle")

// Handle identifies one presented document.
type Handle string

// NewHandle returns a fresh random handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Hints tell a sink how to segment a document.
type Hints struct {
	// TeaserLimit is the maximum teaser length in runes.
	TeaserLimit int

	// ChunkSize is the length of each further reveal in runes.
	ChunkSize int

	// Full presents the whole text instead of the teaser.
	Full bool
}

// DefaultHints returns the segmentation defaults.
func DefaultHints() Hints {
	return Hints{
		TeaserLimit: segment.DefaultTeaserLimit,
		ChunkSize:   segment.DefaultChunkSize,
	}
}

// Sink presents documents. Implementations must be safe for concurrent use.
type Sink interface {
	// Present shows doc and returns its handle.
	Present(doc *model.Document, hints Hints) (Handle, error)

	// Evict removes a previously presented document.
	Evict(h Handle) error
}

// Revealer is implemented by sinks that can show more of a presented
// document. Every sink in this package implements it.
type Revealer interface {
	// Reveal releases the next chunk of h's remainder, sized by the
	// ChunkSize hint given at Present. It reports whether more remains.
	Reveal(h Handle) (chunk string, more bool, err error)
}

// Entry is a presented document with its segmented text.
type Entry struct {
	Handle   Handle
	Document *model.Document
	Text     *segment.Text
	Hints    Hints
}

// newEntry segments doc according to hints.
func newEntry(doc *model.Document, hints Hints) *Entry {
	if hints.TeaserLimit <= 0 {
		hints.TeaserLimit = segment.DefaultTeaserLimit
	}
	text := segment.Segment(doc.Body, hints.TeaserLimit)
	if hints.Full {
		text.RevealAll()
	}
	return &Entry{Handle: NewHandle(), Document: doc, Text: text, Hints: hints}
}

// baseSink provides the output destination and the registry of live entries.
type baseSink struct {
	mu      sync.Mutex
	output  io.Writer
	entries map[Handle]*Entry
	order   []Handle
}

// newBaseSink creates a baseSink writing to output.
func newBaseSink(output io.Writer) baseSink {
	return baseSink{output: output, entries: make(map[Handle]*Entry)}
}

// add registers e. b.mu must be held.
func (b *baseSink) add(e *Entry) {
	b.entries[e.Handle] = e
	b.order = append(b.order, e.Handle)
}

// remove unregisters h. b.mu must be held.
func (b *baseSink) remove(h Handle) (*Entry, error) {
	e, ok := b.entries[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	delete(b.entries, h)
	for i, o := range b.order {
		if o == h {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return e, nil
}

// reveal advances h's text by one chunk. b.mu must be held.
func (b *baseSink) reveal(h Handle) (*Entry, string, error) {
	e, ok := b.entries[h]
	if !ok {
		return nil, "", ErrUnknownHandle
	}
	chunkSize := e.Hints.ChunkSize
	if chunkSize <= 0 {
		chunkSize = segment.DefaultChunkSize
	}
	return e, e.Text.Reveal(chunkSize), nil
}

// Entry returns the live entry for h.
func (b *baseSink) Entry(h Handle) (*Entry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[h]
	return e, ok
}

// Len returns the number of live entries.
func (b *baseSink) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// MultiSink presents to several sinks at once under a handle of its own.
// Evict is forwarded to each sink with the handle that sink issued.
type MultiSink struct {
	mu      sync.Mutex
	sinks   []Sink
	handles map[Handle][]Handle
}

// NewMultiSink creates a Sink that forwards to all sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks, handles: make(map[Handle][]Handle)}
}

// Present implements Sink. It stops on the first error and evicts the
// document from the sinks that already presented it.
func (m *MultiSink) Present(doc *model.Document, hints Hints) (Handle, error) {
	hs := make([]Handle, 0, len(m.sinks))
	for _, s := range m.sinks {
		h, err := s.Present(doc, hints)
		if err != nil {
			errs := []error{err}
			for i, issued := range hs {
				errs = append(errs, m.sinks[i].Evict(issued))
			}
			return "", errors.Join(errs...)
		}
		hs = append(hs, h)
	}
	h := NewHandle()
	m.mu.Lock()
	m.handles[h] = hs
	m.mu.Unlock()
	return h, nil
}

// Evict implements Sink.
func (m *MultiSink) Evict(h Handle) error {
	m.mu.Lock()
	hs, ok := m.handles[h]
	delete(m.handles, h)
	m.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	var errs []error
	for i, s := range m.sinks {
		errs = append(errs, s.Evict(hs[i]))
	}
	return errors.Join(errs...)
}

// Reveal implements Revealer. It forwards to every sink that implements
// Revealer and returns the chunk of the first one.
func (m *MultiSink) Reveal(h Handle) (string, bool, error) {
	m.mu.Lock()
	hs, ok := m.handles[h]
	m.mu.Unlock()
	if !ok {
		return "", false, ErrUnknownHandle
	}

	var (
		chunk    string
		more     bool
		answered bool
		errs     []error
	)
	for i, s := range m.sinks {
		r, ok := s.(Revealer)
		if !ok {
			continue
		}
		c, mo, err := r.Reveal(hs[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !answered {
			chunk, more, answered = c, mo, true
		}
	}
	return chunk, more, errors.Join(errs...)
}
