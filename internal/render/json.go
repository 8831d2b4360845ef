package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/litfeed/internal/model"
)

// Event names written by JSONSink.
const (
	EventPresent = "present"
	EventReveal  = "reveal"
	EventEvict   = "evict"
)

// Event is one line of JSONSink output.
type Event struct {
	Event  string          `json:"event"`
	Handle Handle          `json:"handle"`
	Doc    *model.Document `json:"document,omitempty"`
	Teaser string          `json:"teaser,omitempty"`
	Chunk  string          `json:"chunk,omitempty"`
	More   bool            `json:"more,omitempty"`
}

// JSONSink writes one JSON event per line.
//
// Design decision: the document body is omitted unless WithBody is set,
// since consumers usually only need the teaser and an identifier to fetch
// the rest.
type JSONSink struct {
	baseSink

	withBody bool
}

// JSONSinkOption configures a JSONSink.
type JSONSinkOption func(*JSONSink)

// WithBody includes the full document body in present events.
func WithBody() JSONSinkOption {
	return func(s *JSONSink) {
		s.withBody = true
	}
}

// NewJSONSink creates a JSONSink writing to output.
func NewJSONSink(output io.Writer, opts ...JSONSinkOption) *JSONSink {
	s := &JSONSink{baseSink: newBaseSink(output)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Present implements Sink.
func (s *JSONSink) Present(doc *model.Document, hints Hints) (Handle, error) {
	e := newEntry(doc, hints)

	out := *doc
	if !s.withBody {
		out.Body = ""
	}
	ev := Event{
		Event:  EventPresent,
		Handle: e.Handle,
		Doc:    &out,
		Teaser: e.Text.Shown(),
		More:   e.Text.HasMore(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(ev); err != nil {
		return "", err
	}
	s.add(e)
	return e.Handle, nil
}

// Reveal implements Revealer. Nothing is written once the text is fully
// revealed.
func (s *JSONSink) Reveal(h Handle) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, chunk, err := s.reveal(h)
	if err != nil {
		return "", false, err
	}
	if chunk == "" {
		return "", false, nil
	}
	more := e.Text.HasMore()
	if err := s.write(Event{Event: EventReveal, Handle: h, Chunk: chunk, More: more}); err != nil {
		return "", false, err
	}
	return chunk, more, nil
}

// Evict implements Sink.
func (s *JSONSink) Evict(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.remove(h); err != nil {
		return err
	}
	return s.write(Event{Event: EventEvict, Handle: h})
}

// write encodes ev as one line. s.mu must be held.
func (s *JSONSink) write(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Event, err)
	}
	data = append(data, '\n')
	if _, err := s.output.Write(data); err != nil {
		return fmt.Errorf("write %s event: %w", ev.Event, err)
	}
	return nil
}
