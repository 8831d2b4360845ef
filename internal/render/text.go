package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/nao1215/litfeed/internal/model"
)

// ANSI sequences used by the decorated style.
const (
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// ruleWidth is the width of the separator printed between entries.
const ruleWidth = 60

// TextSink prints documents as plain text.
//
// Design decision: a terminal cannot take back what it printed, so Evict
// only forgets the entry. Decoration (bold titles, dim metadata) is enabled
// automatically when the output is a terminal and can be forced either way
// with WithDecoration.
type TextSink struct {
	baseSink

	decorate bool
}

// TextSinkOption configures a TextSink.
type TextSinkOption func(*TextSink)

// WithDecoration forces decorated or plain output.
func WithDecoration(on bool) TextSinkOption {
	return func(s *TextSink) {
		s.decorate = on
	}
}

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewTextSink creates a TextSink writing to output.
func NewTextSink(output io.Writer, opts ...TextSinkOption) *TextSink {
	s := &TextSink{
		baseSink: newBaseSink(output),
		decorate: isTerminal(output),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Present implements Sink.
func (s *TextSink) Present(doc *model.Document, hints Hints) (Handle, error) {
	e := newEntry(doc, hints)

	var sb strings.Builder
	sb.WriteString(s.style(ansiBold, doc.Title))
	sb.WriteString("\n")
	sb.WriteString(s.style(ansiDim, byline(doc)))
	sb.WriteString("\n\n")
	sb.WriteString(e.Text.Shown())
	sb.WriteString("\n")
	if e.Text.HasMore() {
		sb.WriteString(s.style(ansiDim, "[…]"))
		sb.WriteString("\n")
	}
	if doc.URL != "" {
		sb.WriteString(s.style(ansiDim, doc.URL))
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat("─", ruleWidth))
	sb.WriteString("\n")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.output, sb.String()); err != nil {
		return "", fmt.Errorf("write text entry: %w", err)
	}
	s.add(e)
	return e.Handle, nil
}

// Reveal implements Revealer. The chunk is printed as a continuation of the
// entry, followed by the same more marker and rule as Present.
func (s *TextSink) Reveal(h Handle) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, chunk, err := s.reveal(h)
	if err != nil {
		return "", false, err
	}
	if chunk == "" {
		return "", false, nil
	}

	var sb strings.Builder
	sb.WriteString(s.style(ansiDim, "… "+e.Document.Title))
	sb.WriteString("\n\n")
	sb.WriteString(chunk)
	sb.WriteString("\n")
	if e.Text.HasMore() {
		sb.WriteString(s.style(ansiDim, "[…]"))
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat("─", ruleWidth))
	sb.WriteString("\n")
	if _, err := io.WriteString(s.output, sb.String()); err != nil {
		return "", false, fmt.Errorf("write text reveal: %w", err)
	}
	return chunk, e.Text.HasMore(), nil
}

// Evict implements Sink.
func (s *TextSink) Evict(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.remove(h)
	return err
}

func (s *TextSink) style(seq, text string) string {
	if !s.decorate {
		return text
	}
	return seq + text + ansiReset
}

// byline returns "author · genre · language".
func byline(doc *model.Document) string {
	parts := make([]string, 0, 3)
	if doc.HasKnownAuthor() {
		parts = append(parts, doc.Author)
	}
	parts = append(parts, doc.GenreTag, doc.Language)
	return strings.Join(parts, " · ")
}
