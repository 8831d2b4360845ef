package render

import (
	"io"
	"strconv"

	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/markdown"
)

// MarkdownSink collects presented documents and writes them as one Markdown
// document on Flush.
//
// Design decision: Markdown output is a file meant to be read later, so
// entries are buffered and evicted entries never reach the output. We use
// the nao1215/markdown builder for tables and rules instead of string
// concatenation.
type MarkdownSink struct {
	baseSink

	title string
}

// MarkdownSinkOption configures a MarkdownSink.
type MarkdownSinkOption func(*MarkdownSink)

// WithMarkdownTitle sets the top-level heading.
func WithMarkdownTitle(title string) MarkdownSinkOption {
	return func(s *MarkdownSink) {
		s.title = title
	}
}

// NewMarkdownSink creates a MarkdownSink writing to output on Flush.
func NewMarkdownSink(output io.Writer, opts ...MarkdownSinkOption) *MarkdownSink {
	s := &MarkdownSink{
		baseSink: newBaseSink(output),
		title:    "Reading feed",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Present implements Sink.
func (s *MarkdownSink) Present(doc *model.Document, hints Hints) (Handle, error) {
	e := newEntry(doc, hints)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(e)
	return e.Handle, nil
}

// Reveal implements Revealer. The revealed text is part of the entry when
// the document is flushed.
func (s *MarkdownSink) Reveal(h Handle) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, chunk, err := s.reveal(h)
	if err != nil {
		return "", false, err
	}
	return chunk, e.Text.HasMore(), nil
}

// Evict implements Sink.
func (s *MarkdownSink) Evict(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.remove(h)
	return err
}

// Flush writes the live entries, in presentation order, as Markdown.
func (s *MarkdownSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	md := markdown.NewMarkdown(s.output)
	md.H1(s.title)
	md.PlainText("")

	if len(s.order) == 0 {
		md.Note("Nothing to read yet.")
		return md.Build()
	}

	s.writeIndex(md)
	for _, h := range s.order {
		s.writeEntry(md, s.entries[h])
	}
	return md.Build()
}

// writeIndex writes a table of the live entries.
func (s *MarkdownSink) writeIndex(md *markdown.Markdown) {
	rows := make([][]string, 0, len(s.order))
	for i, h := range s.order {
		doc := s.entries[h].Document
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			doc.Title,
			doc.Author,
			doc.GenreTag,
			doc.Source.String(),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "Author", "Genre", "Source"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeEntry writes one document section.
func (s *MarkdownSink) writeEntry(md *markdown.Markdown, e *Entry) {
	doc := e.Document
	md.H2(doc.Title)
	md.PlainText("")
	md.PlainTextf("*%s*", byline(doc))
	md.PlainText("")
	md.PlainText(e.Text.Shown())
	md.PlainText("")
	if e.Text.HasMore() {
		md.PlainText("…")
		md.PlainText("")
	}
	if doc.URL != "" {
		md.PlainTextf("[Read the full text](%s)", doc.URL)
		md.PlainText("")
	}
	md.HorizontalRule()
	md.PlainText("")
}
