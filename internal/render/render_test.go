package render

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/litfeed/internal/model"
)

// createTestDocument returns a document long enough to be teased.
func createTestDocument(title string) *model.Document {
	doc := model.NewDocument(model.SourceArchive, "fr", title,
		strings.Repeat("Maître Corbeau, sur un arbre perché, tenait en son bec un fromage. ", 20))
	doc.Author = "Jean de La Fontaine"
	doc.GenreTag = model.GenreFable
	doc.URL = "https://fr.wikisource.org/wiki/Le_Corbeau_et_le_Renard"
	return doc
}

func TestTextSink(t *testing.T) {
	t.Parallel()

	t.Run("writes title byline and teaser", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewTextSink(&buf)

		h, err := s.Present(createTestDocument("Le Corbeau et le Renard"), DefaultHints())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h == "" {
			t.Error("expected a handle")
		}

		out := buf.String()
		for _, want := range []string{"Le Corbeau et le Renard", "Jean de La Fontaine · fable · fr", "[…]", "wikisource.org"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(out, "\x1b[") {
			t.Error("a buffer is not a terminal, output must be plain")
		}
	})

	t.Run("decoration can be forced", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewTextSink(&buf, WithDecoration(true))
		if _, err := s.Present(createTestDocument("Le Lac"), DefaultHints()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), ansiBold+"Le Lac"+ansiReset) {
			t.Error("expected a bold title")
		}
	})

	t.Run("full hint prints the whole body", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewTextSink(&buf)
		doc := createTestDocument("Le Lac")
		h, err := s.Present(doc, Hints{Full: true})
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "[…]") {
			t.Error("full text must not end with a continuation marker")
		}
		e, ok := s.Entry(h)
		if !ok || e.Text.HasMore() {
			t.Error("expected a fully revealed entry")
		}
	})

	t.Run("evict forgets the entry once", func(t *testing.T) {
		t.Parallel()

		s := NewTextSink(&bytes.Buffer{})
		h, _ := s.Present(createTestDocument("Le Lac"), DefaultHints())

		if err := s.Evict(h); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Len() != 0 {
			t.Errorf("expected no live entries, got %d", s.Len())
		}
		if err := s.Evict(h); !errors.Is(err, ErrUnknownHandle) {
			t.Errorf("expected ErrUnknownHandle, got %v", err)
		}
	})
}

func TestJSONSink(t *testing.T) {
	t.Parallel()

	t.Run("writes present and evict events", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewJSONSink(&buf)
		h, err := s.Present(createTestDocument("Le Lac"), DefaultHints())
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Evict(h); err != nil {
			t.Fatal(err)
		}

		var events []Event
		sc := bufio.NewScanner(&buf)
		for sc.Scan() {
			var ev Event
			if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
				t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
			}
			events = append(events, ev)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		present := events[0]
		if present.Event != EventPresent || present.Handle != h || !present.More {
			t.Errorf("unexpected present event %+v", present)
		}
		if present.Doc == nil || present.Doc.Author != "Jean de La Fontaine" {
			t.Errorf("unexpected document %+v", present.Doc)
		}
		if present.Doc.Body != "" {
			t.Error("body must be omitted by default")
		}
		if present.Teaser == "" || len([]rune(present.Teaser)) > DefaultHints().TeaserLimit {
			t.Errorf("unexpected teaser length %d", len([]rune(present.Teaser)))
		}
		if events[1].Event != EventEvict || events[1].Handle != h {
			t.Errorf("unexpected evict event %+v", events[1])
		}
	})

	t.Run("body is included on request without touching the document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		doc := createTestDocument("Le Lac")
		s := NewJSONSink(&buf, WithBody())
		if _, err := s.Present(doc, DefaultHints()); err != nil {
			t.Fatal(err)
		}
		var ev Event
		if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Doc.Body != doc.Body {
			t.Error("expected the full body")
		}
	})
}

func TestMarkdownSink(t *testing.T) {
	t.Parallel()

	t.Run("flushes live entries in order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewMarkdownSink(&buf, WithMarkdownTitle("Lectures"))
		first, _ := s.Present(createTestDocument("Le Lac"), DefaultHints())
		if _, err := s.Present(createTestDocument("Le Vallon"), DefaultHints()); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Present(createTestDocument("L'Isolement"), DefaultHints()); err != nil {
			t.Fatal(err)
		}
		if err := s.Evict(first); err != nil {
			t.Fatal(err)
		}
		if err := s.Flush(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "# Lectures") {
			t.Error("expected the document heading")
		}
		if strings.Contains(out, "## Le Lac") {
			t.Error("evicted entry must not be written")
		}
		vallon := strings.Index(out, "## Le Vallon")
		isolement := strings.Index(out, "## L'Isolement")
		if vallon < 0 || isolement < 0 || vallon > isolement {
			t.Errorf("entries missing or out of order:\n%s", out)
		}
		if !strings.Contains(out, "| Title") {
			t.Error("expected an index table")
		}
	})

	t.Run("empty feed writes a note", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := NewMarkdownSink(&buf).Flush(); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Nothing to read yet.") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

func TestMultiSink(t *testing.T) {
	t.Parallel()

	var text, js bytes.Buffer
	ts := NewTextSink(&text)
	jsink := NewJSONSink(&js)
	m := NewMultiSink(ts, jsink)

	h, err := m.Present(createTestDocument("Le Lac"), DefaultHints())
	if err != nil {
		t.Fatal(err)
	}
	if ts.Len() != 1 || jsink.Len() != 1 {
		t.Fatal("expected both sinks to hold the entry")
	}
	if err := m.Evict(h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Len() != 0 || jsink.Len() != 0 {
		t.Error("expected both sinks to evict the entry")
	}
	if err := m.Evict(h); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiSinkPresentFailure(t *testing.T) {
	t.Parallel()

	var js bytes.Buffer
	jsink := NewJSONSink(&js)
	m := NewMultiSink(jsink, NewTextSink(failingWriter{}))

	if _, err := m.Present(createTestDocument("Le Lac"), DefaultHints()); err == nil {
		t.Fatal("expected error from the failing sink")
	}
	if jsink.Len() != 0 {
		t.Errorf("expected the first sink to drop the entry, got %d live entries", jsink.Len())
	}
	if !strings.Contains(js.String(), `"event":"evict"`) {
		t.Errorf("expected an evict event, got %q", js.String())
	}
}

func TestSinkReveal(t *testing.T) {
	t.Parallel()

	doc := createTestDocument("Le Corbeau et le Renard")
	hints := Hints{TeaserLimit: 350, ChunkSize: 700}

	t.Run("text sink prints chunks until the text is complete", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewTextSink(&buf, WithDecoration(false))
		h, err := s.Present(doc, hints)
		if err != nil {
			t.Fatal(err)
		}

		got := ""
		for range 10 {
			chunk, more, err := s.Reveal(h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got += chunk
			if !more {
				break
			}
		}
		e, _ := s.Entry(h)
		if e.Text.Teaser()+got != doc.Body {
			t.Error("teaser + revealed chunks do not rebuild the body")
		}
		if !strings.Contains(buf.String(), "… Le Corbeau et le Renard") {
			t.Errorf("expected a continuation header:\n%s", buf.String())
		}
		if chunk, more, err := s.Reveal(h); chunk != "" || more || err != nil {
			t.Errorf("expected nothing left, got %q, %v, %v", chunk, more, err)
		}
	})

	t.Run("chunk size hint bounds each chunk", func(t *testing.T) {
		t.Parallel()

		s := NewMarkdownSink(&bytes.Buffer{})
		h, err := s.Present(doc, Hints{TeaserLimit: 100, ChunkSize: 100})
		if err != nil {
			t.Fatal(err)
		}
		chunk, more, err := s.Reveal(h)
		if err != nil {
			t.Fatal(err)
		}
		if n := len([]rune(chunk)); n == 0 || n > 100 || !more {
			t.Errorf("unexpected chunk of %d runes, more=%v", n, more)
		}
	})

	t.Run("json sink writes reveal events", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := NewJSONSink(&buf)
		h, err := s.Present(doc, hints)
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := s.Reveal(h); err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		var ev Event
		if err := json.Unmarshal([]byte(lines[len(lines)-1]), &ev); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if ev.Event != EventReveal || ev.Handle != h || ev.Chunk == "" || !ev.More {
			t.Errorf("unexpected event %+v", ev)
		}
	})

	t.Run("multi sink forwards to every sink", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiSink(NewTextSink(&text), NewJSONSink(&js))
		h, err := m.Present(doc, hints)
		if err != nil {
			t.Fatal(err)
		}
		chunk, more, err := m.Reveal(h)
		if err != nil || chunk == "" || !more {
			t.Fatalf("unexpected reveal %q, %v, %v", chunk, more, err)
		}
		if !strings.Contains(text.String(), chunk) || !strings.Contains(js.String(), EventReveal) {
			t.Error("expected both sinks to reveal the chunk")
		}
	})

	t.Run("unknown handle is an error", func(t *testing.T) {
		t.Parallel()

		if _, _, err := NewTextSink(&bytes.Buffer{}).Reveal("missing"); !errors.Is(err, ErrUnknownHandle) {
			t.Errorf("expected ErrUnknownHandle, got %v", err)
		}
	})
}
