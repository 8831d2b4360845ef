// Package htmltext converts rendered archive and e-book HTML into the plain
// text the quality scorer and segmenter work on.
//
// Conversion happens in two passes. goquery first removes navigation chrome,
// edit links, footnote markers and other non-content blocks; an x/net/html
// walk then emits text with line breaks at block boundaries so that verse
// keeps one line per verse.
//
// Design decision: we walk the tree ourselves instead of using Selection.Text
// because Text() concatenates block elements without separators, which would
// turn a poem into a single line and defeat the line-structure heuristics.
package htmltext

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultRemoveSelectors are removed before text extraction.
var DefaultRemoveSelectors = []string{
	"head", "script", "style", "noscript", "link", "meta",
	".mw-editsection", ".noprint", ".ws-noexport", ".navbox", ".navigation-not-searchable",
	"#toc", ".toc", ".mw-references-wrap", "sup.reference", ".reference", ".mw-cite-backlink",
	"table.headertemplate", ".headertemplate", ".ws-header", "#headertemplate",
	".metadata", ".mw-empty-elt", ".pagenum", ".ws-pagenum", ".mw-kartographer-maplink",
}

// blockElements end the current line before and after their content.
var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "dl": true, "dd": true, "dt": true,
	"tr": true, "table": true, "pre": true, "center": true, "poem": true, "hr": true,
}

// paragraphElements are followed by a blank line.
var paragraphElements = map[string]bool{
	"p": true, "blockquote": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "pre": true, "table": true,
}

// Document is parsed HTML ready for cleanup and text extraction.
type Document struct {
	doc *goquery.Document
}

// Parse parses an HTML fragment or document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseString parses HTML held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Selection exposes the underlying goquery document for callers that look
// for markup markers.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Has reports whether any element matches one of the selectors.
func (d *Document) Has(selectors ...string) bool {
	for _, sel := range selectors {
		if d.doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// Remove deletes every element matching one of the selectors.
func (d *Document) Remove(selectors ...string) {
	for _, sel := range selectors {
		d.doc.Find(sel).Remove()
	}
}

// Text removes DefaultRemoveSelectors and returns the plain text.
func (d *Document) Text() string {
	d.Remove(DefaultRemoveSelectors...)
	var w textWriter
	for _, n := range d.doc.Nodes {
		w.walk(n)
	}
	return w.String()
}

// Text converts an HTML string to plain text.
func Text(s string) (string, error) {
	d, err := ParseString(s)
	if err != nil {
		return "", err
	}
	return d.Text(), nil
}

// textWriter accumulates text while tracking pending line breaks so that
// nested blocks do not produce runs of empty lines.
type textWriter struct {
	sb       strings.Builder
	newlines int // newlines owed before the next text
	started  bool
	space    bool // a collapsed space is pending
	pre      int  // depth inside <pre>
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "br":
			w.lineBreak(1)
			return
		case "pre":
			w.pre++
			defer func() { w.pre-- }()
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && blockElements[n.Data]
	if block {
		w.lineBreak(1)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		if paragraphElements[n.Data] {
			w.lineBreak(2)
		} else {
			w.lineBreak(1)
		}
	}
}

func (w *textWriter) lineBreak(n int) {
	if n > w.newlines {
		w.newlines = n
	}
	w.space = false
}

func (w *textWriter) text(s string) {
	if w.pre > 0 {
		w.flush()
		w.sb.WriteString(s)
		w.started = true
		return
	}
	for _, field := range splitKeepSpace(s) {
		if field == " " {
			w.space = true
			continue
		}
		w.flush()
		w.sb.WriteString(field)
		w.started = true
	}
}

// flush writes pending separators before new text.
func (w *textWriter) flush() {
	switch {
	case !w.started:
	case w.newlines > 0:
		w.sb.WriteString(strings.Repeat("\n", w.newlines))
	case w.space:
		w.sb.WriteByte(' ')
	}
	w.newlines = 0
	w.space = false
}

func (w *textWriter) String() string {
	lines := strings.Split(w.sb.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(strings.ReplaceAll(l, "\u00a0", " "), " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// splitKeepSpace splits s into words and single " " markers for each run of
// whitespace.
func splitKeepSpace(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			if len(out) == 0 || out[len(out)-1] != " " {
				out = append(out, " ")
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
