package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// UnknownAuthor is the author of a document when no heuristic matched.
const UnknownAuthor = "unknown"

// Canonical genre tags produced by the metadata extractor.
const (
	GenreTheatre = "theatre"
	GenreFable   = "fable"
	GenreSonnet  = "sonnet"
	GenreTale    = "tale"
	GenreLetter  = "letter"
	GenrePoetry  = "poetry"
	GenreProse   = "prose"
	GenreText    = "text"
)

// Document is an accepted literary text ready to be segmented and rendered.
// It is created once per accepted candidate (or once per preloaded item) and
// cached for the session lifetime keyed by (Language, Identifier).
type Document struct {
	// Title is the display title.
	Title string `json:"title"`

	// Author is the detected author, or UnknownAuthor.
	Author string `json:"author"`

	// GenreTag is one of the Genre* constants.
	GenreTag string `json:"genre"`

	// Language is the language code of the text.
	Language string `json:"language"`

	// Body is the cleaned plain text.
	Body string `json:"body"`

	// Source is the adapter the document came from.
	Source Source `json:"source"`

	// Identifier is the archive page title the document was resolved from.
	// For redirects and hubs it differs from the requested identifier.
	Identifier string `json:"identifier"`

	// URL links back to the original text, when known.
	URL string `json:"url,omitempty"`
}

// NewDocument creates a document with the author and genre defaults applied.
// Invalid UTF-8 in title and body is replaced with U+FFFD.
func NewDocument(source Source, language, title, body string) *Document {
	title = strings.ToValidUTF8(title, "\uFFFD")
	body = strings.ToValidUTF8(body, "\uFFFD")
	return &Document{
		Title:      title,
		Author:     UnknownAuthor,
		GenreTag:   GenreText,
		Language:   language,
		Body:       body,
		Source:     source,
		Identifier: title,
	}
}

// Key returns the ShownSet key of the document.
func (d *Document) Key() Key {
	return Key{Source: d.Source, Title: d.Title}
}

// HasKnownAuthor reports whether an author heuristic matched.
func (d *Document) HasKnownAuthor() bool {
	return d.Author != "" && d.Author != UnknownAuthor
}

// Fingerprint returns the hex SHA3-256 digest of the whitespace-normalized
// body. Two documents with the same text yield the same fingerprint even when
// offered by different sources or under different titles.
func (d *Document) Fingerprint() string {
	normalized := strings.Join(strings.Fields(d.Body), " ")
	sum := sha3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CacheKey identifies a resolved document in the resolution cache.
type CacheKey struct {
	Language   string
	Identifier string
}

// String returns "language:identifier".
func (k CacheKey) String() string {
	return k.Language + ":" + k.Identifier
}
