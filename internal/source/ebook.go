package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"mime"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/nao1215/litfeed/internal/htmltext"
	"github.com/nao1215/litfeed/internal/httpclient"
	"github.com/nao1215/litfeed/internal/language"
	"github.com/nao1215/litfeed/internal/metadata"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/quality"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEbookURL is the Gutendex API root.
const DefaultEbookURL = "https://gutendex.com"

const (
	// DefaultEbookBatch is the number of books downloaded per fill.
	DefaultEbookBatch = 3

	// DefaultEbookPages is the number of catalog pages a random page is
	// drawn from.
	DefaultEbookPages = 10
)

// EbookDB draws excerpts of public-domain e-books from a Gutendex-compatible
// catalog. Plain-text editions are preferred; HTML editions are reduced to
// their main content with readability first.
type EbookDB struct {
	http    *httpclient.Client
	baseURL string
	batch   int
	pages   int
	gate    gate
	pick    *picker
	logger  *slog.Logger
}

// EbookOption configures an EbookDB.
type EbookOption func(*EbookDB)

// WithEbookURL sets the catalog API root.
func WithEbookURL(u string) EbookOption {
	return func(e *EbookDB) {
		e.baseURL = strings.TrimRight(u, "/")
	}
}

// WithEbookBatch sets the number of books downloaded per fill.
func WithEbookBatch(n int) EbookOption {
	return func(e *EbookDB) {
		if n > 0 {
			e.batch = n
		}
	}
}

// WithEbookPages sets the number of catalog pages drawn from.
func WithEbookPages(n int) EbookOption {
	return func(e *EbookDB) {
		if n > 0 {
			e.pages = n
		}
	}
}

// WithEbookGate sets the scorer and language detector excerpts must pass.
func WithEbookGate(s *quality.Scorer, d *language.Detector) EbookOption {
	return func(e *EbookDB) {
		e.gate = gate{scorer: s, detector: d}
	}
}

// WithEbookRand sets the random source.
func WithEbookRand(rng *rand.Rand) EbookOption {
	return func(e *EbookDB) {
		e.pick = newPicker(rng)
	}
}

// WithEbookLogger sets the logger.
func WithEbookLogger(logger *slog.Logger) EbookOption {
	return func(e *EbookDB) {
		e.logger = logger
	}
}

// NewEbookDB creates an EbookDB adapter.
func NewEbookDB(hc *httpclient.Client, opts ...EbookOption) *EbookDB {
	e := &EbookDB{
		http:    hc,
		baseURL: DefaultEbookURL,
		batch:   DefaultEbookBatch,
		pages:   DefaultEbookPages,
		gate:    gate{scorer: quality.NewScorer()},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pick == nil {
		e.pick = newPicker(nil)
	}
	return e
}

// Name implements Adapter.
func (e *EbookDB) Name() string {
	return string(model.SourceEbook)
}

type gutendexPage struct {
	Results []gutendexBook `json:"results"`
}

type gutendexBook struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Formats map[string]string `json:"formats"`
}

// Fill implements Adapter. Books whose download or excerpt fails are skipped.
func (e *EbookDB) Fill(ctx context.Context, lang string) ([]model.PoolItem, error) {
	if !language.IsSupported(lang) {
		return nil, nil
	}

	q := url.Values{
		"languages": {lang},
		"mime_type": {"text/"},
		"page":      {strconv.Itoa(1 + e.pick.intN(e.pages))},
	}
	var catalog gutendexPage
	if err := e.http.GetJSON(ctx, e.baseURL+"/books", q, &catalog); err != nil {
		return nil, fmt.Errorf("ebook catalog: %w", err)
	}

	books := catalog.Results
	e.pick.shuffle(len(books), func(i, j int) { books[i], books[j] = books[j], books[i] })
	if len(books) > e.batch {
		books = books[:e.batch]
	}

	items := make([]model.PoolItem, 0, len(books))
	for _, b := range books {
		doc, err := e.document(ctx, lang, b)
		if err != nil {
			e.logger.Debug("ebook skipped", "id", b.ID, "error", err)
			continue
		}
		if !e.gate.admit(doc) {
			e.logger.Debug("ebook excerpt rejected", "id", b.ID, "title", b.Title)
			continue
		}
		items = append(items, model.PreloadedItem(doc))
	}
	return items, nil
}

func (e *EbookDB) document(ctx context.Context, lang string, b gutendexBook) (*model.Document, error) {
	text, err := e.download(ctx, b)
	if err != nil {
		return nil, err
	}
	body := excerpt(stripBoilerplate(text), DefaultExcerptMin, DefaultExcerptMax, e.pick)
	if body == "" {
		return nil, fmt.Errorf("book %d has no text", b.ID)
	}

	doc := model.NewDocument(model.SourceEbook, lang, strings.TrimSpace(b.Title), body)
	doc.Identifier = "gutenberg:" + strconv.Itoa(b.ID)
	doc.URL = "https://www.gutenberg.org/ebooks/" + strconv.Itoa(b.ID)
	if len(b.Authors) > 0 {
		doc.Author = displayName(b.Authors[0].Name)
	}
	doc.GenreTag = metadata.ExtractGenre(doc.Title, body)
	return doc, nil
}

// download fetches the plain-text edition, or the HTML edition reduced with
// readability when no plain text is offered. Either is decoded to UTF-8 from
// the charset named by the format or the response.
func (e *EbookDB) download(ctx context.Context, b gutendexBook) (string, error) {
	if key := bestFormat(b.Formats, "text/plain"); key != "" {
		body, err := e.fetchDecoded(ctx, key, b.Formats[key])
		if err != nil {
			return "", err
		}
		return string(body), nil
	}

	key := bestFormat(b.Formats, "text/html")
	if key == "" {
		return "", fmt.Errorf("book %d has no text format", b.ID)
	}
	u := b.Formats[key]
	body, err := e.fetchDecoded(ctx, key, u)
	if err != nil {
		return "", err
	}
	return readableText(body, u)
}

// fetchDecoded downloads u and converts the body to UTF-8.
func (e *EbookDB) fetchDecoded(ctx context.Context, mimeType, u string) ([]byte, error) {
	resp, err := e.http.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	charset := formatCharset(mimeType)
	if charset == "" {
		charset = formatCharset(resp.ContentType)
	}
	return decodeText(resp.Body, charset)
}

// decodeText converts body from charset to UTF-8. A body without a charset
// or already in UTF-8 is returned unchanged.
func decodeText(body []byte, charset string) ([]byte, error) {
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", charset, err)
	}
	return out, nil
}

// readableText extracts the main content of an HTML document as plain text.
func readableText(body []byte, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), parsed)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return htmltext.Text(article.Content)
}

// bestFormat returns the format key whose MIME type starts with prefix,
// ignoring zipped editions. UTF-8 editions win over US-ASCII ones, which win
// over any other charset; ties go to the smallest key so the choice is
// stable.
func bestFormat(formats map[string]string, prefix string) string {
	keys := make([]string, 0, len(formats))
	for k, u := range formats {
		if strings.HasPrefix(k, prefix) && !strings.HasSuffix(u, ".zip") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := charsetRank(keys[i]), charsetRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}

// charsetRank orders formats by charset preference.
func charsetRank(mimeType string) int {
	switch formatCharset(mimeType) {
	case "utf-8", "utf8":
		return 0
	case "us-ascii", "ascii":
		return 1
	default:
		return 2
	}
}

// formatCharset returns the lower-cased charset parameter of a MIME type.
func formatCharset(mimeType string) string {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// lifeDates matches a trailing ", 1802-1885" in catalog names.
var lifeDates = regexp.MustCompile(`,\s*\d{3,4}\??-(?:\d{3,4}\??)?\.?$`)

// displayName turns a catalog name "Hugo, Victor, 1802-1885" into "Victor Hugo".
func displayName(name string) string {
	name = lifeDates.ReplaceAllString(strings.TrimSpace(name), "")
	last, first, ok := strings.Cut(name, ", ")
	if !ok || strings.Contains(first, ",") {
		return name
	}
	return first + " " + last
}
