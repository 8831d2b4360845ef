package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/litfeed/internal/httpclient"
	"github.com/nao1215/litfeed/internal/language"
	"github.com/nao1215/litfeed/internal/metadata"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/quality"
)

// DefaultScannedURL is the Internet Archive root.
const DefaultScannedURL = "https://archive.org"

const (
	// DefaultScannedBatch is the number of books downloaded per fill.
	DefaultScannedBatch = 3

	// DefaultScannedRows is the number of search results per page.
	DefaultScannedRows = 50

	// DefaultScannedPages is the number of result pages a random page is
	// drawn from.
	DefaultScannedPages = 20
)

// marcLanguages maps ISO 639-1 codes to the MARC codes the archive indexes.
var marcLanguages = map[string]string{
	"en": "eng",
	"fr": "fre",
	"de": "ger",
	"es": "spa",
	"it": "ita",
	"pt": "por",
}

// ScannedBooks draws excerpts of OCRed books from an Internet Archive
// compatible service. OCR output is noisy, so the language detector gate is
// recommended.
type ScannedBooks struct {
	http       *httpclient.Client
	baseURL    string
	collection string
	batch      int
	rows       int
	pages      int
	gate       gate
	pick       *picker
	logger     *slog.Logger
}

// ScannedOption configures a ScannedBooks adapter.
type ScannedOption func(*ScannedBooks)

// WithScannedURL sets the service root.
func WithScannedURL(u string) ScannedOption {
	return func(s *ScannedBooks) {
		s.baseURL = strings.TrimRight(u, "/")
	}
}

// WithScannedCollection restricts the search to one collection.
func WithScannedCollection(c string) ScannedOption {
	return func(s *ScannedBooks) {
		s.collection = c
	}
}

// WithScannedBatch sets the number of books downloaded per fill.
func WithScannedBatch(n int) ScannedOption {
	return func(s *ScannedBooks) {
		if n > 0 {
			s.batch = n
		}
	}
}

// WithScannedGate sets the scorer and language detector excerpts must pass.
func WithScannedGate(sc *quality.Scorer, d *language.Detector) ScannedOption {
	return func(s *ScannedBooks) {
		s.gate = gate{scorer: sc, detector: d}
	}
}

// WithScannedRand sets the random source.
func WithScannedRand(rng *rand.Rand) ScannedOption {
	return func(s *ScannedBooks) {
		s.pick = newPicker(rng)
	}
}

// WithScannedLogger sets the logger.
func WithScannedLogger(logger *slog.Logger) ScannedOption {
	return func(s *ScannedBooks) {
		s.logger = logger
	}
}

// NewScannedBooks creates a ScannedBooks adapter.
func NewScannedBooks(hc *httpclient.Client, opts ...ScannedOption) *ScannedBooks {
	s := &ScannedBooks{
		http:    hc,
		baseURL: DefaultScannedURL,
		batch:   DefaultScannedBatch,
		rows:    DefaultScannedRows,
		pages:   DefaultScannedPages,
		gate:    gate{scorer: quality.NewScorer()},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pick == nil {
		s.pick = newPicker(nil)
	}
	return s
}

// Name implements Adapter.
func (s *ScannedBooks) Name() string {
	return string(model.SourceScanned)
}

// stringList decodes a JSON string or array of strings.
type stringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = stringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type scannedSearch struct {
	Response struct {
		Docs []scannedItem `json:"docs"`
	} `json:"response"`
}

type scannedItem struct {
	Identifier string     `json:"identifier"`
	Title      stringList `json:"title"`
	Creator    stringList `json:"creator"`
}

// Fill implements Adapter.
func (s *ScannedBooks) Fill(ctx context.Context, lang string) ([]model.PoolItem, error) {
	marc, ok := marcLanguages[lang]
	if !ok {
		return nil, nil
	}

	query := "mediatype:(texts) AND language:(" + marc + ")"
	if s.collection != "" {
		query += " AND collection:(" + s.collection + ")"
	}
	q := url.Values{
		"q":      {query},
		"fl[]":   {"identifier", "title", "creator"},
		"rows":   {strconv.Itoa(s.rows)},
		"page":   {strconv.Itoa(1 + s.pick.intN(s.pages))},
		"output": {"json"},
	}
	var result scannedSearch
	if err := s.http.GetJSON(ctx, s.baseURL+"/advancedsearch.php", q, &result); err != nil {
		return nil, fmt.Errorf("scanned search: %w", err)
	}

	docs := result.Response.Docs
	s.pick.shuffle(len(docs), func(i, j int) { docs[i], docs[j] = docs[j], docs[i] })
	if len(docs) > s.batch {
		docs = docs[:s.batch]
	}

	items := make([]model.PoolItem, 0, len(docs))
	for _, d := range docs {
		doc, err := s.document(ctx, lang, d)
		if err != nil {
			s.logger.Debug("scanned book skipped", "identifier", d.Identifier, "error", err)
			continue
		}
		if !s.gate.admit(doc) {
			s.logger.Debug("scanned excerpt rejected", "identifier", d.Identifier)
			continue
		}
		items = append(items, model.PreloadedItem(doc))
	}
	return items, nil
}

func (s *ScannedBooks) document(ctx context.Context, lang string, item scannedItem) (*model.Document, error) {
	if item.Identifier == "" || len(item.Title) == 0 {
		return nil, fmt.Errorf("incomplete search result %q", item.Identifier)
	}
	id := url.PathEscape(item.Identifier)
	resp, err := s.http.Get(ctx, s.baseURL+"/download/"+id+"/"+id+"_djvu.txt", nil)
	if err != nil {
		return nil, err
	}
	body := excerpt(stripBoilerplate(string(resp.Body)), DefaultExcerptMin, DefaultExcerptMax, s.pick)
	if body == "" {
		return nil, fmt.Errorf("item %q has no text", item.Identifier)
	}

	doc := model.NewDocument(model.SourceScanned, lang, strings.TrimSpace(item.Title[0]), body)
	doc.Identifier = "ia:" + item.Identifier
	doc.URL = s.baseURL + "/details/" + id
	if len(item.Creator) > 0 {
		doc.Author = displayName(item.Creator[0])
	}
	doc.GenreTag = metadata.ExtractGenre(doc.Title, body)
	return doc, nil
}
