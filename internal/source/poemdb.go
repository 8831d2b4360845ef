package source

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nao1215/litfeed/internal/httpclient"
	"github.com/nao1215/litfeed/internal/language"
	"github.com/nao1215/litfeed/internal/metadata"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/quality"
)

// DefaultPoemDBURL is the PoetryDB API root.
const DefaultPoemDBURL = "https://poetrydb.org"

// DefaultPoemBatch is the number of random poems requested per fill.
const DefaultPoemBatch = 10

// PoemDB draws random poems from a PoetryDB-compatible API. The database
// only holds English poetry.
type PoemDB struct {
	http    *httpclient.Client
	baseURL string
	batch   int
	gate    gate
	logger  *slog.Logger
}

// PoemDBOption configures a PoemDB.
type PoemDBOption func(*PoemDB)

// WithPoemDBURL sets the API root.
func WithPoemDBURL(u string) PoemDBOption {
	return func(p *PoemDB) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithPoemBatch sets the number of poems requested per fill.
func WithPoemBatch(n int) PoemDBOption {
	return func(p *PoemDB) {
		if n > 0 {
			p.batch = n
		}
	}
}

// WithPoemGate sets the scorer and language detector poems must pass.
// Either may be nil.
func WithPoemGate(s *quality.Scorer, d *language.Detector) PoemDBOption {
	return func(p *PoemDB) {
		p.gate = gate{scorer: s, detector: d}
	}
}

// WithPoemLogger sets the logger.
func WithPoemLogger(logger *slog.Logger) PoemDBOption {
	return func(p *PoemDB) {
		p.logger = logger
	}
}

// NewPoemDB creates a PoemDB adapter.
func NewPoemDB(hc *httpclient.Client, opts ...PoemDBOption) *PoemDB {
	p := &PoemDB{
		http:    hc,
		baseURL: DefaultPoemDBURL,
		batch:   DefaultPoemBatch,
		gate:    gate{scorer: quality.NewScorer()},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Adapter.
func (p *PoemDB) Name() string {
	return string(model.SourcePoemDB)
}

type poem struct {
	Title  string   `json:"title"`
	Author string   `json:"author"`
	Lines  []string `json:"lines"`
}

// Fill implements Adapter.
func (p *PoemDB) Fill(ctx context.Context, lang string) ([]model.PoolItem, error) {
	if lang != "en" {
		return nil, nil
	}

	var poems []poem
	if err := p.http.GetJSON(ctx, p.baseURL+"/random/"+strconv.Itoa(p.batch), nil, &poems); err != nil {
		return nil, fmt.Errorf("poemdb: %w", err)
	}

	items := make([]model.PoolItem, 0, len(poems))
	for _, pm := range poems {
		body := strings.TrimSpace(strings.Join(pm.Lines, "\n"))
		if pm.Title == "" || body == "" {
			continue
		}
		doc := model.NewDocument(model.SourcePoemDB, lang, strings.TrimSpace(pm.Title), body)
		if a := strings.TrimSpace(pm.Author); a != "" {
			doc.Author = a
		}
		doc.GenreTag = metadata.ExtractGenre(doc.Title, body)
		if doc.GenreTag == model.GenreText || doc.GenreTag == model.GenreProse {
			doc.GenreTag = model.GenrePoetry
		}
		if !p.gate.admit(doc) {
			continue
		}
		items = append(items, model.PreloadedItem(doc))
	}

	p.logger.Debug("poemdb fill", "received", len(poems), "admitted", len(items))
	return items, nil
}
