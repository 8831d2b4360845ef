package source

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/nao1215/litfeed/internal/archive"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/title"
)

// CategoryLister enumerates archive categories. archive.Client implements it.
type CategoryLister interface {
	CategoryMembers(ctx context.Context, category, language string, limit int) ([]string, error)
}

// RandomLister draws random archive pages. archive.Client implements it.
type RandomLister interface {
	Random(ctx context.Context, language string, limit int) ([]string, error)
}

// DefaultSearchLimit is the number of hits requested per search.
const DefaultSearchLimit = 20

// ArchiveSearch draws raw candidates from a wiki-style archive: one random
// search term and, when a CategoryLister is configured, one random category
// per fill. With a RandomLister, random pages are drawn when neither
// yields a title.
type ArchiveSearch struct {
	searcher   archive.Searcher
	categories CategoryLister
	random     RandomLister
	terms      map[string][]string
	cats       map[string][]string
	limit      int
	pick       *picker
	logger     *slog.Logger
}

// ArchiveSearchOption configures an ArchiveSearch.
type ArchiveSearchOption func(*ArchiveSearch)

// WithSearchTerms sets the search terms per language.
func WithSearchTerms(terms map[string][]string) ArchiveSearchOption {
	return func(a *ArchiveSearch) {
		a.terms = terms
	}
}

// WithCategories enables category drawing with the given categories per language.
func WithCategories(lister CategoryLister, cats map[string][]string) ArchiveSearchOption {
	return func(a *ArchiveSearch) {
		a.categories = lister
		a.cats = cats
	}
}

// WithRandomPages enables the random-page fallback.
func WithRandomPages(lister RandomLister) ArchiveSearchOption {
	return func(a *ArchiveSearch) {
		a.random = lister
	}
}

// WithSearchLimit sets the number of hits requested per search or category.
func WithSearchLimit(n int) ArchiveSearchOption {
	return func(a *ArchiveSearch) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithSearchRand sets the random source used to pick terms and categories.
func WithSearchRand(rng *rand.Rand) ArchiveSearchOption {
	return func(a *ArchiveSearch) {
		a.pick = newPicker(rng)
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(logger *slog.Logger) ArchiveSearchOption {
	return func(a *ArchiveSearch) {
		a.logger = logger
	}
}

// NewArchiveSearch creates an ArchiveSearch over searcher.
func NewArchiveSearch(searcher archive.Searcher, opts ...ArchiveSearchOption) *ArchiveSearch {
	a := &ArchiveSearch{
		searcher: searcher,
		terms:    DefaultSearchTerms,
		limit:    DefaultSearchLimit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pick == nil {
		a.pick = newPicker(nil)
	}
	return a
}

// Name implements Adapter.
func (a *ArchiveSearch) Name() string {
	return string(model.SourceArchive)
}

// Fill implements Adapter. Titles the validator rejects are dropped here so
// that they never cost a network call. A failing search does not prevent
// category results from being returned.
func (a *ArchiveSearch) Fill(ctx context.Context, language string) ([]model.PoolItem, error) {
	var titles []string
	var errs []error

	if terms := a.terms[language]; len(terms) > 0 {
		term := terms[a.pick.intN(len(terms))]
		hits, err := a.searcher.Search(ctx, term, language, a.limit)
		if err != nil {
			errs = append(errs, err)
		}
		for _, h := range hits {
			titles = append(titles, h.Identifier)
		}
		a.logger.Debug("archive search", "term", term, "language", language, "hits", len(hits))
	}

	if a.categories != nil {
		if cats := a.cats[language]; len(cats) > 0 {
			cat := cats[a.pick.intN(len(cats))]
			members, err := a.categories.CategoryMembers(ctx, cat, language, a.limit)
			if err != nil {
				errs = append(errs, err)
			}
			titles = append(titles, members...)
			a.logger.Debug("archive category", "category", cat, "language", language, "members", len(members))
		}
	}

	if len(titles) == 0 && a.random != nil {
		random, err := a.random.Random(ctx, language, a.limit)
		if err != nil {
			errs = append(errs, err)
		}
		titles = append(titles, random...)
		a.logger.Debug("archive random pages", "language", language, "pages", len(random))
	}

	items := make([]model.PoolItem, 0, len(titles))
	for _, t := range title.Filter(titles) {
		items = append(items, model.CandidateItem(model.PageCandidate{
			Identifier: t,
			Source:     model.SourceArchive,
			Language:   language,
		}))
	}
	if len(items) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

// DefaultSearchTerms are literary search terms per language.
var DefaultSearchTerms = map[string][]string{
	"en": {"poem", "sonnet", "ode", "elegy", "ballad", "fable", "tale", "letter", "hymn", "song"},
	"fr": {"poème", "sonnet", "ode", "élégie", "ballade", "fable", "conte", "lettre", "chanson", "hymne"},
	"de": {"Gedicht", "Sonett", "Ode", "Elegie", "Ballade", "Fabel", "Märchen", "Brief", "Lied", "Hymne"},
	"es": {"poema", "soneto", "oda", "elegía", "balada", "fábula", "cuento", "carta", "canción", "himno"},
	"it": {"poesia", "sonetto", "ode", "elegia", "ballata", "favola", "novella", "lettera", "canzone", "inno"},
	"pt": {"poema", "soneto", "ode", "elegia", "balada", "fábula", "conto", "carta", "canção", "hino"},
}
