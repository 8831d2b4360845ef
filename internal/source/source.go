package source

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nao1215/litfeed/internal/language"
	"github.com/nao1215/litfeed/internal/model"
	"github.com/nao1215/litfeed/internal/quality"
	"github.com/nao1215/litfeed/internal/segment"
)

// Adapter produces pool items for one language.
// Fill is never called concurrently on the same adapter by the pool, but
// implementations must tolerate concurrent calls from independent pools.
type Adapter interface {
	// Name identifies the adapter in logs and configuration.
	Name() string

	// Fill returns a batch of items for language. An adapter that does not
	// serve language returns (nil, nil).
	Fill(ctx context.Context, language string) ([]model.PoolItem, error)
}

// Excerpt bounds for preloaded full-length works.
const (
	DefaultExcerptMin = 1200
	DefaultExcerptMax = 6000
)

// picker is a mutex-guarded random source.
type picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newPicker(rng *rand.Rand) *picker {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &picker{rng: rng}
}

// intN returns a random int in [0, n). n must be positive.
func (p *picker) intN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

func (p *picker) shuffle(n int, swap func(i, j int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng.Shuffle(n, swap)
}

// gate decides whether a preloaded document may enter the pool.
type gate struct {
	scorer   *quality.Scorer
	detector *language.Detector
}

func (g gate) admit(doc *model.Document) bool {
	if g.scorer != nil && !g.scorer.Score(doc.Body, 0, doc.Title).Accepted {
		return false
	}
	if g.detector != nil && !g.detector.Matches(doc.Body, doc.Language) {
		return false
	}
	return true
}

var (
	paragraphBreak  = regexp.MustCompile(`\n[ \t]*\n\s*`)
	gutenbergStart  = regexp.MustCompile(`(?m)^\*\*\* ?START OF (?:THE|THIS) PROJECT GUTENBERG.*$`)
	gutenbergEnd    = regexp.MustCompile(`(?m)^\*\*\* ?END OF (?:THE|THIS) PROJECT GUTENBERG.*$`)
	hyphenLineBreak = regexp.MustCompile(`(\p{L})-\n(\p{Ll})`)
)

// stripBoilerplate removes Project Gutenberg header and license footer.
func stripBoilerplate(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if loc := gutenbergStart.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	if loc := gutenbergEnd.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}

// excerpt returns a passage of whole paragraphs from text, between minRunes
// and maxRunes long when the text allows it. Paragraphs longer than maxRunes
// are cut with the segmenter's boundary cascade.
func excerpt(text string, minRunes, maxRunes int, p *picker) string {
	text = hyphenLineBreak.ReplaceAllString(text, "$1$2")
	var paras []string
	for _, para := range paragraphBreak.Split(text, -1) {
		if para = strings.TrimSpace(para); para != "" {
			paras = append(paras, para)
		}
	}
	if len(paras) == 0 {
		return ""
	}

	// Skip the front matter of long works: title pages and tables of
	// contents cluster in the first tenth.
	start := 0
	if len(paras) > 10 {
		skip := len(paras) / 10
		start = skip + p.intN(len(paras)-skip)
	}

	// Extend forward, then backward when the work ends too early.
	end, n := start, 0
	for ; end < len(paras) && n < minRunes; end++ {
		n += utf8.RuneCountInString(paras[end]) + 2
	}
	for start > 0 && n < minRunes {
		start--
		n += utf8.RuneCountInString(paras[start]) + 2
	}

	out := []rune(strings.Join(paras[start:end], "\n\n"))
	if len(out) > maxRunes {
		out = out[:segment.CutPoint(out, maxRunes)]
	}
	return strings.TrimSpace(string(out))
}
