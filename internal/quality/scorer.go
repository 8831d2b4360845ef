package quality

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/litfeed/internal/model"
	"golang.org/x/text/cases"
)

// Default thresholds. The hub and link-density values were chosen
// empirically; treat them as tunable rather than exact.
const (
	// DefaultMinLength is the minimum body length in runes.
	DefaultMinLength = 300

	// DefaultMaxLength is the maximum body length in runes. Longer bodies are
	// full-length works, better surfaced as a paginated resource.
	DefaultMaxLength = 80000

	// DefaultCharsPerLink is the estimated number of body characters taken by
	// one outbound link.
	DefaultCharsPerLink = 30

	// DefaultMaxLinkDensity is the highest accepted link-character density.
	DefaultMaxLinkDensity = 0.25

	// DefaultListyMaxAverageLine is the average line length below which a
	// text is suspected to be a list.
	DefaultListyMaxAverageLine = 60

	// DefaultListyMinPunctuated is the minimum share of non-blank lines that
	// must end in punctuation for short-lined text to count as verse.
	DefaultListyMinPunctuated = 0.30
)

// DefaultTitleBlacklist contains meta-words that mark summary pages.
var DefaultTitleBlacklist = []string{
	"sommaire", "contents", "index", "table", "tables", "chapters", "chapitres",
	"inhalt", "inhaltsverzeichnis", "índice", "indice", "sumario", "sommario", "sumário", "toc",
}

// Thresholds holds the tunable constants of the default rules.
type Thresholds struct {
	MinLength           int
	MaxLength           int
	CharsPerLink        int
	MaxLinkDensity      float64
	ListyMaxAverageLine float64
	ListyMinPunctuated  float64
	TitleBlacklist      []string
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinLength:           DefaultMinLength,
		MaxLength:           DefaultMaxLength,
		CharsPerLink:        DefaultCharsPerLink,
		MaxLinkDensity:      DefaultMaxLinkDensity,
		ListyMaxAverageLine: DefaultListyMaxAverageLine,
		ListyMinPunctuated:  DefaultListyMinPunctuated,
		TitleBlacklist:      DefaultTitleBlacklist,
	}
}

// Analysis holds the measurements the rules are evaluated against.
type Analysis struct {
	// Title is the page title as given.
	Title string `json:"title"`

	// Length is the trimmed body length in runes.
	Length int `json:"length"`

	// LinkCount is the number of outbound links of the page.
	LinkCount int `json:"link_count"`

	// LinkDensity is LinkCount*CharsPerLink/Length (0 for an empty body).
	LinkDensity float64 `json:"link_density"`

	// Lines is the number of non-blank lines.
	Lines int `json:"lines"`

	// AverageLine is the average rune length of non-blank lines.
	AverageLine float64 `json:"average_line"`

	// PunctuatedRatio is the share of non-blank lines ending in punctuation.
	PunctuatedRatio float64 `json:"punctuated_ratio"`

	// TitleWords are the case-folded words of the title.
	TitleWords []string `json:"-"`
}

// Rule is one named entry of the rule table.
type Rule struct {
	// Name identifies the rule in logs and tests.
	Name string

	// Reason is the rejection reason emitted when Match returns true.
	Reason model.RejectReason

	// Match reports whether the analyzed text violates the rule.
	Match func(a Analysis, th Thresholds) bool
}

// DefaultRules returns the rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "min_length", Reason: model.ReasonTooShort, Match: tooShort},
		{Name: "max_length", Reason: model.ReasonTooLong, Match: tooLong},
		{Name: "link_density", Reason: model.ReasonLinkDensity, Match: tooManyLinks},
		{Name: "listy", Reason: model.ReasonListy, Match: listy},
		{Name: "title_blacklist", Reason: model.ReasonTitleBlacklist, Match: blacklistedTitle},
	}
}

func tooShort(a Analysis, th Thresholds) bool {
	return a.Length < th.MinLength
}

func tooLong(a Analysis, th Thresholds) bool {
	return a.Length > th.MaxLength
}

func tooManyLinks(a Analysis, th Thresholds) bool {
	return a.LinkDensity > th.MaxLinkDensity
}

// listy separates bare lists from verse: both have short lines, but verse ends
// its lines in punctuation often enough.
func listy(a Analysis, th Thresholds) bool {
	if a.Lines == 0 {
		return false
	}
	return a.AverageLine < th.ListyMaxAverageLine && a.PunctuatedRatio < th.ListyMinPunctuated
}

func blacklistedTitle(a Analysis, th Thresholds) bool {
	for _, w := range a.TitleWords {
		for _, b := range th.TitleBlacklist {
			if w == b {
				return true
			}
		}
	}
	return false
}

// Scorer evaluates texts against an ordered rule table.
// A Scorer is immutable after construction and safe for concurrent use.
type Scorer struct {
	thresholds Thresholds
	rules      []Rule
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithThresholds replaces the default thresholds.
func WithThresholds(th Thresholds) Option {
	return func(s *Scorer) {
		s.thresholds = th
	}
}

// WithRules replaces the rule table.
func WithRules(rules ...Rule) Option {
	return func(s *Scorer) {
		s.rules = rules
	}
}

// WithExtraRules appends rules after the default table.
func WithExtraRules(rules ...Rule) Option {
	return func(s *Scorer) {
		s.rules = append(s.rules, rules...)
	}
}

// NewScorer creates a Scorer with the default thresholds and rule table.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		thresholds: DefaultThresholds(),
		rules:      DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.thresholds.CharsPerLink <= 0 {
		s.thresholds.CharsPerLink = DefaultCharsPerLink
	}
	blacklist := make([]string, len(s.thresholds.TitleBlacklist))
	for i, w := range s.thresholds.TitleBlacklist {
		blacklist[i] = cases.Fold().String(w)
	}
	s.thresholds.TitleBlacklist = blacklist
	return s
}

// Thresholds returns the thresholds in effect.
func (s *Scorer) Thresholds() Thresholds {
	return s.thresholds
}

// Score returns the verdict for body, given the page's outbound link count
// and title. It is deterministic and performs no I/O.
func (s *Scorer) Score(body string, linkCount int, title string) model.Verdict {
	verdict, _ := s.Explain(body, linkCount, title)
	return verdict
}

// Explain returns the verdict together with the measurements and the name of
// the rule that decided it ("" when accepted).
func (s *Scorer) Explain(body string, linkCount int, title string) (model.Verdict, Report) {
	a := s.Analyze(body, linkCount, title)
	for _, r := range s.rules {
		if r.Match(a, s.thresholds) {
			return model.Reject(r.Reason), Report{Analysis: a, Rule: r.Name}
		}
	}
	return model.Accept(), Report{Analysis: a}
}

// Report is the diagnostic output of Explain.
type Report struct {
	Analysis
	Rule string `json:"rule,omitempty"`
}

// Analyze computes the measurements of body without evaluating any rule.
func (s *Scorer) Analyze(body string, linkCount int, title string) Analysis {
	trimmed := strings.TrimSpace(body)
	a := Analysis{
		Title:      title,
		Length:     utf8.RuneCountInString(trimmed),
		LinkCount:  linkCount,
		TitleWords: words(title),
	}
	if a.Length > 0 {
		a.LinkDensity = float64(linkCount*s.thresholds.CharsPerLink) / float64(a.Length)
	}

	var total, punctuated int
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		a.Lines++
		total += utf8.RuneCountInString(line)
		if endsInPunctuation(line) {
			punctuated++
		}
	}
	if a.Lines > 0 {
		a.AverageLine = float64(total) / float64(a.Lines)
		a.PunctuatedRatio = float64(punctuated) / float64(a.Lines)
	}
	return a
}

// closers are trailing characters skipped before looking for punctuation,
// so that `wept.”` and `(sic!)` count as punctuated.
const closers = `"'”’»)]`

// endsInPunctuation reports whether a trimmed line ends in sentence or verse
// punctuation.
func endsInPunctuation(line string) bool {
	line = strings.TrimRight(line, closers+" ")
	r, _ := utf8.DecodeLastRuneInString(line)
	switch r {
	case '.', ',', ';', ':', '!', '?', '…', '—':
		return true
	}
	return false
}

// words splits a title into case-folded words.
func words(title string) []string {
	folded := cases.Fold().String(title)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var defaultScorer = NewScorer()

// Score evaluates body with the default thresholds and rules.
func Score(body string, linkCount int, title string) model.Verdict {
	return defaultScorer.Score(body, linkCount, title)
}
