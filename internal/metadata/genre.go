package metadata

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/litfeed/internal/model"
	"golang.org/x/text/cases"
)

// genreKeywords maps one genre tag to its case-folded title keywords.
type genreKeywords struct {
	tag   string
	words []string
}

// preciseGenres are checked before looseGenres. Order within each list matters.
var preciseGenres = []genreKeywords{
	{model.GenreTheatre, []string{
		"act", "acte", "akt", "atto", "acto", "scene", "scène", "szene", "scena", "escena",
		"tragedy", "tragédie", "tragödie", "tragedia", "comedy", "comédie", "komödie", "commedia", "comedia",
		"drame", "drama", "play",
	}},
	{model.GenreFable, []string{"fable", "fables", "fabel", "fabeln", "favola", "favole", "fábula", "fábulas"}},
	{model.GenreSonnet, []string{"sonnet", "sonnets", "sonett", "sonette", "sonetto", "sonetti", "soneto", "sonetos"}},
	{model.GenreTale, []string{"tale", "tales", "conte", "contes", "märchen", "cuento", "cuentos", "racconto", "fiaba", "conto", "contos"}},
	{model.GenreLetter, []string{"letter", "letters", "lettre", "lettres", "brief", "briefe", "lettera", "lettere", "carta", "cartas", "epistle", "épître"}},
}

var looseGenres = []genreKeywords{
	{model.GenrePoetry, []string{
		"poem", "poems", "poème", "poèmes", "poésie", "poésies", "ode", "odes", "ballade", "ballad",
		"élégie", "elegy", "hymne", "hymn", "chanson", "gedicht", "gedichte", "lied", "poesia", "poesie", "poema", "poemas",
	}},
	{model.GenreProse, []string{
		"chapter", "chapitre", "kapitel", "capitolo", "capítulo", "roman", "novel", "novella", "nouvelle", "romanzo", "novela",
	}},
}

// Verse detection window: at least verseMinShort of the first verseWindow
// non-blank lines must be between verseMinLine and verseMaxLine runes long.
const (
	verseWindow   = 20
	verseMinShort = 10
	verseMinLine  = 5
	verseMaxLine  = 60
)

// ExtractGenre returns the canonical genre tag of a text from its title and
// body. It always returns a tag; model.GenreText is the fallback.
func ExtractGenre(title, body string) string {
	words := titleWords(title)
	for _, list := range [][]genreKeywords{preciseGenres, looseGenres} {
		for _, g := range list {
			if containsAny(words, g.words) {
				return g.tag
			}
		}
	}
	if LooksLikeVerse(body) {
		return model.GenrePoetry
	}
	return model.GenreText
}

// LooksLikeVerse reports whether the line shape of body resembles verse.
func LooksLikeVerse(body string) bool {
	var lines, short int
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := utf8.RuneCountInString(line); n >= verseMinLine && n <= verseMaxLine {
			short++
		}
		lines++
		if lines == verseWindow {
			break
		}
	}
	return short >= verseMinShort
}

func titleWords(title string) map[string]struct{} {
	folded := cases.Fold().String(title)
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		set[w] = struct{}{}
	}
	return set
}

func containsAny(set map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
