package metadata

import (
	"regexp"
	"strings"

	"github.com/nao1215/litfeed/internal/model"
	"golang.org/x/text/cases"
)

// Signal identifies which heuristic produced an author name.
type Signal int

const (
	// SignalNone means no heuristic matched.
	SignalNone Signal = iota
	// SignalAuthorLink is an outbound link into an author namespace.
	SignalAuthorLink
	// SignalCategory is a "works by X" category label.
	SignalCategory
	// SignalBodyLink is an author-namespace reference inside the body.
	SignalBodyLink
	// SignalLeadingLine is a "by NAME" line near the top of the body.
	SignalLeadingLine
)

// String returns the signal name used in logs.
func (s Signal) String() string {
	switch s {
	case SignalAuthorLink:
		return "author_link"
	case SignalCategory:
		return "category"
	case SignalBodyLink:
		return "body_link"
	case SignalLeadingLine:
		return "leading_line"
	default:
		return "none"
	}
}

// authorNamespaces are the localized author namespace prefixes, case-folded.
var authorNamespaces = []string{
	"author:",  // en
	"auteur:",  // fr
	"autor:",   // de, es, pt
	"autore:",  // it
	"autora:",  // es, pt
	"autorin:", // de
}

// categoryNamespaces are stripped from category labels before matching.
var categoryNamespaces = []string{
	"category:", "catégorie:", "kategorie:", "categoría:", "categoria:",
}

// categoryPatterns match "works by X" category labels across localizations.
var categoryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:works|poems|texts|plays|novels|stories|essays|letters)\s+by\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:œuvres|oeuvres|poèmes|poemes|textes|pièces|pieces|romans|contes|fables|lettres)\s+(?:de\s+|d['’]\s*)(.+)$`),
	regexp.MustCompile(`(?i)^(?:werke|gedichte|texte|dramen|romane|briefe)\s+von\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:opere|poesie|testi|romanzi|lettere)\s+di\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:obras|poemas|textos|poesías|poesias|cartas)\s+de\s+(.+)$`),
}

// bodyAuthorPattern matches an author-namespace reference left in the body text.
var bodyAuthorPattern = regexp.MustCompile(`(?i)(?:^|[\s\[|(])(?:author|auteur|autor|autore|autora|autorin):\s*([^\n\]|/#:]+)`)

// leadingLinePattern matches "by NAME" style bylines. The name must start with
// an upper-case letter so that "de la nature" is not taken as a byline.
var leadingLinePattern = regexp.MustCompile(`^(?:(?:[Bb]y|[Dd]e|[Vv]on|[Dd]i|[Pp]or|[Pp]ar)\s+|[Dd]['’]\s*)(\p{Lu}[\p{L}.'’\- ]{1,60})$`)

// leadingLineWindow is the number of non-blank lines searched for a byline.
const leadingLineWindow = 5

// ExtractAuthor returns the author of a page from its outbound link titles,
// category labels and body text. It returns ("", false) when no signal matches.
func ExtractAuthor(links, categories []string, body string) (string, bool) {
	name, signal := Author(links, categories, body)
	return name, signal != SignalNone
}

// Author is ExtractAuthor that also reports which signal matched.
func Author(links, categories []string, body string) (string, Signal) {
	if name := fromAuthorLinks(links); name != "" {
		return name, SignalAuthorLink
	}
	if name := fromCategories(categories); name != "" {
		return name, SignalCategory
	}
	if name := fromBodyLink(body); name != "" {
		return name, SignalBodyLink
	}
	if name := fromLeadingLines(body); name != "" {
		return name, SignalLeadingLine
	}
	return "", SignalNone
}

// ExtractAuthorOrUnknown returns the extracted author or model.UnknownAuthor.
func ExtractAuthorOrUnknown(links, categories []string, body string) string {
	if name, ok := ExtractAuthor(links, categories, body); ok {
		return name
	}
	return model.UnknownAuthor
}

func fromAuthorLinks(links []string) string {
	for _, link := range links {
		if rest, ok := cutNamespace(link, authorNamespaces); ok {
			if name := cleanName(rest); name != "" {
				return name
			}
		}
	}
	return ""
}

func fromCategories(categories []string) string {
	for _, c := range categories {
		label := strings.TrimSpace(strings.ReplaceAll(c, "_", " "))
		if rest, ok := cutNamespace(label, categoryNamespaces); ok {
			label = rest
		}
		for _, re := range categoryPatterns {
			if m := re.FindStringSubmatch(label); m != nil {
				if name := cleanName(m[1]); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func fromBodyLink(body string) string {
	m := bodyAuthorPattern.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return cleanName(m[1])
}

func fromLeadingLines(body string) string {
	seen := 0
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := leadingLinePattern.FindStringSubmatch(line); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
		seen++
		if seen == leadingLineWindow {
			break
		}
	}
	return ""
}

// cutNamespace strips the first matching namespace prefix from title,
// comparing case-insensitively.
func cutNamespace(title string, namespaces []string) (string, bool) {
	title = strings.TrimSpace(title)
	i := strings.IndexByte(title, ':')
	if i < 0 {
		return "", false
	}
	prefix := cases.Fold().String(title[:i+1])
	for _, ns := range namespaces {
		if prefix == ns {
			return title[i+1:], true
		}
	}
	return "", false
}

// cleanName normalizes an extracted name: underscores become spaces, link
// fragments are dropped and surrounding punctuation is trimmed.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if i := strings.IndexAny(name, "#|"); i >= 0 {
		name = name[:i]
	}
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, " .,;:")
}
