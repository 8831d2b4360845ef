package archive

import (
	"strings"

	"github.com/nao1215/litfeed/internal/htmltext"
	"github.com/nao1215/litfeed/internal/model"
	"golang.org/x/text/cases"
)

// Kind classifies a fetched page by its markup markers.
type Kind int

const (
	// KindContent is a page without redirect or editions markers.
	KindContent Kind = iota
	// KindRedirect is a soft redirect to another page.
	KindRedirect
	// KindEditions lists several editions or versions of a work, or
	// disambiguates between works sharing a title.
	KindEditions
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindRedirect:
		return "redirect"
	case KindEditions:
		return "editions"
	default:
		return "content"
	}
}

// Page is one fetched archive page.
type Page struct {
	Title      string
	Language   string
	HTML       string
	Links      model.LinkGraph
	Categories []string
	URL        string
}

var redirectSelectors = []string{".redirectMsg", ".redirectText", "#softredirect", ".softredirect"}

var editionsSelectors = []string{
	"#disambig", ".disambig", ".ws-disambig", "#homonymie", ".homonymie",
	".begriffsklaerung", "#editions", ".editions", ".versionpage", "#versionpage",
	".multipleEditions", ".ws-versions",
}

// editionsPhrases are case-folded textual markers of an editions page.
var editionsPhrases = []string{
	"this work has multiple editions",
	"multiple versions of this work",
	"may refer to",
	"cette œuvre a plusieurs éditions",
	"plusieurs éditions de ce texte",
	"peut désigner",
	"von diesem werk gibt es mehrere ausgaben",
	"diese seite ist eine begriffsklärung",
	"esta obra tiene varias ediciones",
	"quest'opera ha più edizioni",
	"esta obra tem várias edições",
}

// Kind returns the page classification. Redirect markers win over editions
// markers.
func (p *Page) Kind() Kind {
	doc, err := htmltext.ParseString(p.HTML)
	if err != nil {
		return KindContent
	}
	if doc.Has(redirectSelectors...) {
		return KindRedirect
	}
	if doc.Has(editionsSelectors...) {
		return KindEditions
	}
	text := cases.Fold().String(doc.Selection().Text())
	for _, phrase := range editionsPhrases {
		if strings.Contains(text, phrase) {
			return KindEditions
		}
	}
	return KindContent
}

// RedirectTarget returns the title a soft redirect points to, or "".
func (p *Page) RedirectTarget() string {
	doc, err := htmltext.ParseString(p.HTML)
	if err != nil {
		return ""
	}
	for _, sel := range redirectSelectors {
		a := doc.Selection().Find(sel + " a").First()
		if a.Length() == 0 {
			continue
		}
		if title, ok := a.Attr("title"); ok && title != "" {
			return title
		}
		if text := strings.TrimSpace(a.Text()); text != "" {
			return text
		}
	}
	return ""
}

// Text returns the cleaned plain text of the page body.
func (p *Page) Text() (string, error) {
	return htmltext.Text(p.HTML)
}
