package metadata

import (
	"strings"
	"testing"

	"github.com/nao1215/litfeed/internal/model"
)

func TestExtractAuthor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		links      []string
		categories []string
		body       string
		wantName   string
		wantSignal Signal
	}{
		{
			name:       "author namespace link alone yields the author",
			links:      []string{"Author:Jean de La Fontaine"},
			wantName:   "Jean de La Fontaine",
			wantSignal: SignalAuthorLink,
		},
		{
			name:       "localized namespace with underscores is normalized",
			links:      []string{"Le Corbeau et le Renard", "Auteur:Jean_de_La_Fontaine"},
			wantName:   "Jean de La Fontaine",
			wantSignal: SignalAuthorLink,
		},
		{
			name:       "first matching author link wins over categories",
			links:      []string{"Autor:Johann Wolfgang von Goethe", "Autor:Friedrich Schiller"},
			categories: []string{"Poems by Edgar Allan Poe"},
			wantName:   "Johann Wolfgang von Goethe",
			wantSignal: SignalAuthorLink,
		},
		{
			name:       "english category pattern",
			links:      []string{"The Raven"},
			categories: []string{"Category:Poems by Edgar Allan Poe"},
			wantName:   "Edgar Allan Poe",
			wantSignal: SignalCategory,
		},
		{
			name:       "french category with elided article",
			categories: []string{"Catégorie:Poèmes d’Alfred de Musset"},
			wantName:   "Alfred de Musset",
			wantSignal: SignalCategory,
		},
		{
			name:       "german category pattern",
			categories: []string{"Gedichte von Heinrich Heine"},
			wantName:   "Heinrich Heine",
			wantSignal: SignalCategory,
		},
		{
			name:       "italian category pattern",
			categories: []string{"Opere di Giacomo Leopardi"},
			wantName:   "Giacomo Leopardi",
			wantSignal: SignalCategory,
		},
		{
			name:       "author reference inside the body",
			categories: []string{"Fables"},
			body:       "Texte établi par [Auteur:Jean de La Fontaine|La Fontaine]\nMaître Corbeau, sur un arbre perché,",
			wantName:   "Jean de La Fontaine",
			wantSignal: SignalBodyLink,
		},
		{
			name:       "byline among the first lines",
			body:       "Le Lac\n\npar Alphonse de Lamartine\n\nAinsi, toujours poussés vers de nouveaux rivages,",
			wantName:   "Alphonse de Lamartine",
			wantSignal: SignalLeadingLine,
		},
		{
			name:       "english byline",
			body:       "The Raven\nby Edgar Allan Poe.\nOnce upon a midnight dreary,",
			wantName:   "Edgar Allan Poe",
			wantSignal: SignalLeadingLine,
		},
		{
			name:     "lower-case continuation is not a byline",
			body:     "de la nature des choses\nLivre premier",
			wantName: "",
		},
		{
			name:     "byline after the fifth line is ignored",
			body:     "un\ndeux\ntrois\nquatre\ncinq\npar Victor Hugo",
			wantName: "",
		},
		{
			name:     "no signal",
			links:    []string{"Fables/Livre I"},
			body:     "Maître Corbeau, sur un arbre perché,\nTenait en son bec un fromage.",
			wantName: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			name, signal := Author(tt.links, tt.categories, tt.body)
			if name != tt.wantName {
				t.Errorf("Author() name = %q, want %q", name, tt.wantName)
			}
			if signal != tt.wantSignal {
				t.Errorf("Author() signal = %s, want %s", signal, tt.wantSignal)
			}

			got, ok := ExtractAuthor(tt.links, tt.categories, tt.body)
			if ok != (tt.wantName != "") || got != tt.wantName {
				t.Errorf("ExtractAuthor() = (%q, %v)", got, ok)
			}
		})
	}
}

func TestExtractAuthorOrUnknown(t *testing.T) {
	t.Parallel()

	if got := ExtractAuthorOrUnknown(nil, nil, "Sans auteur."); got != model.UnknownAuthor {
		t.Errorf("expected %q, got %q", model.UnknownAuthor, got)
	}
	if got := ExtractAuthorOrUnknown([]string{"Author:Homer"}, nil, ""); got != "Homer" {
		t.Errorf("expected Homer, got %q", got)
	}
}

func TestExtractGenre(t *testing.T) {
	t.Parallel()

	verse := strings.Repeat("Sous le pont Mirabeau coule la Seine\n", 12)
	prose := strings.Repeat("Longtemps, je me suis couché de bonne heure. Parfois, à peine ma bougie éteinte, mes yeux se fermaient si vite que je n'avais pas le temps de me dire : Je m'endors.\n", 12)

	tests := []struct {
		name  string
		title string
		body  string
		want  string
	}{
		{name: "scene marker is theatre", title: "Phèdre/Acte I/Scène 3", body: prose, want: model.GenreTheatre},
		{name: "tragedy is theatre", title: "Hamlet, a Tragedy", body: prose, want: model.GenreTheatre},
		{name: "fable in verse stays a fable", title: "Fables de La Fontaine/Le Loup et l'Agneau", body: verse, want: model.GenreFable},
		{name: "sonnet", title: "Sonnet 18", body: verse, want: model.GenreSonnet},
		{name: "tale", title: "Contes de ma mère l'Oye", body: prose, want: model.GenreTale},
		{name: "letter", title: "Lettres persanes/Lettre 24", body: prose, want: model.GenreLetter},
		{name: "ode is poetry", title: "Ode on a Grecian Urn", body: prose, want: model.GenrePoetry},
		{name: "chapter is prose", title: "Germinal/Chapitre 1", body: verse, want: model.GenreProse},
		{name: "precise keyword wins over loose keyword", title: "Poèmes/Sonnet pour Hélène", body: prose, want: model.GenreSonnet},
		{name: "short lines without keyword are poetry", title: "Le Pont Mirabeau", body: verse, want: model.GenrePoetry},
		{name: "long lines without keyword are text", title: "Du côté de chez Swann", body: prose, want: model.GenreText},
		{name: "empty input is text", title: "", body: "", want: model.GenreText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractGenre(tt.title, tt.body); got != tt.want {
				t.Errorf("ExtractGenre(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestLooksLikeVerse(t *testing.T) {
	t.Parallel()

	t.Run("nine short lines are not enough", func(t *testing.T) {
		t.Parallel()
		body := strings.Repeat("Il pleure dans mon cœur\n", 9)
		if LooksLikeVerse(body) {
			t.Error("expected false for nine lines")
		}
	})

	t.Run("blank lines between stanzas are ignored", func(t *testing.T) {
		t.Parallel()
		stanza := "Il pleure dans mon cœur\nComme il pleut sur la ville ;\n\n"
		if !LooksLikeVerse(strings.Repeat(stanza, 5)) {
			t.Error("expected true for ten short lines across stanzas")
		}
	})

	t.Run("lines shorter than five runes do not count", func(t *testing.T) {
		t.Parallel()
		if LooksLikeVerse(strings.Repeat("I.\n", 20)) {
			t.Error("expected false for numbering lines")
		}
	})
}
