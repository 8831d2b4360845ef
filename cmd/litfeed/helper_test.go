package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// lacStanzas is verse long enough to pass the quality scorer.
var lacStanzas = []string{
	"Ainsi, toujours poussés vers de nouveaux rivages,",
	"Dans la nuit éternelle emportés sans retour,",
	"Ne pourrons-nous jamais sur l'océan des âges",
	"Jeter l'ancre un seul jour ?",
	"Ô lac ! l'année à peine a fini sa carrière,",
	"Et près des flots chéris qu'elle devait revoir,",
	"Regarde ! je viens seul m'asseoir sur cette pierre",
	"Où tu la vis s'asseoir !",
	"Tu mugissais ainsi sous ces roches profondes,",
	"Ainsi tu te brisais sur leurs flancs déchirés,",
	"Ainsi le vent jetait l'écume de tes ondes",
	"Sur ses pieds adorés.",
}

// newFakeArchive serves a MediaWiki-style API with one search hit, one
// summary hub and one poem.
func newFakeArchive(t *testing.T) *httptest.Server {
	t.Helper()

	poemHTML := `<div class="mw-parser-output"><div class="poem"><p>` +
		strings.Join(lacStanzas, "<br>") + `</p></div></div>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case q.Get("list") == "search":
			fmt.Fprint(w, `{"query":{"search":[{"title":"Le Lac"},{"title":"Liste des poèmes"}]}}`)
		case q.Get("list") == "categorymembers":
			fmt.Fprint(w, `{"query":{"categorymembers":[{"ns":0,"title":"Le Lac"}]}}`)
		case q.Get("action") == "parse" && q.Get("page") == "Le Lac":
			writeParse(t, w, "Le Lac", poemHTML, nil)
		case q.Get("action") == "parse" && q.Get("page") == "Méditations poétiques":
			links := make([]map[string]any, 0, 6)
			for _, s := range []string{"I", "II", "III", "IV", "V", "VI"} {
				links = append(links, map[string]any{"ns": 0, "title": "Méditations poétiques/" + s})
			}
			writeParse(t, w, "Méditations poétiques", "<p>Sommaire</p>", links)
		case q.Get("action") == "parse" && strings.HasPrefix(q.Get("page"), "Méditations poétiques/"):
			writeParse(t, w, q.Get("page"), poemHTML, nil)
		default:
			fmt.Fprint(w, `{"error":{"code":"missingtitle","info":"The page you specified doesn't exist."}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeParse(t *testing.T, w http.ResponseWriter, title, html string, links []map[string]any) {
	t.Helper()

	if links == nil {
		links = []map[string]any{}
	}
	payload := map[string]any{
		"parse": map[string]any{
			"title":      title,
			"text":       html,
			"links":      links,
			"categories": []map[string]any{{"category": "Poèmes_de_Lamartine", "hidden": false}},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("failed to encode parse response: %v", err)
	}
}

// writeArchiveConfig writes a config file pointing the archive source at srv.
func writeArchiveConfig(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	content := fmt.Sprintf(`defaults:
  sources: [archive]
languages:
  fr:
    archiveURL: %s/w/api.php
    searchTerms: [poème]
`, srv.URL)
	path := filepath.Join(t.TempDir(), ".litfeed")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
