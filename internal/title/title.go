// Package title implements the cheap first-pass filter that rejects archive
// page identifiers which are structurally not literary content.
//
// Every check is pure string work on the identifier, so a candidate rejected
// here never costs a network call. Matching is case-insensitive and uses
// Unicode case folding, because archive titles mix spellings such as
// "Œuvres complètes" and "ŒUVRES COMPLÈTES".
package title

import (
	"strings"

	"golang.org/x/text/cases"
)

// reservedNamespaces lists administrative namespace prefixes in the archive's
// localized spellings (English, French, German, Spanish, Italian, Portuguese).
// Keys are case-folded.
var reservedNamespaces = map[string]bool{
	// help
	"help": true, "aide": true, "hilfe": true, "ayuda": true, "aiuto": true, "ajuda": true,
	// category
	"category": true, "catégorie": true, "kategorie": true, "categoría": true, "categoria": true,
	// author
	"author": true, "auteur": true, "autor": true, "autorin": true, "autore": true, "autora": true,
	// talk
	"talk": true, "discussion": true, "diskussion": true, "discusión": true, "discussione": true, "discussão": true,
	// index
	"index": true, "índice": true, "indice": true,
	// file
	"file": true, "image": true, "fichier": true, "datei": true, "archivo": true, "ficheiro": true, "arquivo": true,
	// other administrative namespaces
	"page": true, "seite": true, "página": true, "pagina": true,
	"portal": true, "portail": true, "portale": true,
	"template": true, "modèle": true, "vorlage": true, "plantilla": true, "predefinição": true,
	"special": true, "spécial": true, "spezial": true, "especial": true, "speciale": true,
	"user": true, "utilisateur": true, "benutzer": true, "usuario": true, "utente": true, "utilizador": true,
	"wikisource": true, "mediawiki": true, "module": true, "translation": true, "transwiki": true,
}

// talkWords appear in compound talk namespaces such as "Discussion Auteur" or
// "Author talk".
var talkWords = []string{"talk", "discussion", "diskussion", "discusión", "discussione", "discussão"}

// listPrefixes mark list pages: "List of ...", "Liste des ...".
var listPrefixes = []string{
	"list of ", "lists of ", "liste des ", "liste de ", "liste der ", "lista de ", "elenco di ",
}

// listPhrases mark index-like pages wherever they appear in the title.
var listPhrases = []string{
	"table of contents", "table des matières", "inhaltsverzeichnis", "tabla de contenidos", "indice generale",
	"bibliography", "bibliographie", "bibliografía", "bibliografia",
	"index of ", "index des ", "liste chronologique",
}

// biographyPhrases mark biography-only pages.
var biographyPhrases = []string{
	" and his work", " and her work", " and his works", " and her works",
	" et son œuvre", " et son oeuvre", " et ses œuvres", " et ses oeuvres",
	"biographical study", "biographical sketch", "étude biographique", "notice biographique",
	"und sein werk", "y su obra", "e la sua opera",
}

// completeWorksPhrases mark "complete works" landing pages. These are rejected
// only when the identifier has no sub-path, since "Œuvres complètes/Tome 1/..."
// does lead to content.
var completeWorksPhrases = []string{
	"complete works", "collected works", "œuvres complètes", "oeuvres complètes", "oeuvres completes",
	"sämtliche werke", "gesammelte werke", "obras completas", "opere complete", "obras completas de",
}

// fold returns the Unicode case-folded form of s.
// A Caser is stateful, so a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// normalize converts archive title spelling to the form used for matching:
// underscores become spaces, runs of whitespace collapse, case is folded.
func normalize(title string) string {
	title = strings.ReplaceAll(title, "_", " ")
	return fold(strings.Join(strings.Fields(title), " "))
}

// IsValid reports whether title may name literary content.
// It returns false for empty titles, reserved namespaces, list/index pages,
// biography-only pages and bare "complete works" pages.
func IsValid(title string) bool {
	t := normalize(title)
	if t == "" {
		return false
	}

	if hasReservedNamespace(t) {
		return false
	}

	for _, p := range listPrefixes {
		if strings.HasPrefix(t, p) {
			return false
		}
	}

	if containsAny(t, listPhrases) || containsAny(t, biographyPhrases) {
		return false
	}

	if !strings.Contains(t, "/") && containsAny(t, completeWorksPhrases) {
		return false
	}

	return true
}

// hasReservedNamespace checks the "Namespace:" prefix of a normalized title.
func hasReservedNamespace(t string) bool {
	ns, _, found := strings.Cut(t, ":")
	if !found {
		return false
	}
	ns = strings.TrimSpace(ns)
	if reservedNamespaces[ns] {
		return true
	}
	for _, w := range talkWords {
		if strings.Contains(ns, w) {
			return true
		}
	}
	return false
}

// containsAny reports whether s contains any of the phrases.
func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Filter returns the titles that pass IsValid, preserving order.
func Filter(titles []string) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if IsValid(t) {
			out = append(out, t)
		}
	}
	return out
}
