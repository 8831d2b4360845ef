package model

import "strings"

// PageCandidate is an unresolved reference to an archive page.
// It is produced by search, category and adapter calls and consumed exactly
// once by the resolver. Candidates are passed by value and never mutated.
type PageCandidate struct {
	// Identifier is the archive page title, e.g. "Le Corbeau et le Renard".
	Identifier string `json:"identifier"`

	// Source is the adapter that produced the candidate.
	Source Source `json:"source"`

	// Language is the archive language code ("fr", "en", ...).
	Language string `json:"language"`

	// PrecedingLink is the page the candidate was reached from, if any.
	PrecedingLink string `json:"preceding_link,omitempty"`
}

// Key returns the ShownSet key of the candidate.
func (c PageCandidate) Key() Key {
	return Key{Source: c.Source, Title: c.Identifier}
}

// Namespace constants used by Link.
const (
	// NamespaceMain is the namespace of ordinary content pages.
	NamespaceMain = 0
)

// Link is one outbound link of a fetched archive page.
type Link struct {
	// Title is the target page title.
	Title string `json:"title"`

	// Namespace is the archive namespace number of the target (0 = main).
	Namespace int `json:"ns"`
}

// IsMain reports whether the link points into the main content namespace.
func (l Link) IsMain() bool {
	return l.Namespace == NamespaceMain
}

// IsSubPageOf reports whether the link targets a sub-page "base/..." of base.
func (l Link) IsSubPageOf(base string) bool {
	if base == "" {
		return false
	}
	prefix := base + "/"
	return strings.HasPrefix(l.Title, prefix) && len(l.Title) > len(prefix)
}

// LinkGraph is the outbound link snapshot of one fetched page.
// It is used only transiently by the resolver and never persisted.
type LinkGraph []Link

// SubPages returns the links that point to sub-pages of base.
func (g LinkGraph) SubPages(base string) LinkGraph {
	var out LinkGraph
	for _, l := range g {
		if l.IsSubPageOf(base) {
			out = append(out, l)
		}
	}
	return out
}

// MainNamespace returns the links that point into the main namespace.
func (g LinkGraph) MainNamespace() LinkGraph {
	var out LinkGraph
	for _, l := range g {
		if l.IsMain() {
			out = append(out, l)
		}
	}
	return out
}

// Titles returns the link targets in order.
func (g LinkGraph) Titles() []string {
	titles := make([]string, len(g))
	for i, l := range g {
		titles[i] = l.Title
	}
	return titles
}
