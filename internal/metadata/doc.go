// Package metadata derives author and genre information from a fetched page.
//
// Both extractors are best-effort heuristics. They never perform I/O and never
// fail: ExtractAuthor reports whether any signal matched, and ExtractGenre
// always returns one of the canonical genre tags defined in the model package.
//
// # Author cascade
//
// Signals are tried in order and the first match wins:
//  1. An outbound link in a localized author namespace ("Author:", "Auteur:", ...)
//  2. A category label of the form "Works by X" / "Poèmes de X" / "Gedichte von X"
//  3. An author-namespace reference inside the body text
//  4. A "by NAME" / "de NAME" / "von NAME" line among the first five non-blank lines
//
// # Genre cascade
//
// Precise title keywords (theatre, fable, sonnet, tale, letter) are checked
// before loose ones (poetry, prose) so that a fable in verse stays a fable.
// Titles without a keyword fall back to a line-shape check that recognizes
// verse, and finally to the generic "text" tag.
package metadata
