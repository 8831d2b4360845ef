// Package source contains the adapters that feed the candidate pool.
//
// Every adapter implements Adapter. ArchiveSearch draws raw page candidates
// from a wiki-style archive by search term and by category; they still have
// to go through the resolver. PoemDB, EbookDB and ScannedBooks return
// preloaded documents whose content is already known to be literature, so
// the pool hands them to the scheduler without resolution.
//
// Preloaded adapters still gate their output with the quality scorer: poem
// databases contain two-line epigrams, and e-books are cut down to an excerpt
// that must fit between the scorer's length bounds.
package source
