package model

// Source identifies the adapter a candidate or document came from.
// It is part of the ShownSet key, so the same title offered by two different
// sources is treated as two different documents.
type Source string

const (
	// SourceArchive is the wiki-style literary archive (raw candidates).
	SourceArchive Source = "archive"

	// SourcePoemDB is the poem database (preloaded documents).
	SourcePoemDB Source = "poemdb"

	// SourceEbook is the e-book database (preloaded documents).
	SourceEbook Source = "ebook"

	// SourceScanned is the scanned-book database (preloaded documents).
	SourceScanned Source = "scanned"
)

// String returns the source name.
func (s Source) String() string {
	return string(s)
}

// IsPreloaded reports whether documents from this source arrive already
// resolved and bypass the page resolver.
func (s Source) IsPreloaded() bool {
	switch s {
	case SourcePoemDB, SourceEbook, SourceScanned:
		return true
	default:
		return false
	}
}
