package model

// PoolItem is one entry of the candidate pool: either a raw archive candidate
// that still has to go through the resolver, or a preloaded document whose
// content is already known to be clean.
type PoolItem struct {
	// Candidate is set for raw archive candidates.
	Candidate PageCandidate

	// Document is set for preloaded items.
	Document *Document
}

// CandidateItem wraps a raw candidate.
func CandidateItem(c PageCandidate) PoolItem {
	return PoolItem{Candidate: c}
}

// PreloadedItem wraps a preloaded document.
func PreloadedItem(d *Document) PoolItem {
	return PoolItem{Document: d}
}

// IsPreloaded reports whether the item bypasses the resolver.
func (i PoolItem) IsPreloaded() bool {
	return i.Document != nil
}

// Key returns the ShownSet key of the item.
func (i PoolItem) Key() Key {
	if i.Document != nil {
		return i.Document.Key()
	}
	return i.Candidate.Key()
}

// Language returns the language of the item.
func (i PoolItem) Language() string {
	if i.Document != nil {
		return i.Document.Language
	}
	return i.Candidate.Language
}
