package model

import "sync"

// Key identifies a document within a feed session: (source, title).
type Key struct {
	Source Source
	Title  string
}

// String returns "source/title".
func (k Key) String() string {
	return string(k.Source) + "/" + k.Title
}

// ShownSet is the session-scoped set of documents already presented. It
// holds document keys and the fingerprints of their texts, and only grows.
// ShownSet is safe for concurrent use.
type ShownSet struct {
	mu    sync.Mutex
	keys  map[Key]struct{}
	texts map[string]struct{}
}

// NewShownSet creates an empty ShownSet.
func NewShownSet() *ShownSet {
	return &ShownSet{
		keys:  make(map[Key]struct{}),
		texts: make(map[string]struct{}),
	}
}

// Add marks the key as shown. It returns false if the key was already present.
func (s *ShownSet) Add(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Has reports whether the key has been shown.
func (s *ShownSet) Has(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[k]
	return ok
}

// AddDocument marks doc as shown under both its key and its text
// fingerprint. It returns false, and records nothing, when either was
// already present: the same text offered by another source or under another
// title counts as shown.
func (s *ShownSet) AddDocument(doc *Document) bool {
	fp := doc.Fingerprint()
	k := doc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[k]; ok {
		return false
	}
	if _, ok := s.texts[fp]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	s.texts[fp] = struct{}{}
	return true
}

// HasText reports whether a document with the given fingerprint has been shown.
func (s *ShownSet) HasText(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.texts[fingerprint]
	return ok
}

// Len returns the number of shown keys.
func (s *ShownSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
