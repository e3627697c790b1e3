package lsp

import (
	"cmp"
	"slices"
	"sync"
)

// document is one open text document as last synchronized by the client.
type document struct {
	URI        string
	LanguageID string
	Version    int
	Text       string
}

// documentStore maps document URIs to their latest content. The server
// advertises full-text sync, so every change replaces the whole text.
//
// This is the single owner of open-document state; both the analysis loop
// and the feature providers read from it (resolving the duplicated
// DocumentManager/TextDocument pair of earlier designs into one type).
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]*document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]*document)}
}

// Open inserts or replaces the document.
func (s *documentStore) Open(uri, languageID string, version int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &document{URI: uri, LanguageID: languageID, Version: version, Text: text}
}

// Change replaces the document's content. Unknown URIs are inserted, so a
// missed didOpen degrades gracefully.
func (s *documentStore) Change(uri string, version int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		doc.Version = version
		doc.Text = text
		return
	}
	s.docs[uri] = &document{URI: uri, Version: version, Text: text}
}

// Close removes the document. Reports whether it was open.
func (s *documentStore) Close(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	return ok
}

// Get returns a copy of the document's record.
func (s *documentStore) Get(uri string) (document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return document{}, false
	}
	return *doc, true
}

// All returns copies of every open document, sorted by URI for
// deterministic analysis input order.
func (s *documentStore) All() []document {
	s.mu.RLock()
	out := make([]document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, *doc)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b document) int {
		return cmp.Compare(a.URI, b.URI)
	})
	return out
}

// Len returns the number of open documents.
func (s *documentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
