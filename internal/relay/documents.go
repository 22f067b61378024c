package relay

import (
	"sort"
	"sync"
	"time"
)

// Document is the last known state of one path.
type Document struct {
	Path      string
	Content   string
	Version   int64
	UpdatedAt time.Time
}

// DocumentStore keeps one Document per path for the life of the process.
//
// Writes are last-writer-wins: a write carrying an older version than the one
// stored still replaces it.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	now  func() time.Time
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		docs: make(map[string]Document),
		now:  time.Now,
	}
}

// Get returns the document stored for path.
func (s *DocumentStore) Get(path string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	return doc, ok
}

// Put overwrites path with content and the caller supplied version.
func (s *DocumentStore) Put(path, content string, version int64) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Document{Path: path, Content: content, Version: version, UpdatedAt: s.now()}
	s.docs[path] = doc
	return doc
}

// Stamp overwrites path with content under a server assigned version. The
// version is the wall clock in milliseconds, bumped past the stored version
// when the clock has not advanced beyond it, so successive stamps of one path
// strictly increase.
func (s *DocumentStore) Stamp(path, content string, now time.Time) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := now.UnixMilli()
	if prev, ok := s.docs[path]; ok && version <= prev.Version {
		version = prev.Version + 1
	}

	doc := Document{Path: path, Content: content, Version: version, UpdatedAt: now}
	s.docs[path] = doc
	return doc
}

// List returns every document ordered by path.
func (s *DocumentStore) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Document, 0, len(s.docs))
	for _, doc := range s.docs {
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// Len returns the number of stored paths.
func (s *DocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Reset drops every document.
func (s *DocumentStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]Document)
}
