// Package cache provides the append-only per-session lookup caches.
package cache

import (
	"sync"
)

// Session caches identifier mappings discovered during one lookup session:
// ISBN to YES24 id, and YES24 id to full-size cover URL. Entries are never
// evicted or persisted; the cache lives only as long as its owner.
type Session struct {
	mu        sync.RWMutex
	isbnToID  map[string]string
	idToCover map[string]string
}

// NewSession constructs an empty session cache.
func NewSession() *Session {
	return &Session{
		isbnToID:  make(map[string]string),
		idToCover: make(map[string]string),
	}
}

// PutISBN records an ISBN to YES24-id mapping.
func (s *Session) PutISBN(isbn, id string) {
	if isbn == "" || id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isbnToID[isbn] = id
}

// IDForISBN returns the YES24 id cached for an ISBN, or "".
func (s *Session) IDForISBN(isbn string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isbnToID[isbn]
}

// PutCover records a YES24-id to cover-URL mapping.
func (s *Session) PutCover(id, coverURL string) {
	if id == "" || coverURL == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idToCover[id] = coverURL
}

// CoverForID returns the cover URL cached for a YES24 id, or "".
func (s *Session) CoverForID(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToCover[id]
}
