// Package store provides storage backends for the StorySprout story archive.
//
// It includes an in-memory store for tests and SQLite/PostgreSQL backends for
// persistence. Archive writes are best-effort from the caller's point of view:
// a failed save never affects the turn response already produced.
package store

import (
	"sort"
	"sync"

	"github.com/storysprout/storysprout/internal/models"
)

// Store persists completed narrative records.
type Store interface {
	SaveStory(story models.Story) error
	ListStories(participantID string) ([]models.Story, error)
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option configures a store backend.
type Option func(*Opts)

// WithDSN sets the data source name (file path for SQLite, connection string
// for PostgreSQL).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore is a simple in-memory story archive.
type InMemoryStore struct {
	mu      sync.RWMutex
	stories []models.Story
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveStory appends a story record.
func (s *InMemoryStore) SaveStory(story models.Story) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories = append(s.stories, story)
	return nil
}

// ListStories returns the participant's stories, most recent first.
func (s *InMemoryStore) ListStories(participantID string) ([]models.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Story
	for _, st := range s.stories {
		if st.ParticipantID == participantID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
