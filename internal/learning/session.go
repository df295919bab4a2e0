package learning

import (
	"log/slog"
	"sync"
	"time"

	"github.com/storysprout/storysprout/internal/catalog"
	"github.com/storysprout/storysprout/internal/models"
	"github.com/storysprout/storysprout/internal/util"
)

// SessionStore is the registry of active sessions. Sessions live for the
// process lifetime; no eviction policy is defined here, so long-running
// deployments should wrap the store with one.
type SessionStore interface {
	Create(participantID, templateID string) (*models.Session, error)
	Get(sessionID string) (*models.Session, bool)
}

// InMemorySessionStore keeps sessions in a process-local map. Cross-session
// operations proceed in parallel; mutation of a single session is serialized by
// the engine's per-session locking.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	catalog  *catalog.Catalog
}

// NewInMemorySessionStore creates a session store backed by the given catalog.
func NewInMemorySessionStore(cat *catalog.Catalog) *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]*models.Session),
		catalog:  cat,
	}
}

// Create starts a new session for the participant on the given template. The
// session state variant is selected by the template kind at creation time.
func (s *InMemorySessionStore) Create(participantID, templateID string) (*models.Session, error) {
	tmpl, ok := s.catalog.Get(templateID)
	if !ok {
		slog.Warn("SessionStore Create: unknown template", "participantID", participantID, "templateID", templateID)
		return nil, models.ErrTemplateNotFound
	}

	sess := &models.Session{
		ID:            util.GenerateSessionID(),
		ParticipantID: participantID,
		TemplateID:    templateID,
		Kind:          tmpl.Kind,
		StartTime:     time.Now(),
		Interactions:  []models.Interaction{},
	}
	switch tmpl.Kind {
	case models.TemplateKindLinear:
		sess.Linear = &models.LinearState{StageInputs: make(map[string]string)}
	default:
		sess.Leveled = &models.LeveledState{Level: models.MinLevel}
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("SessionStore Create succeeded", "sessionID", sess.ID, "participantID", participantID, "templateID", templateID, "kind", tmpl.Kind)
	return sess, nil
}

// Get retrieves a session by id.
func (s *InMemorySessionStore) Get(sessionID string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// keyedLocks provides one mutex per session id so that two racing turns on the
// same session cannot interleave their state updates, while turns on different
// sessions proceed fully in parallel.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) lock(key string) *sync.Mutex {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
	return m
}
