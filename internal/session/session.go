// Package session assembles one surgical case's triage workflow: the
// immutable media catalog, the selection store, the swipe engine and the
// report orchestrator, plus a manager that owns the active sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/opnote/mediatriage/internal/ingest"
	"github.com/opnote/mediatriage/internal/media"
	"github.com/opnote/mediatriage/internal/report"
	"github.com/opnote/mediatriage/internal/selection"
	"github.com/opnote/mediatriage/internal/swipe"
)

// ErrNotFound is returned for an unknown session id.
var ErrNotFound = errors.New("session not found")

// Session holds the live state for one surgical case. The catalog is
// immutable; the selection store serializes its own mutations; the swipe
// engine is driven through Session.mu so grid and swipe mutations from
// concurrent requests behave as a single logical actor.
type Session struct {
	ID        string
	CreatedAt time.Time

	Catalog   *media.Catalog
	Selection *selection.Store
	Reports   *report.Orchestrator

	mu    sync.Mutex
	swipe *swipe.Engine
}

// Swipe runs fn with exclusive access to the swipe engine. All swipe
// operations for a session go through here; the engine itself carries no
// lock.
func (s *Session) Swipe(fn func(*swipe.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.swipe)
}

// Manager owns the active sessions, keyed by id.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ingestor ingest.Ingestor
	svc      report.Service
}

// NewManager wires the ingestion collaborator and the report service used
// for every session created through it.
func NewManager(ing ingest.Ingestor, svc report.Service) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ingestor: ing,
		svc:      svc,
	}
}

// Create ingests media for a fresh session and assembles its workflow.
// Selection always starts empty; nothing carries over from prior
// sessions.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()

	items, err := m.ingestor.Ingest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ingest session %s: %w", id, err)
	}
	catalog, err := media.Load(items)
	if err != nil {
		return nil, fmt.Errorf("load catalog for session %s: %w", id, err)
	}

	store := selection.NewStore(catalog)
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Catalog:   catalog,
		Selection: store,
		Reports:   report.NewOrchestrator(id, m.svc),
		swipe:     swipe.NewEngine(catalog, store),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Info().
		Str("sessionId", id).
		Int("catalogSize", catalog.Len()).
		Msg("Session created")
	return s, nil
}

// Get returns the session with the given id, or ErrNotFound.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete removes a session and abandons its in-flight report work so any
// late service response is discarded rather than applied.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.Reports.Abandon()
	log.Info().Str("sessionId", id).Msg("Session deleted")
	return nil
}
