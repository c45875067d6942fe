// Package swipe implements the sequential accept/reject triage flow: a
// cursor over a candidate list snapshotted at session start. The snapshot
// is never re-sorted or re-filtered mid-session, so a user's progress
// through the stack is deterministic and resumable if the UI is torn down
// and rebuilt around the same session.
//
// Decisions feed the selection store directly; the engine holds no
// selection state of its own.
package swipe

import (
	"errors"
	"fmt"

	"github.com/opnote/mediatriage/internal/media"
	"github.com/opnote/mediatriage/internal/selection"
)

// Direction is an accept or reject decision on the current candidate.
type Direction string

const (
	Accept Direction = "accept"
	Reject Direction = "reject"
)

// ParseDirection converts wire input to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Accept, Reject:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// ErrSessionComplete is returned by Decide once the cursor has consumed
// every candidate. Callers start a new session to triage again.
var ErrSessionComplete = errors.New("swipe session complete")

// ErrNoSession is returned when no swipe session has been started.
var ErrNoSession = errors.New("no active swipe session")

// ErrNoAlternatives is returned by StartReplacement when the anchor's
// phase holds no other catalog items. The session is left in the terminal
// state so callers can distinguish "nothing to offer" from a generic
// empty stack.
var ErrNoAlternatives = errors.New("no alternative items in phase")

// session is one pass over a candidate snapshot. The cursor only moves
// forward; reaching len(candidates) is terminal.
type session struct {
	candidates []media.Item
	cursor     int

	// replacement mode: accepting swaps anchorID for the candidate and
	// terminates the session immediately.
	replacement bool
	anchorID    string
}

func (s *session) complete() bool {
	return s.cursor >= len(s.candidates)
}

// Engine drives swipe sessions for one review session. Starting a new
// swipe session abandons any prior one; sessions never nest. The engine
// is not safe for concurrent use on its own; the owning session
// serializes access, matching the single-actor mutation model.
type Engine struct {
	catalog *media.Catalog
	store   *selection.Store
	cur     *session
}

// NewEngine returns an engine bound to the session's catalog and store.
func NewEngine(catalog *media.Catalog, store *selection.Store) *Engine {
	return &Engine{catalog: catalog, store: store}
}

// Start begins a new swipe session over the given candidates, snapshotted
// now. Candidate order is frozen for the life of the session.
func (e *Engine) Start(candidates []media.Item) {
	snap := make([]media.Item, len(candidates))
	copy(snap, candidates)
	e.cur = &session{candidates: snap}
}

// StartRemaining begins a session over the catalog items not currently
// selected, in catalog order. This is the default "triage the rest" flow.
func (e *Engine) StartRemaining() {
	var candidates []media.Item
	for _, it := range e.catalog.All() {
		if !e.store.Has(it.ID) {
			candidates = append(candidates, it)
		}
	}
	e.Start(candidates)
}

// StartReplacement begins a replacement session scoped to one selected
// item: candidates are the catalog items sharing the anchor's phase,
// minus the anchor itself. Accepting a candidate swaps it for the anchor
// atomically and completes the session. If the phase holds no
// alternatives the session starts already complete and ErrNoAlternatives
// is returned so the caller can say so, rather than show an empty stack.
func (e *Engine) StartReplacement(anchorID string) error {
	anchor, err := e.catalog.ByID(anchorID)
	if err != nil {
		return err
	}
	var candidates []media.Item
	for _, it := range e.catalog.ByPhase(anchor.Phase) {
		if it.ID != anchorID {
			candidates = append(candidates, it)
		}
	}
	e.cur = &session{
		candidates:  candidates,
		replacement: true,
		anchorID:    anchorID,
	}
	if len(candidates) == 0 {
		return ErrNoAlternatives
	}
	return nil
}

// Current returns the candidate under the cursor. ok is false when there
// is no active session or the session is complete.
func (e *Engine) Current() (item media.Item, ok bool) {
	if e.cur == nil || e.cur.complete() {
		return media.Item{}, false
	}
	return e.cur.candidates[e.cur.cursor], true
}

// Decide records an accept or reject for the current candidate and
// advances the cursor. Accept selects the candidate (or, in replacement
// mode, swaps it for the anchor and terminates the session). Reject
// deselects the candidate in the normal flow; candidates are not
// expected to be selected, but the idempotent deselect keeps a drifted
// selection safe. Replacement-mode reject only advances: same-phase
// candidates may legitimately be selected already and must not be
// touched.
//
// Calling Decide on a complete session returns ErrSessionComplete.
func (e *Engine) Decide(d Direction) error {
	if e.cur == nil {
		return ErrNoSession
	}
	s := e.cur
	if s.complete() {
		return ErrSessionComplete
	}
	cand := s.candidates[s.cursor]

	switch d {
	case Accept:
		if s.replacement {
			if err := e.store.Replace(s.anchorID, cand.ID); err != nil {
				return err
			}
			// One swap per replacement session.
			s.cursor = len(s.candidates)
			return nil
		}
		if err := e.store.Select(cand.ID); err != nil {
			return err
		}
	case Reject:
		if !s.replacement {
			e.store.Deselect(cand.ID)
		}
	default:
		return fmt.Errorf("invalid direction %q", d)
	}

	s.cursor++
	return nil
}

// Complete reports whether the active session has consumed all candidates.
// Returns true when no session was ever started; there is nothing left to
// decide either way.
func (e *Engine) Complete() bool {
	return e.cur == nil || e.cur.complete()
}

// Progress returns how many candidates have been decided and the total.
func (e *Engine) Progress() (done, total int) {
	if e.cur == nil {
		return 0, 0
	}
	return e.cur.cursor, len(e.cur.candidates)
}
