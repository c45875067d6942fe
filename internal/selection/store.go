// Package selection holds the single source of truth for which media items
// are selected for the report. Both review surfaces (the grid and the
// swipe stack) mutate selection exclusively through the Store's methods,
// which serialize every mutation behind one mutex and notify observers
// synchronously before the mutating call returns. Downstream consumers
// (badges, counters, statistics) therefore never observe a count that
// disagrees with the actual set.
package selection

import (
	"errors"
	"fmt"
	"sync"

	"github.com/opnote/mediatriage/internal/media"
)

// ErrInvalidSelection is returned when an id outside the catalog (which
// includes filtered-out ids) is selected. This is a usage error, never
// silently ignored: selection must always reference real catalog items.
var ErrInvalidSelection = errors.New("id not in catalog")

// Observer is invoked synchronously after every successful mutation, on
// the mutating goroutine, with a snapshot of the selected ids. Observers
// must not block; they may call back into the Store.
type Observer func(selected []string)

// Store tracks the selected item ids for one session. The zero value is
// not usable; construct with NewStore. All methods are safe for
// concurrent use.
type Store struct {
	mu        sync.Mutex
	catalog   *media.Catalog
	selected  map[string]struct{}
	observers []Observer
}

// NewStore returns an empty selection over the given catalog. A new
// session builds a new catalog and a new store; selection never carries
// over between sessions.
func NewStore(catalog *media.Catalog) *Store {
	return &Store{
		catalog:  catalog,
		selected: make(map[string]struct{}),
	}
}

// Subscribe registers an observer for mutation notifications. There is no
// unsubscribe; observers live as long as the session's store.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Select adds id to the selection. Idempotent: selecting an already
// selected id succeeds. Selecting an id absent from the catalog returns
// ErrInvalidSelection and leaves the selection unchanged.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	if !s.catalog.Contains(id) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidSelection, id)
	}
	s.selected[id] = struct{}{}
	s.notifyLocked()
	return nil
}

// Deselect removes id from the selection. Idempotent: removing a
// non-member is a no-op that still notifies.
func (s *Store) Deselect(id string) {
	s.mu.Lock()
	delete(s.selected, id)
	s.notifyLocked()
}

// Toggle selects id if absent and deselects it if present, computed from
// current state under the store lock so concurrent toggles never lose an
// update. Returns ErrInvalidSelection for ids outside the catalog.
func (s *Store) Toggle(id string) error {
	s.mu.Lock()
	if !s.catalog.Contains(id) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidSelection, id)
	}
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	s.notifyLocked()
	return nil
}

// ReplaceAll sets the selection to exactly ids, deduplicated. If any id
// is absent from the catalog the store is left completely unchanged and
// ErrInvalidSelection is returned; there is no partial replace.
func (s *Store) ReplaceAll(ids []string) error {
	s.mu.Lock()
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !s.catalog.Contains(id) {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrInvalidSelection, id)
		}
		next[id] = struct{}{}
	}
	s.selected = next
	s.notifyLocked()
	return nil
}

// Replace atomically swaps oldID for newID in one mutation: oldID leaves
// the selection, newID enters it, observers see a single notification.
// The swipe engine's replacement mode relies on this so a swap can never
// be observed half-applied. newID must be a catalog member; oldID is
// removed unconditionally (idempotent, like Deselect).
func (s *Store) Replace(oldID, newID string) error {
	s.mu.Lock()
	if !s.catalog.Contains(newID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidSelection, newID)
	}
	delete(s.selected, oldID)
	s.selected[newID] = struct{}{}
	s.notifyLocked()
	return nil
}

// Reset clears the selection. Called when a new session begins.
func (s *Store) Reset() {
	s.mu.Lock()
	s.selected = make(map[string]struct{})
	s.notifyLocked()
}

// Current returns a snapshot of the selected ids. The snapshot does not
// track later mutations; callers re-query after mutating. Order is
// unspecified (selection is a set); use Items for display order.
func (s *Store) Current() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idsLocked()
}

// Has reports whether id is currently selected.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// Count returns the number of selected items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Items resolves the current selection to catalog items sorted by capture
// timestamp, which is the display order everywhere in the product.
func (s *Store) Items() []media.Item {
	ids := s.Current()
	items := make([]media.Item, 0, len(ids))
	for _, id := range ids {
		it, err := s.catalog.ByID(id)
		if err != nil {
			// Unreachable: every selected id was validated against the
			// catalog on entry and the catalog is immutable.
			continue
		}
		items = append(items, it)
	}
	media.SortByTimestamp(items)
	return items
}

// notifyLocked snapshots the selection and observers, releases the lock,
// and invokes observers before returning. Notification happens outside
// the lock so observers may re-enter the store without deadlocking, but
// still strictly before the mutating call returns to its caller.
func (s *Store) notifyLocked() {
	ids := s.idsLocked()
	obs := make([]Observer, len(s.observers))
	copy(obs, s.observers)
	s.mu.Unlock()
	for _, fn := range obs {
		fn(ids)
	}
}

func (s *Store) idsLocked() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	return ids
}
