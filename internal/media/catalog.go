package media

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a queried id is absent from the catalog.
// Filtered-out items are absent by construction, so querying one of their
// ids also yields ErrNotFound.
var ErrNotFound = errors.New("media item not found")

// Catalog is the immutable set of reviewable media for one session.
// Load filters out IsFiltered items up front so no downstream component
// (selection store, swipe engine, statistics) ever re-checks that flag.
//
// A catalog is read-only after Load and safe to share across goroutines.
// A new session replaces the catalog wholesale; there are no partial
// catalog updates.
type Catalog struct {
	items   []Item
	byID    map[string]int
	byPhase map[Phase][]int
}

// Load builds a catalog from the ingestion pipeline's output, dropping
// filtered items and indexing the remainder by id and phase. Insertion
// order is preserved. A duplicate id is a pipeline bug and is reported
// as an error rather than silently last-write-wins.
func Load(items []Item) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]int),
		byPhase: make(map[Phase][]int),
	}
	for _, it := range items {
		if it.IsFiltered {
			continue
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("duplicate media id %q", it.ID)
		}
		idx := len(c.items)
		c.items = append(c.items, it)
		c.byID[it.ID] = idx
		c.byPhase[it.Phase] = append(c.byPhase[it.Phase], idx)
	}
	return c, nil
}

// ByID returns the item with the given id, or ErrNotFound.
func (c *Catalog) ByID(id string) (Item, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.items[idx], nil
}

// Contains reports whether id is present in the catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ByPhase returns the items in the given phase in catalog-insertion order.
// Callers that need chronological order sort the result by timestamp.
func (c *Catalog) ByPhase(p Phase) []Item {
	idxs := c.byPhase[p]
	out := make([]Item, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.items[i])
	}
	return out
}

// All returns every catalog item in insertion order. The returned slice
// is a copy; the catalog itself is never exposed for mutation.
func (c *Catalog) All() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of non-filtered items.
func (c *Catalog) Len() int {
	return len(c.items)
}
