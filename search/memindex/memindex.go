// Package memindex provides an in-memory search.Index. Entries are
// keyed by (class tag, node, field); a Put for an existing key replaces
// the previous value, so one node contributes at most one value per
// field.
package memindex

import (
	"sync"

	"github.com/syssam/graphom/search"
	"github.com/syssam/graphom/store"
)

type key struct {
	ref   store.NodeRef
	field string
}

// Index implements search.Index over process memory.
type Index struct {
	mu sync.RWMutex
	// classTag -> (ref, field) -> value
	entries map[string]map[key]any
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string]map[key]any)}
}

func (ix *Index) Put(classTag string, ref store.NodeRef, field string, value any) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	m, ok := ix.entries[classTag]
	if !ok {
		m = make(map[key]any)
		ix.entries[classTag] = m
	}
	m[key{ref: ref, field: field}] = value
	return nil
}

func (ix *Index) Remove(classTag string, ref store.NodeRef, field string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.entries[classTag], key{ref: ref, field: field})
	return nil
}

func (ix *Index) Query(classTag string, p search.Predicate) ([]store.NodeRef, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []store.NodeRef
	for k, v := range ix.entries[classTag] {
		if k.field == p.Field && v == p.Value {
			out = append(out, k.ref)
		}
	}
	return out, nil
}
