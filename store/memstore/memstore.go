// Package memstore provides an in-memory Store used in tests and as the
// default backend. It keeps per-node adjacency lists in insertion order,
// so edge traversal order is deterministic.
package memstore

import (
	"sync"

	"github.com/google/uuid"

	"github.com/syssam/graphom/store"
)

type edgeRec struct {
	from     store.NodeRef
	to       store.NodeRef
	edgeType string
}

// Store implements store.Store over process memory.
type Store struct {
	mu    sync.RWMutex
	nodes map[store.NodeRef]map[string]any
	edges map[store.EdgeRef]*edgeRec
	// adjacency, keyed by node then edge type, in insertion order
	out map[store.NodeRef]map[string][]store.EdgeRef
	in  map[store.NodeRef]map[string][]store.EdgeRef
}

// New returns an empty store.
func New() *Store {
	return &Store{
		nodes: make(map[store.NodeRef]map[string]any),
		edges: make(map[store.EdgeRef]*edgeRec),
		out:   make(map[store.NodeRef]map[string][]store.EdgeRef),
		in:    make(map[store.NodeRef]map[string][]store.EdgeRef),
	}
}

func (s *Store) CreateNode() (store.NodeRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := store.NodeRef(uuid.NewString())
	s.nodes[ref] = make(map[string]any)
	return ref, nil
}

// DeleteNode removes the node and every edge touching it.
func (s *Store) DeleteNode(ref store.NodeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[ref]; !ok {
		return store.ErrNotFound
	}
	for _, adj := range []map[store.NodeRef]map[string][]store.EdgeRef{s.out, s.in} {
		for _, refs := range adj[ref] {
			for _, e := range refs {
				s.removeEdgeLocked(e)
			}
		}
	}
	delete(s.out, ref)
	delete(s.in, ref)
	delete(s.nodes, ref)
	return nil
}

func (s *Store) GetProperty(ref store.NodeRef, name string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	props, ok := s.nodes[ref]
	if !ok {
		return nil, false, store.ErrNotFound
	}
	v, ok := props[name]
	return v, ok, nil
}

func (s *Store) SetProperty(ref store.NodeRef, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	props, ok := s.nodes[ref]
	if !ok {
		return store.ErrNotFound
	}
	props[name] = value
	return nil
}

func (s *Store) DeleteProperty(ref store.NodeRef, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	props, ok := s.nodes[ref]
	if !ok {
		return store.ErrNotFound
	}
	delete(props, name)
	return nil
}

func (s *Store) CreateEdge(from, to store.NodeRef, edgeType string) (store.EdgeRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[from]; !ok {
		return "", store.ErrNotFound
	}
	if _, ok := s.nodes[to]; !ok {
		return "", store.ErrNotFound
	}
	ref := store.EdgeRef(uuid.NewString())
	s.edges[ref] = &edgeRec{from: from, to: to, edgeType: edgeType}
	if s.out[from] == nil {
		s.out[from] = make(map[string][]store.EdgeRef)
	}
	if s.in[to] == nil {
		s.in[to] = make(map[string][]store.EdgeRef)
	}
	s.out[from][edgeType] = append(s.out[from][edgeType], ref)
	s.in[to][edgeType] = append(s.in[to][edgeType], ref)
	return ref, nil
}

func (s *Store) DeleteEdge(ref store.EdgeRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[ref]; !ok {
		return store.ErrNotFound
	}
	s.removeEdgeLocked(ref)
	return nil
}

func (s *Store) removeEdgeLocked(ref store.EdgeRef) {
	rec, ok := s.edges[ref]
	if !ok {
		return
	}
	s.out[rec.from][rec.edgeType] = drop(s.out[rec.from][rec.edgeType], ref)
	s.in[rec.to][rec.edgeType] = drop(s.in[rec.to][rec.edgeType], ref)
	delete(s.edges, ref)
}

func drop(refs []store.EdgeRef, ref store.EdgeRef) []store.EdgeRef {
	for i, e := range refs {
		if e == ref {
			return append(refs[:i:i], refs[i+1:]...)
		}
	}
	return refs
}

func (s *Store) Edges(ref store.NodeRef, edgeType string, dir store.Direction) ([]store.EdgeRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.nodes[ref]; !ok {
		return nil, store.ErrNotFound
	}
	adj := s.out
	if dir == store.Incoming {
		adj = s.in
	}
	refs := adj[ref][edgeType]
	out := make([]store.EdgeRef, len(refs))
	copy(out, refs)
	return out, nil
}

func (s *Store) Endpoint(ref store.EdgeRef, which store.End) (store.NodeRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.edges[ref]
	if !ok {
		return "", store.ErrNotFound
	}
	if which == store.StartNode {
		return rec.from, nil
	}
	return rec.to, nil
}
