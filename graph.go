package graphom

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/graphom/search"
	"github.com/syssam/graphom/store"
)

// Graph is the runtime environment binding defined models to one graph
// store and one search index. It owns the node wrapper cache, the
// per-root-tree indexers, and the node-created event hook.
//
// The graph performs no internal threading: every mutation runs
// synchronously on the caller's goroutine, inside whatever transactional
// scope the caller holds open on the store.
type Graph struct {
	store  store.Store
	search search.Index
	log    *slog.Logger

	mu       sync.RWMutex
	wrappers map[store.NodeRef]*Node

	ixmu     sync.RWMutex
	indexers map[*Model]*Indexer
	ixgroup  singleflight.Group

	cbmu    sync.RWMutex
	created []func(*Node)
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.log = l }
}

// New returns a Graph over the given store and search index.
func New(s store.Store, ix search.Index, opts ...Option) *Graph {
	g := &Graph{
		store:    s,
		search:   ix,
		log:      slog.New(slog.DiscardHandler),
		wrappers: make(map[store.NodeRef]*Node),
		indexers: make(map[*Model]*Indexer),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Store returns the underlying graph store.
func (g *Graph) Store() store.Store { return g.store }

// SearchIndex returns the underlying search index.
func (g *Graph) SearchIndex() search.Index { return g.search }

// OnNodeCreated registers a callback fired synchronously whenever Create
// completes stamping a new node, before its initializer runs.
func (g *Graph) OnNodeCreated(fn func(*Node)) {
	g.cbmu.Lock()
	defer g.cbmu.Unlock()
	g.created = append(g.created, fn)
}

// Create allocates a new node for the model: it asks the store for a
// node, stamps the class tag, fires creation callbacks, and runs the
// model's initializer (if declared) with args.
func (g *Graph) Create(m *Model, args ...any) (*Node, error) {
	ref, err := g.store.CreateNode()
	if err != nil {
		return nil, err
	}
	if err := g.store.SetProperty(ref, ClassnameProperty, m.Label()); err != nil {
		return nil, err
	}
	n := g.wrap(ref, m)
	g.log.Debug("node created", "model", m.Name(), "ref", string(ref))

	g.cbmu.RLock()
	cbs := make([]func(*Node), len(g.created))
	copy(cbs, g.created)
	g.cbmu.RUnlock()
	for _, cb := range cbs {
		cb(n)
	}

	if init := m.initializer(); init != nil {
		if err := init(n, args...); err != nil {
			return nil, fmt.Errorf("graphom: initializing %s: %w", m.Name(), err)
		}
	}
	return n, nil
}

// Load wraps an existing node. It is idempotent and referentially stable:
// repeated loads of the same reference return the same *Node. The model
// is resolved from the persisted class tag; nodes without a tag are
// wrapped with no model attached.
func (g *Graph) Load(ref store.NodeRef) (*Node, error) {
	g.mu.RLock()
	n, ok := g.wrappers[ref]
	g.mu.RUnlock()
	if ok {
		return n, nil
	}

	var m *Model
	tag, present, err := g.store.GetProperty(ref, ClassnameProperty)
	if err != nil {
		return nil, err
	}
	if present {
		label, _ := tag.(string)
		if m, err = ModelByLabel(label); err != nil {
			return nil, err
		}
	}
	return g.wrap(ref, m), nil
}

// wrap returns the cached wrapper for ref, creating it when absent.
func (g *Graph) wrap(ref store.NodeRef, m *Model) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.wrappers[ref]; ok {
		return n
	}
	n := &Node{g: g, ref: ref, model: m}
	g.wrappers[ref] = n
	return n
}

// DeleteNode removes a node from the graph. Before the store delete it
// repairs every ordered-list chain the node participates in and removes
// the node's search index entries, so neither lists nor the index are
// left pointing at a dead node.
func (g *Graph) DeleteNode(n *Node) error {
	for _, s := range listSchemas() {
		if err := g.unlinkFromChains(n, s); err != nil {
			return err
		}
	}
	if err := g.removeIndexEntries(n); err != nil {
		return err
	}
	if err := g.store.DeleteNode(n.ref); err != nil {
		return err
	}
	g.mu.Lock()
	delete(g.wrappers, n.ref)
	g.mu.Unlock()
	g.log.Debug("node deleted", "ref", string(n.ref))
	return nil
}

// Indexer returns the indexer of the class tree m belongs to, creating
// it on first access. At most one indexer per root exists: concurrent
// first callers are collapsed through a singleflight group and every
// caller receives the same instance.
func (g *Graph) Indexer(m *Model) *Indexer {
	root := m.Root()
	g.ixmu.RLock()
	ix := g.indexers[root]
	g.ixmu.RUnlock()
	if ix != nil {
		return ix
	}
	v, _, _ := g.ixgroup.Do(root.Name(), func() (any, error) {
		g.ixmu.RLock()
		ix := g.indexers[root]
		g.ixmu.RUnlock()
		if ix != nil {
			return ix, nil
		}
		ix = newIndexer(g, root)
		g.ixmu.Lock()
		g.indexers[root] = ix
		g.ixmu.Unlock()
		return ix, nil
	})
	return v.(*Indexer)
}

// activeIndexers returns the indexers that must observe a change event:
// every tree that declares index rules, plus any indexer already
// materialized with runtime-added rules.
func (g *Graph) activeIndexers() []*Indexer {
	seen := make(map[*Indexer]struct{})
	var out []*Indexer
	for _, root := range rootsWithRules() {
		ix := g.Indexer(root)
		if _, ok := seen[ix]; !ok {
			seen[ix] = struct{}{}
			out = append(out, ix)
		}
	}
	g.ixmu.RLock()
	for _, ix := range g.indexers {
		if _, ok := seen[ix]; !ok {
			seen[ix] = struct{}{}
			out = append(out, ix)
		}
	}
	g.ixmu.RUnlock()
	return out
}

// notifyPropertyChanged forwards a property write to every indexer whose
// rules may match. Updates are synchronous and applied in program order.
func (g *Graph) notifyPropertyChanged(n *Node, name string, value any) error {
	for _, ix := range g.activeIndexers() {
		if err := ix.OnPropertyChanged(n, name, value); err != nil {
			return err
		}
	}
	return nil
}

// notifyPropertyRemoved forwards a property removal to every indexer.
func (g *Graph) notifyPropertyRemoved(n *Node, name string) error {
	for _, ix := range g.activeIndexers() {
		if err := ix.onPropertyRemoved(n, name); err != nil {
			return err
		}
	}
	return nil
}

// notifyEdgeChanged forwards an edge creation or deletion to every
// indexer whose relationship rules may match.
func (g *Graph) notifyEdgeChanged(edgeType string, from, to store.NodeRef, created bool) error {
	for _, ix := range g.activeIndexers() {
		if err := ix.onEdgeChanged(edgeType, from, to, created); err != nil {
			return err
		}
	}
	return nil
}

// createEdge creates an edge and fires metrics and index maintenance
// before returning.
func (g *Graph) createEdge(from, to store.NodeRef, edgeType string) (store.EdgeRef, error) {
	ref, err := g.store.CreateEdge(from, to, edgeType)
	if err != nil {
		return "", err
	}
	edgesCreated.WithLabelValues(edgeType).Inc()
	if err := g.notifyEdgeChanged(edgeType, from, to, true); err != nil {
		return "", err
	}
	return ref, nil
}

// deleteEdge deletes an edge and fires metrics and index maintenance
// before returning. Endpoints are captured before the delete.
func (g *Graph) deleteEdge(ref store.EdgeRef, edgeType string) error {
	from, err := g.store.Endpoint(ref, store.StartNode)
	if err != nil {
		return err
	}
	to, err := g.store.Endpoint(ref, store.EndNode)
	if err != nil {
		return err
	}
	if err := g.store.DeleteEdge(ref); err != nil {
		return err
	}
	edgesDeleted.WithLabelValues(edgeType).Inc()
	return g.notifyEdgeChanged(edgeType, from, to, false)
}

// removeIndexEntries drops every index entry referring to n: its own
// property-rule entries, relationship-rule entries where n is the
// updater, and relationship-rule entries on updaters reachable from n
// when n is the trigger.
func (g *Graph) removeIndexEntries(n *Node) error {
	if n.model == nil {
		return nil
	}
	for _, ix := range g.activeIndexers() {
		if err := ix.onNodeRemoved(n); err != nil {
			return err
		}
	}
	return nil
}
