package graphom

import (
	"fmt"
	"iter"
	"sync"

	"github.com/syssam/graphom/schema/index"
	"github.com/syssam/graphom/search"
	"github.com/syssam/graphom/store"
)

// indexRule is one resolved index rule. Relationship rules are resolved
// at declaration time: trigger is the class whose property change starts
// the update, updater the root whose index entries are refreshed, and
// walk the direction leading from a trigger node to its updaters.
type indexRule struct {
	field     string // index field written to (namespaced for relationship rules)
	property  string // triggering property name
	relName   string // empty for plain property rules
	namespace string
	updater   *Model // root model whose index is updated
	trigger   *Model // far-side class; nil for property rules
	edgeType  string
	walk      store.Direction
}

// resolveIndexRule resolves a declared rule against the registries known
// at declaration time. Property rules resolve trivially. Relationship
// rules locate the relationship on the declaring tree first and fall
// back to a far-side declaration targeting it; failure to pin down both
// sides is reported now, never deferred to the first index update.
func resolveIndexRule(owner *Model, d *index.Descriptor) (*indexRule, error) {
	if d.Relationship == "" {
		return &indexRule{
			field:    d.Field(),
			property: d.Property,
			updater:  owner.Root(),
		}, nil
	}

	rule := &indexRule{
		field:     d.Field(),
		property:  d.Property,
		relName:   d.Relationship,
		namespace: d.Namespace,
		updater:   owner.Root(),
	}

	if s, err := owner.Registry().Relationship(d.Relationship); err == nil {
		target, err := s.Target()
		if err != nil {
			return nil, &AmbiguousDirectionError{
				Model:  owner.Name(),
				Name:   d.Relationship,
				Reason: fmt.Sprintf("target %q is not defined", s.desc.TargetName()),
			}
		}
		edgeType, err := s.EdgeType()
		if err != nil {
			return nil, &AmbiguousDirectionError{
				Model:  owner.Name(),
				Name:   d.Relationship,
				Reason: err.Error(),
			}
		}
		rule.trigger = target
		rule.edgeType = edgeType
		// Walking from the trigger back to the updater reverses the
		// direction declared on the owning side.
		rule.walk = s.Direction().Reverse()
		return rule, nil
	}

	// Asymmetric declaration: the relationship lives on the far side,
	// targeting this tree. Exactly one such declaration must exist.
	var found *RelSchema
	for _, far := range farSchemasTargeting(owner, d.Relationship) {
		if found != nil {
			return nil, &AmbiguousDirectionError{
				Model:  owner.Name(),
				Name:   d.Relationship,
				Reason: fmt.Sprintf("declared on both %s and %s", found.owner.Name(), far.owner.Name()),
			}
		}
		found = far
	}
	if found == nil {
		return nil, &UnknownRelationshipError{Model: owner.Root().Name(), Name: d.Relationship}
	}
	edgeType, err := found.EdgeType()
	if err != nil {
		return nil, &AmbiguousDirectionError{Model: owner.Name(), Name: d.Relationship, Reason: err.Error()}
	}
	rule.trigger = found.owner
	rule.edgeType = edgeType
	// Declared on the trigger side: its direction already leads here.
	rule.walk = found.Direction()
	return rule, nil
}

// farSchemasTargeting returns relationship schemas named name declared
// on other trees whose target resolves into m's tree.
func farSchemasTargeting(m *Model, name string) []*RelSchema {
	catalog.mu.RLock()
	roots := make(map[*Model]struct{}, len(catalog.byName))
	for _, c := range catalog.byName {
		roots[c.root] = struct{}{}
	}
	catalog.mu.RUnlock()

	var out []*RelSchema
	for r := range roots {
		if r == m.Root() {
			continue
		}
		s, err := r.registry.Relationship(name)
		if err != nil {
			continue
		}
		target, err := s.Target()
		if err != nil {
			continue
		}
		if target.Root() == m.Root() {
			out = append(out, s)
		}
	}
	return out
}

// Indexer owns the index rules of one class tree and forwards index
// mutations to the search backend. There is at most one indexer per root
// model per graph; every class in the tree shares it.
type Indexer struct {
	g    *Graph
	root *Model

	mu    sync.RWMutex
	rules []*indexRule
}

// newIndexer seeds the indexer with the rules declared on the tree.
func newIndexer(g *Graph, root *Model) *Indexer {
	ix := &Indexer{g: g, root: root}
	ix.rules = root.registry.indexRules()
	return ix
}

// Root returns the root model the indexer serves.
func (ix *Indexer) Root() *Model { return ix.root }

// AddPropertyRule registers that writes to the property on any node of
// this tree are forwarded to the search index.
func (ix *Indexer) AddPropertyRule(name string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.rules = append(ix.rules, &indexRule{field: name, property: name, updater: ix.root})
}

// RemovePropertyRule unregisters a property rule.
func (ix *Indexer) RemovePropertyRule(name string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	kept := ix.rules[:0]
	for _, r := range ix.rules {
		if r.relName == "" && r.property == name {
			continue
		}
		kept = append(kept, r)
	}
	ix.rules = kept
}

// AddRelationshipRule registers that a change of property on the far end
// of the named relationship re-indexes the near end. Both sides resolve
// now; an undeclared relationship or unresolvable direction fails fast.
// The namespace tag defaults to the relationship name.
func (ix *Indexer) AddRelationshipRule(updater *Model, relationship, property, namespace string) error {
	if updater.Root() != ix.root {
		return fmt.Errorf("graphom: model %s does not belong to the %s tree", updater.Name(), ix.root.Name())
	}
	d := &index.Descriptor{Relationship: relationship, Property: property, Namespace: namespace}
	rule, err := resolveIndexRule(updater, d)
	if err != nil {
		return err
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.rules = append(ix.rules, rule)
	return nil
}

func (ix *Indexer) snapshot() []*indexRule {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]*indexRule, len(ix.rules))
	copy(out, ix.rules)
	return out
}

// OnPropertyChanged applies every matching rule for a property write:
// property rules push the new value for the node itself, relationship
// rules walk the relevant edges from the node to re-index each updater.
// Updates reach the search backend before the call returns.
func (ix *Indexer) OnPropertyChanged(n *Node, name string, value any) error {
	for _, r := range ix.snapshot() {
		if r.property != name || n.model == nil {
			continue
		}
		if r.relName == "" {
			if n.model.Root() != ix.root {
				continue
			}
			if err := ix.put(ix.root.Label(), n.ref, r.field, value); err != nil {
				return err
			}
			continue
		}
		if !n.model.IsA(r.trigger) {
			continue
		}
		updaters, err := ix.walkUpdaters(n.ref, r)
		if err != nil {
			return err
		}
		for _, u := range updaters {
			if err := ix.put(r.updater.Label(), u, r.field, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// onPropertyRemoved mirrors OnPropertyChanged for property deletion.
func (ix *Indexer) onPropertyRemoved(n *Node, name string) error {
	for _, r := range ix.snapshot() {
		if r.property != name || n.model == nil {
			continue
		}
		if r.relName == "" {
			if n.model.Root() != ix.root {
				continue
			}
			if err := ix.remove(ix.root.Label(), n.ref, r.field); err != nil {
				return err
			}
			continue
		}
		if !n.model.IsA(r.trigger) {
			continue
		}
		updaters, err := ix.walkUpdaters(n.ref, r)
		if err != nil {
			return err
		}
		for _, u := range updaters {
			if err := ix.remove(r.updater.Label(), u, r.field); err != nil {
				return err
			}
		}
	}
	return nil
}

// onEdgeChanged refreshes relationship-rule entries when a participating
// edge appears or disappears.
func (ix *Indexer) onEdgeChanged(edgeType string, from, to store.NodeRef, created bool) error {
	for _, r := range ix.snapshot() {
		if r.relName == "" || r.edgeType != edgeType {
			continue
		}
		triggerRef, updaterRef := from, to
		if r.walk == store.Incoming {
			triggerRef, updaterRef = to, from
		}
		trigger, err := ix.g.Load(triggerRef)
		if err != nil {
			return err
		}
		if trigger.model == nil || !trigger.model.IsA(r.trigger) {
			continue
		}
		if !created {
			// Other edges of the relationship may survive on the
			// updater; its entry must reflect them, not the one that
			// just went away.
			if err := ix.refreshUpdater(updaterRef, r, ""); err != nil {
				return err
			}
			continue
		}
		value, ok, err := trigger.Get(r.property)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := ix.put(r.updater.Label(), updaterRef, r.field, value); err != nil {
			return err
		}
	}
	return nil
}

// onNodeRemoved drops every entry referring to a node about to leave the
// graph.
func (ix *Indexer) onNodeRemoved(n *Node) error {
	for _, r := range ix.snapshot() {
		if r.relName == "" {
			if n.model.Root() == ix.root {
				if err := ix.remove(ix.root.Label(), n.ref, r.field); err != nil {
					return err
				}
			}
			continue
		}
		if n.model.Root() == r.updater {
			if err := ix.remove(r.updater.Label(), n.ref, r.field); err != nil {
				return err
			}
		}
		if n.model.IsA(r.trigger) {
			updaters, err := ix.walkUpdaters(n.ref, r)
			if err != nil {
				return err
			}
			// The node's edges are still in the store at this point, so
			// the refresh must skip it when scanning for survivors.
			for _, u := range updaters {
				if err := ix.refreshUpdater(u, r, n.ref); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// walkUpdaters follows the rule's edges from a trigger node to the
// updater nodes on the other side.
func (ix *Indexer) walkUpdaters(trigger store.NodeRef, r *indexRule) ([]store.NodeRef, error) {
	refs, err := ix.g.store.Edges(trigger, r.edgeType, r.walk)
	if err != nil {
		return nil, err
	}
	far := store.EndNode
	if r.walk == store.Incoming {
		far = store.StartNode
	}
	out := make([]store.NodeRef, 0, len(refs))
	for _, e := range refs {
		u, err := ix.g.store.Endpoint(e, far)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// refreshUpdater recomputes one updater's entry for a relationship rule
// from the edges still attached to it, ignoring exclude. The first
// surviving trigger carrying the property wins; with none left the
// entry is dropped.
func (ix *Indexer) refreshUpdater(updater store.NodeRef, r *indexRule, exclude store.NodeRef) error {
	dir := r.walk.Reverse()
	refs, err := ix.g.store.Edges(updater, r.edgeType, dir)
	if err != nil {
		return err
	}
	far := store.EndNode
	if dir == store.Incoming {
		far = store.StartNode
	}
	for _, e := range refs {
		tref, err := ix.g.store.Endpoint(e, far)
		if err != nil {
			return err
		}
		if tref == exclude {
			continue
		}
		trigger, err := ix.g.Load(tref)
		if err != nil {
			return err
		}
		if trigger.model == nil || !trigger.model.IsA(r.trigger) {
			continue
		}
		value, ok, err := trigger.Get(r.property)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		return ix.put(r.updater.Label(), updater, r.field, value)
	}
	return ix.remove(r.updater.Label(), updater, r.field)
}

func (ix *Indexer) put(tag string, ref store.NodeRef, field string, value any) error {
	if err := ix.g.search.Put(tag, ref, field, value); err != nil {
		return err
	}
	indexUpdates.WithLabelValues("put").Inc()
	ix.g.log.Debug("index put", "tag", tag, "ref", string(ref), "field", field)
	return nil
}

func (ix *Indexer) remove(tag string, ref store.NodeRef, field string) error {
	if err := ix.g.search.Remove(tag, ref, field); err != nil {
		return err
	}
	indexUpdates.WithLabelValues("remove").Inc()
	return nil
}

// Find queries the search backend and returns a lazy, finite sequence of
// nodes, each materialized through the graph's wrapper cache so repeated
// hits for one underlying node yield the same wrapper.
func (ix *Indexer) Find(p search.Predicate) iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		refs, err := ix.g.search.Query(ix.root.Label(), p)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, ref := range refs {
			n, err := ix.g.Load(ref)
			if !yield(n, err) || err != nil {
				return
			}
		}
	}
}

// Find is shorthand for Indexer(m).Find(p).
func (g *Graph) Find(m *Model, p search.Predicate) iter.Seq2[*Node, error] {
	return g.Indexer(m).Find(p)
}
