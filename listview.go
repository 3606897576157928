package graphom

import (
	"fmt"
	"iter"

	"github.com/syssam/graphom/store"
)

// ListView is the ordered view of a has-list relationship: a doubly
// linked chain of items anchored at a head edge from the owning node.
// The head edge carries the schema's edge-type label; chain links use
// the label suffixed with "_next"; the optional size counter lives on
// the owner as "<label>_size".
//
// Like RelView, the view holds no state: every traversal starts at the
// current head, so external mutation is visible on the next Each call.
type ListView struct {
	node   *Node
	schema *RelSchema
}

// Schema returns the relationship schema backing the view.
func (l *ListView) Schema() *RelSchema { return l.schema }

// Head returns the first item of the list, or nil when empty.
func (l *ListView) Head() (*Node, error) {
	edgeType, err := l.schema.EdgeType()
	if err != nil {
		return nil, err
	}
	refs, err := l.node.g.store.Edges(l.node.ref, edgeType, store.Outgoing)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, nil
	}
	nref, err := l.node.g.store.Endpoint(refs[0], store.EndNode)
	if err != nil {
		return nil, err
	}
	return l.node.g.Load(nref)
}

// PushFront inserts item at the head of the list in O(1): the owner's
// head edge is repointed at item and the previous head, if any, becomes
// item's successor. Increments the counter when enabled.
func (l *ListView) PushFront(item *Node) error {
	g := l.node.g
	edgeType, err := l.schema.EdgeType()
	if err != nil {
		return err
	}
	chainType, err := l.schema.chainType()
	if err != nil {
		return err
	}

	heads, err := g.store.Edges(l.node.ref, edgeType, store.Outgoing)
	if err != nil {
		return err
	}
	if len(heads) > 0 {
		oldHead, err := g.store.Endpoint(heads[0], store.EndNode)
		if err != nil {
			return err
		}
		if err := g.deleteEdge(heads[0], edgeType); err != nil {
			return err
		}
		if _, err := g.createEdge(item.ref, oldHead, chainType); err != nil {
			return err
		}
	}
	if _, err := g.createEdge(l.node.ref, item.ref, edgeType); err != nil {
		return err
	}
	return l.adjustCounter(+1)
}

// Each returns a lazy, finite, restartable sequence over the list in
// order, head first. Each range starts a fresh traversal from the
// current head.
func (l *ListView) Each() iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		g := l.node.g
		chainType, err := l.schema.chainType()
		if err != nil {
			yield(nil, err)
			return
		}
		cur, err := l.Head()
		if err != nil {
			yield(nil, err)
			return
		}
		for cur != nil {
			if !yield(cur, nil) {
				return
			}
			next, err := g.store.Edges(cur.ref, chainType, store.Outgoing)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(next) == 0 {
				return
			}
			nref, err := g.store.Endpoint(next[0], store.EndNode)
			if err != nil {
				yield(nil, err)
				return
			}
			cur, err = g.Load(nref)
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// EachReverse returns a lazy, restartable sequence over the list in
// reverse order, tail first. Locating the tail walks the whole chain,
// so the first element costs O(n).
func (l *ListView) EachReverse() iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		g := l.node.g
		chainType, err := l.schema.chainType()
		if err != nil {
			yield(nil, err)
			return
		}
		head, err := l.Head()
		if err != nil {
			yield(nil, err)
			return
		}
		if head == nil {
			return
		}
		tail := head.ref
		for {
			next, err := g.store.Edges(tail, chainType, store.Outgoing)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(next) == 0 {
				break
			}
			if tail, err = g.store.Endpoint(next[0], store.EndNode); err != nil {
				yield(nil, err)
				return
			}
		}
		for cur := tail; ; {
			n, err := g.Load(cur)
			if !yield(n, err) || err != nil {
				return
			}
			if cur == head.ref {
				return
			}
			prevs, err := g.store.Edges(cur, chainType, store.Incoming)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(prevs) == 0 {
				return
			}
			if cur, err = g.store.Endpoint(prevs[0], store.StartNode); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// Delete unlinks item from the list, re-linking its neighbors: the
// predecessor's chain edge is repointed at the successor, and when item
// was the head, the owner's head edge is repointed at the new first item
// or removed entirely if the list becomes empty. Decrements the counter
// when enabled.
func (l *ListView) Delete(item *Node) error {
	g := l.node.g
	edgeType, err := l.schema.EdgeType()
	if err != nil {
		return err
	}
	chainType, err := l.schema.chainType()
	if err != nil {
		return err
	}

	// Head edge from this owner, if item is the current head.
	var headEdge store.EdgeRef
	heads, err := g.store.Edges(item.ref, edgeType, store.Incoming)
	if err != nil {
		return err
	}
	for _, e := range heads {
		owner, err := g.store.Endpoint(e, store.StartNode)
		if err != nil {
			return err
		}
		if owner == l.node.ref {
			headEdge = e
			break
		}
	}

	prevs, err := g.store.Edges(item.ref, chainType, store.Incoming)
	if err != nil {
		return err
	}
	nexts, err := g.store.Edges(item.ref, chainType, store.Outgoing)
	if err != nil {
		return err
	}

	// Interior items must trace back to this owner's head edge. Another
	// owner's chain of the same schema uses the same chain type, so a
	// predecessor alone proves membership in some list, not in this one.
	var prevEdge store.EdgeRef
	var prev store.NodeRef
	if headEdge == "" {
		for _, e := range prevs {
			p, err := g.store.Endpoint(e, store.StartNode)
			if err != nil {
				return err
			}
			owner, err := g.chainOwner(p, edgeType, chainType)
			if err != nil {
				return err
			}
			if owner == l.node.ref {
				prevEdge, prev = e, p
				break
			}
		}
	}
	if headEdge == "" && prevEdge == "" {
		return fmt.Errorf("graphom: node is not a member of list %q: %w", l.schema.Name(), store.ErrNotFound)
	}

	var next store.NodeRef
	hasNext := len(nexts) > 0
	if hasNext {
		if next, err = g.store.Endpoint(nexts[0], store.EndNode); err != nil {
			return err
		}
		if err := g.deleteEdge(nexts[0], chainType); err != nil {
			return err
		}
	}

	if headEdge != "" {
		if err := g.deleteEdge(headEdge, edgeType); err != nil {
			return err
		}
		if hasNext {
			if _, err := g.createEdge(l.node.ref, next, edgeType); err != nil {
				return err
			}
		}
	} else {
		if err := g.deleteEdge(prevEdge, chainType); err != nil {
			return err
		}
		if hasNext {
			if _, err := g.createEdge(prev, next, chainType); err != nil {
				return err
			}
		}
	}
	return l.adjustCounter(-1)
}

// Size returns the maintained counter. Lists declared without a counter
// fail with CounterNotEnabledError; no traversal fallback is attempted.
func (l *ListView) Size() (int64, error) {
	if !l.schema.Counter() {
		return 0, &CounterNotEnabledError{Name: l.schema.Name()}
	}
	name, err := l.schema.counterProperty()
	if err != nil {
		return 0, err
	}
	v, ok, err := l.node.g.store.GetProperty(l.node.ref, name)
	if err != nil || !ok {
		return 0, err
	}
	count, _ := toInt64(v)
	return count, nil
}

// adjustCounter shifts the owner's size counter. Counter bookkeeping is
// internal state and bypasses index notification.
func (l *ListView) adjustCounter(delta int64) error {
	return adjustListCounter(l.node.g, l.node.ref, l.schema, delta)
}

func adjustListCounter(g *Graph, owner store.NodeRef, s *RelSchema, delta int64) error {
	if !s.Counter() {
		return nil
	}
	name, err := s.counterProperty()
	if err != nil {
		return err
	}
	var count int64
	v, ok, err := g.store.GetProperty(owner, name)
	if err != nil {
		return err
	}
	if ok {
		count, _ = toInt64(v)
	}
	count += delta
	if count < 0 {
		count = 0
	}
	return g.store.SetProperty(owner, name, count)
}

// unlinkFromChains removes n from every chain of the given list schema
// it participates in, regardless of which node owns the list. This is
// the reactive repair path: it runs when a node is deleted out of band,
// not only through an explicit list delete.
func (g *Graph) unlinkFromChains(n *Node, s *RelSchema) error {
	edgeType, err := s.EdgeType()
	if err != nil {
		return err
	}
	chainType, err := s.chainType()
	if err != nil {
		return err
	}

	heads, err := g.store.Edges(n.ref, edgeType, store.Incoming)
	if err != nil {
		return err
	}
	prevs, err := g.store.Edges(n.ref, chainType, store.Incoming)
	if err != nil {
		return err
	}
	nexts, err := g.store.Edges(n.ref, chainType, store.Outgoing)
	if err != nil {
		return err
	}
	if len(heads) == 0 && len(prevs) == 0 && len(nexts) == 0 {
		return nil
	}

	var next store.NodeRef
	hasNext := len(nexts) > 0
	if hasNext {
		if next, err = g.store.Endpoint(nexts[0], store.EndNode); err != nil {
			return err
		}
		if err := g.deleteEdge(nexts[0], chainType); err != nil {
			return err
		}
	}

	// n heads one or more lists: repoint each owner at the successor.
	for _, e := range heads {
		owner, err := g.store.Endpoint(e, store.StartNode)
		if err != nil {
			return err
		}
		if err := g.deleteEdge(e, edgeType); err != nil {
			return err
		}
		if hasNext {
			if _, err := g.createEdge(owner, next, edgeType); err != nil {
				return err
			}
		}
		if err := adjustListCounter(g, owner, s, -1); err != nil {
			return err
		}
	}

	// n sits inside a chain: splice its neighbors together and walk back
	// to the owning node to keep the counter honest. The walk is O(n).
	if len(prevs) > 0 {
		prev, err := g.store.Endpoint(prevs[0], store.StartNode)
		if err != nil {
			return err
		}
		if err := g.deleteEdge(prevs[0], chainType); err != nil {
			return err
		}
		if hasNext {
			if _, err := g.createEdge(prev, next, chainType); err != nil {
				return err
			}
		}
		owner, err := g.chainOwner(prev, edgeType, chainType)
		if err != nil {
			return err
		}
		if owner != "" {
			if err := adjustListCounter(g, owner, s, -1); err != nil {
				return err
			}
		}
	}
	listRepairs.Inc()
	return nil
}

// chainOwner walks chain edges backwards from ref to the head item and
// returns the node owning its head edge, or empty when the chain is
// detached.
func (g *Graph) chainOwner(ref store.NodeRef, edgeType, chainType string) (store.NodeRef, error) {
	cur := ref
	for {
		prevs, err := g.store.Edges(cur, chainType, store.Incoming)
		if err != nil {
			return "", err
		}
		if len(prevs) == 0 {
			heads, err := g.store.Edges(cur, edgeType, store.Incoming)
			if err != nil {
				return "", err
			}
			if len(heads) == 0 {
				return "", nil
			}
			return g.store.Endpoint(heads[0], store.StartNode)
		}
		if cur, err = g.store.Endpoint(prevs[0], store.StartNode); err != nil {
			return "", err
		}
	}
}

// toInt64 coerces the property representations counters round-trip as.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint64:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint:
		return int64(x), true
	case float64:
		return int64(x), true
	case float32:
		return int64(x), true
	}
	return 0, false
}
