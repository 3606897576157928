package graphom

import (
	"iter"

	"github.com/syssam/graphom/schema/rel"
	"github.com/syssam/graphom/store"
)

// RelView is the lazy view over the edges of one node for one has-one or
// has-many relationship. It holds no state beyond the (node, schema)
// pair: every traversal re-queries the store, so external mutation
// between two Each calls is visible on the next call.
type RelView struct {
	node   *Node
	schema *RelSchema
}

// Schema returns the relationship schema backing the view.
func (v *RelView) Schema() *RelSchema { return v.schema }

// edges returns the current edges of the relationship.
func (v *RelView) edges() ([]store.EdgeRef, string, error) {
	edgeType, err := v.schema.EdgeType()
	if err != nil {
		return nil, "", err
	}
	refs, err := v.node.g.store.Edges(v.node.ref, edgeType, v.schema.Direction())
	return refs, edgeType, err
}

// farEnd selects the endpoint on the other side of the owning node.
func (v *RelView) farEnd() store.End {
	if v.schema.Direction() == store.Incoming {
		return store.StartNode
	}
	return store.EndNode
}

// Append connects other through one new edge of the schema's type and
// direction. On a has-one relationship any existing edge is removed
// first, so the at-most-one invariant holds across every write path.
// Matching index rules are applied before Append returns.
func (v *RelView) Append(other *Node) error {
	if v.schema.Cardinality() == rel.One {
		if err := v.clear(); err != nil {
			return err
		}
	}
	edgeType, err := v.schema.EdgeType()
	if err != nil {
		return err
	}
	from, to := v.node.ref, other.ref
	if v.schema.Direction() == store.Incoming {
		from, to = other.ref, v.node.ref
	}
	_, err = v.node.g.createEdge(from, to, edgeType)
	return err
}

// Replace deletes any existing edge of the relationship before appending
// other, enforcing the at-most-one invariant of has-one relationships.
// A nil other clears the relationship. Replace on a many-valued schema
// fails with InvalidCardinalityError.
func (v *RelView) Replace(other *Node) error {
	if v.schema.Cardinality() != rel.One {
		return &InvalidCardinalityError{
			Name: v.schema.Name(),
			Want: rel.One.String(),
			Got:  v.schema.Cardinality().String(),
		}
	}
	if other == nil {
		return v.clear()
	}
	return v.Append(other)
}

// clear deletes every current edge of the relationship.
func (v *RelView) clear() error {
	refs, edgeType, err := v.edges()
	if err != nil {
		return err
	}
	for _, e := range refs {
		if err := v.node.g.deleteEdge(e, edgeType); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the node at the far end of a has-one relationship, or nil
// when the relationship is unset.
func (v *RelView) Get() (*Node, error) {
	if v.schema.Cardinality() != rel.One {
		return nil, &InvalidCardinalityError{
			Name: v.schema.Name(),
			Want: rel.One.String(),
			Got:  v.schema.Cardinality().String(),
		}
	}
	var out *Node
	for n, err := range v.Each() {
		if err != nil {
			return nil, err
		}
		out = n
		break
	}
	return out, nil
}

// Each returns a lazy, finite, restartable sequence over the far
// endpoints of the relationship. Each range starts a fresh traversal;
// endpoints are materialized through the graph's wrapper cache.
func (v *RelView) Each() iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		refs, _, err := v.edges()
		if err != nil {
			yield(nil, err)
			return
		}
		far := v.farEnd()
		for _, e := range refs {
			nref, err := v.node.g.store.Endpoint(e, far)
			if err != nil {
				yield(nil, err)
				return
			}
			n, err := v.node.g.Load(nref)
			if !yield(n, err) || err != nil {
				return
			}
		}
	}
}

// Includes reports whether other is connected through this relationship.
// Comparison follows underlying node identity.
func (v *RelView) Includes(other *Node) (bool, error) {
	for n, err := range v.Each() {
		if err != nil {
			return false, err
		}
		if n.Equal(other) {
			return true, nil
		}
	}
	return false, nil
}
