package graphom

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/graphom/schema/rel"
	"github.com/syssam/graphom/store"
)

// Node gives one underlying store node object identity. Wrappers are
// cached per Graph: two Node pointers for the same reference are the same
// pointer, and equality follows the underlying reference, never the
// wrapper.
type Node struct {
	g     *Graph
	ref   store.NodeRef
	model *Model
}

// Ref returns the underlying store reference. It is the node's identity
// and is safe to use as a map key.
func (n *Node) Ref() store.NodeRef { return n.ref }

// Graph returns the owning graph.
func (n *Node) Graph() *Graph { return n.g }

// Model returns the model the node was created as, or nil when the node
// carries no class tag.
func (n *Node) Model() *Model { return n.model }

// Equal reports whether both wrappers refer to the same underlying node.
func (n *Node) Equal(other *Node) bool {
	return other != nil && n.ref == other.ref
}

// Get returns the named property. The second return value reports
// presence. Properties declared Marshaled are decoded from their msgpack
// form before being returned.
func (n *Node) Get(name string) (any, bool, error) {
	v, ok, err := n.g.store.GetProperty(n.ref, name)
	if err != nil || !ok {
		return nil, false, err
	}
	if n.marshaled(name) {
		raw, isRaw := v.([]byte)
		if isRaw {
			var out any
			if err := msgpack.Unmarshal(raw, &out); err != nil {
				return nil, false, err
			}
			return out, true, nil
		}
	}
	return v, true, nil
}

// Set writes the named property to the store and then forwards the
// change to the index rules of every tree, synchronously. Properties
// declared Marshaled are encoded with msgpack before storage; the index
// always observes the logical value.
func (n *Node) Set(name string, value any) error {
	stored := value
	if n.marshaled(name) {
		raw, err := msgpack.Marshal(value)
		if err != nil {
			return err
		}
		stored = raw
	}
	if err := n.g.store.SetProperty(n.ref, name, stored); err != nil {
		return err
	}
	return n.g.notifyPropertyChanged(n, name, value)
}

// DeleteProperty removes the named property and its index entries.
func (n *Node) DeleteProperty(name string) error {
	if err := n.g.store.DeleteProperty(n.ref, name); err != nil {
		return err
	}
	return n.g.notifyPropertyRemoved(n, name)
}

func (n *Node) marshaled(name string) bool {
	if n.model == nil {
		return false
	}
	p, ok := n.model.Registry().Property(name)
	return ok && p.Marshaled
}

// schemaFor resolves a declared relationship of the node's class tree.
func (n *Node) schemaFor(name string) (*RelSchema, error) {
	if n.model == nil {
		return nil, &UnknownModelError{Name: string(n.ref)}
	}
	return n.model.Registry().Relationship(name)
}

// One returns the single-valued view of a has-one relationship.
func (n *Node) One(name string) (*RelView, error) {
	s, err := n.schemaFor(name)
	if err != nil {
		return nil, err
	}
	if s.Cardinality() != rel.One {
		return nil, &InvalidCardinalityError{Name: name, Want: rel.One.String(), Got: s.Cardinality().String()}
	}
	return &RelView{node: n, schema: s}, nil
}

// Many returns the multi-valued view of a has-many relationship.
func (n *Node) Many(name string) (*RelView, error) {
	s, err := n.schemaFor(name)
	if err != nil {
		return nil, err
	}
	if s.Cardinality() != rel.Many {
		return nil, &InvalidCardinalityError{Name: name, Want: rel.Many.String(), Got: s.Cardinality().String()}
	}
	return &RelView{node: n, schema: s}, nil
}

// List returns the ordered view of a has-list relationship. It rejects
// belongs-to-list declarations; those carry no storage of their own.
func (n *Node) List(name string) (*ListView, error) {
	s, err := n.schemaFor(name)
	if err != nil {
		return nil, err
	}
	if s.Cardinality() != rel.List || s.MappingOnly() {
		got := s.Cardinality().String()
		if s.MappingOnly() {
			got = "list membership"
		}
		return nil, &InvalidCardinalityError{Name: name, Want: rel.List.String(), Got: got}
	}
	return &ListView{node: n, schema: s}, nil
}

// CascadeIgnorable reports whether the named relationship carries the
// cascade-ignore marker. It is a pure predicate on the declaration.
func (n *Node) CascadeIgnorable(name string) (bool, error) {
	s, err := n.schemaFor(name)
	if err != nil {
		return false, err
	}
	return s.IgnoreCascade(), nil
}

// CascadeDeletable reports whether the node has zero non-ignorable
// relationships left, making it eligible for cascade deletion by an
// external deletion coordinator.
func (n *Node) CascadeDeletable() (bool, error) {
	if n.model == nil {
		return true, nil
	}
	for _, s := range n.model.Registry().relationshipsOf() {
		if s.IgnoreCascade() {
			continue
		}
		edgeType, err := s.EdgeType()
		if err != nil {
			return false, err
		}
		refs, err := n.g.store.Edges(n.ref, edgeType, s.Direction())
		if err != nil {
			return false, err
		}
		if len(refs) > 0 {
			return false, nil
		}
	}
	return true, nil
}
