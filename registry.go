package graphom

import (
	"sync"

	"github.com/syssam/graphom/schema/prop"
	"github.com/syssam/graphom/schema/rel"
	"github.com/syssam/graphom/store"
)

// Registry holds the declared relationships, properties, and index rules
// of one class tree. There is exactly one registry per root model; every
// class in the tree shares it by reference.
type Registry struct {
	root *Model

	mu    sync.RWMutex
	rels  map[string]*RelSchema
	props map[string]*prop.Descriptor
	rules []*indexRule
}

func newRegistry(root *Model) *Registry {
	return &Registry{
		root:  root,
		rels:  make(map[string]*RelSchema),
		props: make(map[string]*prop.Descriptor),
	}
}

// Relationship returns the schema declared under name anywhere in the
// class tree, or an UnknownRelationshipError.
func (r *Registry) Relationship(name string) (*RelSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rels[name]
	if !ok {
		return nil, &UnknownRelationshipError{Model: r.root.name, Name: name}
	}
	return s, nil
}

// Property returns the property descriptor declared under name, and
// whether it exists. Undeclared properties are legal; they delegate to
// the store without marshaling.
func (r *Registry) Property(name string) (*prop.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.props[name]
	return p, ok
}

func (r *Registry) declareRelationship(owner *Model, d *rel.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rels[d.Name]; ok {
		return &DuplicateRelationshipError{Model: r.root.name, Name: d.Name}
	}
	// The schema copies the descriptor so later builder mutation cannot
	// leak into registered state.
	r.rels[d.Name] = &RelSchema{owner: owner, desc: *d}
	return nil
}

func (r *Registry) declareProperty(d *prop.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.props[d.Name] = &cp
	return nil
}

func (r *Registry) declareIndexRule(rule *indexRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

func (r *Registry) indexRules() []*indexRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*indexRule, len(r.rules))
	copy(out, r.rules)
	return out
}

func (r *Registry) hasIndexRules() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules) > 0
}

// lists returns the ordered-list schemas declared in the tree, excluding
// mapping-only membership declarations.
func (r *Registry) lists() []*RelSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*RelSchema
	for _, s := range r.rels {
		if s.desc.Cardinality == rel.List && !s.desc.MappingOnly {
			out = append(out, s)
		}
	}
	return out
}

// relationshipsOf returns every stored (non-mapping) schema in the tree.
// Used by the cascade-deletion predicate.
func (r *Registry) relationshipsOf() []*RelSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*RelSchema
	for _, s := range r.rels {
		if !s.desc.MappingOnly {
			out = append(out, s)
		}
	}
	return out
}

// RelSchema is one registered relationship. It is immutable after first
// use; the target model and, for inverse declarations, the edge-type
// label are resolved lazily on first access to tolerate forward
// references between models.
type RelSchema struct {
	owner *Model
	desc  rel.Descriptor

	mu       sync.Mutex
	target   *Model
	edgeType string
}

// Name returns the relationship name.
func (s *RelSchema) Name() string { return s.desc.Name }

// Owner returns the model the relationship was declared on.
func (s *RelSchema) Owner() *Model { return s.owner }

// Cardinality returns the declared cardinality.
func (s *RelSchema) Cardinality() rel.Cardinality { return s.desc.Cardinality }

// Counter reports whether the list maintains a size counter.
func (s *RelSchema) Counter() bool { return s.desc.Counter }

// IgnoreCascade reports whether the relationship is ignorable for
// cascade-deletion purposes.
func (s *RelSchema) IgnoreCascade() bool { return s.desc.IgnoreCascade }

// MappingOnly reports whether the declaration carries no storage of its
// own (belongs-to-list).
func (s *RelSchema) MappingOnly() bool { return s.desc.MappingOnly }

// Direction returns the declared direction as a store traversal
// direction relative to the owning node.
func (s *RelSchema) Direction() store.Direction {
	if s.desc.Direction == rel.Incoming {
		return store.Incoming
	}
	return store.Outgoing
}

// Target resolves and returns the target model.
func (s *RelSchema) Target() (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		m, err := ModelByName(s.desc.TargetName())
		if err != nil {
			return nil, err
		}
		s.target = m
	}
	return s.target, nil
}

// EdgeType resolves and returns the edge-type label. Inverse declarations
// borrow the label of the far-side relationship they reference.
func (s *RelSchema) EdgeType() (string, error) {
	s.mu.Lock()
	if s.edgeType != "" {
		defer s.mu.Unlock()
		return s.edgeType, nil
	}
	s.mu.Unlock()

	label := s.desc.EdgeType()
	if s.desc.RefName != "" {
		target, err := s.Target()
		if err != nil {
			return "", err
		}
		far, err := target.Registry().Relationship(s.desc.RefName)
		if err != nil {
			return "", err
		}
		label, err = far.EdgeType()
		if err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	s.edgeType = label
	s.mu.Unlock()
	return label, nil
}

// chainType returns the edge-type label of the list's linked chain.
func (s *RelSchema) chainType() (string, error) {
	t, err := s.EdgeType()
	if err != nil {
		return "", err
	}
	return t + "_next", nil
}

// counterProperty returns the owner property holding the list size.
func (s *RelSchema) counterProperty() (string, error) {
	t, err := s.EdgeType()
	if err != nil {
		return "", err
	}
	return t + "_size", nil
}
