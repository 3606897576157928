package graphom

import (
	"fmt"
	"sync"

	"github.com/go-openapi/inflect"

	"github.com/syssam/graphom/schema/index"
	"github.com/syssam/graphom/schema/prop"
	"github.com/syssam/graphom/schema/rel"
)

// ClassnameProperty is the node property holding the class tag of the
// model a node was created as.
const ClassnameProperty = "_classname"

// Relationship is implemented by the builders of the schema/rel package.
type Relationship interface {
	Descriptor() *rel.Descriptor
}

// Property is implemented by the builders of the schema/prop package.
type Property interface {
	Descriptor() *prop.Descriptor
}

// IndexRule is implemented by the builders of the schema/index package.
type IndexRule interface {
	Descriptor() *index.Descriptor
}

// Process-wide model catalog. Models are defined at class-definition time
// and never torn down; the catalog is read-mostly afterwards.
var catalog = struct {
	mu      sync.RWMutex
	byName  map[string]*Model
	byLabel map[string]*Model
}{
	byName:  make(map[string]*Model),
	byLabel: make(map[string]*Model),
}

// A Model describes one application class. Models form trees via Derive;
// the relationship registry, property registry, and indexer are shared by
// the whole tree and owned by its root.
type Model struct {
	name     string
	label    string
	parent   *Model
	root     *Model
	registry *Registry

	mu     sync.RWMutex
	initFn func(*Node, ...any) error
}

// NewModel defines a new root model. The persisted class tag is the
// underscored form of the name ("OrderItem" tags nodes as "order_item").
// It panics when the name is already defined; model definition is a
// class-definition-time concern and a duplicate is a programmer error.
func NewModel(name string) *Model {
	m := &Model{name: name, label: inflect.Underscore(name)}
	m.root = m
	m.registry = newRegistry(m)
	registerModel(m)
	return m
}

// Derive defines a subclass of m. The subclass shares the root registry:
// declarations made on it are visible to the whole tree, and lookups on
// it see declarations made anywhere in the tree. It panics when the name
// is already defined.
func (m *Model) Derive(name string) *Model {
	sub := &Model{
		name:     name,
		label:    inflect.Underscore(name),
		parent:   m,
		root:     m.root,
		registry: m.root.registry,
	}
	registerModel(sub)
	return sub
}

func registerModel(m *Model) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	if _, ok := catalog.byName[m.name]; ok {
		panic(fmt.Sprintf("graphom: model %q is already defined", m.name))
	}
	catalog.byName[m.name] = m
	catalog.byLabel[m.label] = m
}

// ModelByName returns the defined model with the given name.
func ModelByName(name string) (*Model, error) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	m, ok := catalog.byName[name]
	if !ok {
		return nil, &UnknownModelError{Name: name}
	}
	return m, nil
}

// ModelByLabel returns the defined model with the given class tag.
func ModelByLabel(label string) (*Model, error) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()
	m, ok := catalog.byLabel[label]
	if !ok {
		return nil, &UnknownModelError{Name: label}
	}
	return m, nil
}

// ResetModels clears the model catalog. It is NOT thread-safe and exists
// for tests only.
func ResetModels() {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()
	catalog.byName = make(map[string]*Model)
	catalog.byLabel = make(map[string]*Model)
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Label returns the persisted class tag.
func (m *Model) Label() string { return m.label }

// Parent returns the direct ancestor, or nil for a root model.
func (m *Model) Parent() *Model { return m.parent }

// Root returns the root of the class tree m belongs to.
func (m *Model) Root() *Model { return m.root }

// Registry returns the relationship and property registry shared by the
// class tree.
func (m *Model) Registry() *Registry { return m.registry }

// IsA reports whether m is other or a descendant of other.
func (m *Model) IsA(other *Model) bool {
	for c := m; c != nil; c = c.parent {
		if c == other {
			return true
		}
	}
	return false
}

// Relationships declares relationships on the model. Declarations land in
// the root registry and are visible to every class in the tree; a name
// already declared anywhere in the tree is rejected.
func (m *Model) Relationships(rels ...Relationship) error {
	for _, r := range rels {
		if err := m.registry.declareRelationship(m, r.Descriptor()); err != nil {
			return err
		}
	}
	return nil
}

// Properties declares properties on the model, shared across the tree.
func (m *Model) Properties(props ...Property) error {
	for _, p := range props {
		if err := m.registry.declareProperty(p.Descriptor()); err != nil {
			return err
		}
	}
	return nil
}

// Indexes declares index rules on the model. Relationship rules resolve
// their trigger and updater sides now: an undeclared relationship or an
// unresolvable direction fails here, not at the first index update.
func (m *Model) Indexes(rules ...IndexRule) error {
	for _, r := range rules {
		rule, err := resolveIndexRule(m, r.Descriptor())
		if err != nil {
			return err
		}
		m.registry.declareIndexRule(rule)
	}
	return nil
}

// OnCreate registers the custom initializer run by Graph.Create after the
// class tag is stamped and creation callbacks have fired. Constructor
// arguments passed to Create are forwarded unchanged.
func (m *Model) OnCreate(fn func(*Node, ...any) error) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initFn = fn
	return m
}

// initializer returns the nearest declared initializer, walking up the
// ancestor chain.
func (m *Model) initializer() func(*Node, ...any) error {
	for c := m; c != nil; c = c.parent {
		c.mu.RLock()
		fn := c.initFn
		c.mu.RUnlock()
		if fn != nil {
			return fn
		}
	}
	return nil
}

// listSchemas returns every ordered-list schema declared in any tree,
// keyed by edge-type label. Used for chain repair on node deletion.
func listSchemas() []*RelSchema {
	catalog.mu.RLock()
	roots := make(map[*Model]struct{}, len(catalog.byName))
	for _, m := range catalog.byName {
		roots[m.root] = struct{}{}
	}
	catalog.mu.RUnlock()
	var out []*RelSchema
	for r := range roots {
		out = append(out, r.registry.lists()...)
	}
	return out
}

// rootsWithRules returns every root model whose tree declares at least
// one index rule.
func rootsWithRules() []*Model {
	catalog.mu.RLock()
	roots := make(map[*Model]struct{}, len(catalog.byName))
	for _, m := range catalog.byName {
		roots[m.root] = struct{}{}
	}
	catalog.mu.RUnlock()
	var out []*Model
	for r := range roots {
		if r.registry.hasIndexRules() {
			out = append(out, r)
		}
	}
	return out
}
