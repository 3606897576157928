package rel

import "github.com/go-openapi/inflect"

// Cardinality determines which view type backs a declared relationship.
type Cardinality int

// Relationship cardinalities.
const (
	One  Cardinality = iota // at most one edge (has-one)
	Many                    // unbounded edge set (has-many)
	List                    // ordered doubly-linked chain (has-list)
)

// String returns the cardinality name.
func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	case List:
		return "list"
	}
	return "unknown"
}

// Direction is the declared direction of a relationship's edges relative
// to the owning class.
type Direction int

// Relationship directions.
const (
	Outgoing Direction = iota
	Incoming
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// A Descriptor holds one declared relationship before it is registered.
// Builders in this package mutate the descriptor in place; once a class
// registers it the resulting schema is immutable.
type Descriptor struct {
	Name          string      // relationship name, unique within one class tree
	Type          string      // edge-type label; empty means Name
	Target        string      // target model name; empty means derived from Name
	RefName       string      // far-side relationship name for inverse declarations
	Direction     Direction   // default Outgoing
	Cardinality   Cardinality // One, Many, or List
	Counter       bool        // maintain a size counter (List only)
	IgnoreCascade bool        // relationship does not block cascade deletion
	MappingOnly   bool        // declares no storage, only target mapping (belongs-to-list)
}

// EdgeType returns the edge-type label, defaulting to the relationship name.
func (d *Descriptor) EdgeType() string {
	if d.Type != "" {
		return d.Type
	}
	return d.Name
}

// TargetName returns the declared target model name, deriving it from the
// relationship name when unspecified ("employees" targets "Employee").
func (d *Descriptor) TargetName() string {
	if d.Target != "" {
		return d.Target
	}
	return inflect.Camelize(inflect.Singularize(d.Name))
}

// OneBuilder builds a has-one relationship.
type OneBuilder struct {
	desc *Descriptor
}

// NewOne declares a single-valued relationship. The default direction is
// outgoing and the default edge-type label is the relationship name.
func NewOne(name string) *OneBuilder {
	return &OneBuilder{desc: &Descriptor{Name: name, Cardinality: One}}
}

// To sets the target model by name. Targets may reference models that are
// defined later; resolution is deferred to first use.
func (b *OneBuilder) To(target string) *OneBuilder {
	b.desc.Target = target
	return b
}

// From declares the relationship as the inverse side of ref on target.
// The edge-type label is resolved from the far-side declaration.
func (b *OneBuilder) From(target, ref string) *OneBuilder {
	b.desc.Target = target
	b.desc.RefName = ref
	b.desc.Direction = Incoming
	return b
}

// Type overrides the edge-type label.
func (b *OneBuilder) Type(label string) *OneBuilder {
	b.desc.Type = label
	return b
}

// CascadeIgnore marks the relationship as ignorable for cascade deletion.
func (b *OneBuilder) CascadeIgnore() *OneBuilder {
	b.desc.IgnoreCascade = true
	return b
}

// Descriptor returns the built descriptor.
func (b *OneBuilder) Descriptor() *Descriptor { return b.desc }

// ManyBuilder builds a has-many relationship.
type ManyBuilder struct {
	desc *Descriptor
}

// NewMany declares a multi-valued relationship. The default direction is
// outgoing and the default edge-type label is the relationship name.
func NewMany(name string) *ManyBuilder {
	return &ManyBuilder{desc: &Descriptor{Name: name, Cardinality: Many}}
}

// To sets the target model by name.
func (b *ManyBuilder) To(target string) *ManyBuilder {
	b.desc.Target = target
	return b
}

// From declares the relationship as the inverse side of ref on target.
func (b *ManyBuilder) From(target, ref string) *ManyBuilder {
	b.desc.Target = target
	b.desc.RefName = ref
	b.desc.Direction = Incoming
	return b
}

// Type overrides the edge-type label.
func (b *ManyBuilder) Type(label string) *ManyBuilder {
	b.desc.Type = label
	return b
}

// CascadeIgnore marks the relationship as ignorable for cascade deletion.
func (b *ManyBuilder) CascadeIgnore() *ManyBuilder {
	b.desc.IgnoreCascade = true
	return b
}

// Descriptor returns the built descriptor.
func (b *ManyBuilder) Descriptor() *Descriptor { return b.desc }

// ListBuilder builds a has-list relationship: an ordered chain of items
// anchored at a head edge from the owner.
type ListBuilder struct {
	desc *Descriptor
}

// NewList declares an ordered-list relationship.
func NewList(name string) *ListBuilder {
	return &ListBuilder{desc: &Descriptor{Name: name, Cardinality: List}}
}

// To sets the target model by name.
func (b *ListBuilder) To(target string) *ListBuilder {
	b.desc.Target = target
	return b
}

// Type overrides the edge-type label.
func (b *ListBuilder) Type(label string) *ListBuilder {
	b.desc.Type = label
	return b
}

// Counter maintains an integer size property on the owning node,
// incremented and decremented with every list mutation.
func (b *ListBuilder) Counter() *ListBuilder {
	b.desc.Counter = true
	return b
}

// CascadeIgnore marks the relationship as ignorable for cascade deletion.
func (b *ListBuilder) CascadeIgnore() *ListBuilder {
	b.desc.IgnoreCascade = true
	return b
}

// Descriptor returns the built descriptor.
func (b *ListBuilder) Descriptor() *Descriptor { return b.desc }

// MemberBuilder builds a belongs-to-list declaration. It declares no
// storage of its own; it records which model owns the list so that items
// loaded through the chain resolve to the right class.
type MemberBuilder struct {
	desc *Descriptor
}

// NewMember declares membership in a list owned by another model.
func NewMember(name string) *MemberBuilder {
	return &MemberBuilder{desc: &Descriptor{
		Name:        name,
		Cardinality: List,
		Direction:   Incoming,
		MappingOnly: true,
	}}
}

// Of sets the model that owns the list.
func (b *MemberBuilder) Of(owner string) *MemberBuilder {
	b.desc.Target = owner
	return b
}

// Type overrides the edge-type label of the owning list.
func (b *MemberBuilder) Type(label string) *MemberBuilder {
	b.desc.Type = label
	return b
}

// Descriptor returns the built descriptor.
func (b *MemberBuilder) Descriptor() *Descriptor { return b.desc }
