// Package index provides builders for declaring index rules on graphom
// models.
//
// A property rule forwards writes of one property to the search index:
//
//	index.Property("name")
//
// A relationship rule re-indexes the near end of a relationship whenever
// the named property changes on the far end:
//
//	// On Customer: re-index customers when an order's total changes.
//	index.Relationship("orders", "total")
//
// Relationship rules resolve both sides at declaration time and fail fast
// when the relationship is undeclared or its direction cannot be
// determined. The namespace tag keeps rules apart when several
// relationships share one edge-type label; it defaults to the
// relationship name.
package index

// A Descriptor holds one declared index rule.
type Descriptor struct {
	Property     string // indexed property name
	Relationship string // empty for plain property rules
	Namespace    string // disambiguating tag; empty means the relationship name
}

// Field returns the index field name the rule writes to. Property rules
// use the property name; relationship rules qualify it with the
// namespace tag.
func (d *Descriptor) Field() string {
	if d.Relationship == "" {
		return d.Property
	}
	ns := d.Namespace
	if ns == "" {
		ns = d.Relationship
	}
	return ns + "." + d.Property
}

// Builder builds an index rule descriptor.
type Builder struct {
	desc *Descriptor
}

// Property declares a property-index rule.
func Property(name string) *Builder {
	return &Builder{desc: &Descriptor{Property: name}}
}

// Relationship declares a relationship-triggered rule: a change of
// property on the far end of relationship re-indexes the near end.
func Relationship(relationship, property string) *Builder {
	return &Builder{desc: &Descriptor{Relationship: relationship, Property: property}}
}

// Namespace overrides the disambiguating tag of a relationship rule.
func (b *Builder) Namespace(ns string) *Builder {
	b.desc.Namespace = ns
	return b
}

// Descriptor returns the built descriptor.
func (b *Builder) Descriptor() *Descriptor { return b.desc }
