// Package rel provides fluent builders for declaring typed relationships
// between graphom models.
//
// A relationship maps a name on the owning class to a set of directed,
// typed edges in the graph store. Cardinality selects the view that backs
// the relationship at runtime:
//
//	// Has-one: at most one outgoing edge.
//	rel.NewOne("customer").To("Customer")
//
//	// Has-many: unbounded outgoing edges.
//	rel.NewMany("friends").To("Person")
//
//	// Has-list: ordered chain with an optional size counter.
//	rel.NewList("employees").To("Employee").Counter()
//
// # Directions and inverse declarations
//
// Has-one and has-many declarations are outgoing by default. The inverse
// side of a relationship declared elsewhere uses From, naming the far
// model and its relationship; the edge-type label is then resolved from
// the far-side declaration:
//
//	// Person schema
//	rel.NewOne("address").To("Address")
//
//	// Address schema
//	rel.NewMany("people").From("Person", "address")
//
// # Target resolution
//
// Targets are model names, resolved lazily on first use so that mutually
// referencing models can be declared in any order. When no target is
// given it is derived from the relationship name ("employees" targets
// "Employee").
//
// # List membership
//
// Belongs-to-list declarations record only the owning model of a list, so
// items loaded through the chain resolve to the right class:
//
//	rel.NewMember("employees").Of("Company")
package rel
