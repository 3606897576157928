// Package schema is the entry point for declaring graphom models.
//
// Declarations are grouped by concern into subpackages:
//
//   - rel: relationships (has-one, has-many, ordered lists, list
//     membership)
//   - prop: typed properties, optionally serialized with msgpack
//   - index: search-index rules, property-triggered or
//     relationship-triggered
//
// Builders produce descriptors that are registered on a Model; see the
// root graphom package for registration and runtime access.
package schema
