// Package search defines the search index contract consumed by graphom.
//
// The index keeps field-level entries per class tag and node reference.
// graphom pushes updates synchronously as properties and participating
// relationships change; queries are exact field matches (a query language
// is owned by richer backends, not this contract).
package search

import (
	"fmt"

	"github.com/syssam/graphom/store"
)

// Predicate is an exact-match condition on one indexed field.
type Predicate struct {
	Field string
	Value any
}

// Eq returns a predicate matching entries whose field equals value.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// String returns a readable form of the predicate.
func (p Predicate) String() string {
	return fmt.Sprintf("%s == %v", p.Field, p.Value)
}

// Index is the search backend contract.
//
// Entries are keyed by (classTag, ref, field); a Put for an existing key
// replaces the previous value. Implementations decide visibility of
// not-yet-committed updates.
type Index interface {
	// Put adds or replaces the index entry for a field of a node.
	Put(classTag string, ref store.NodeRef, field string, value any) error

	// Remove drops the index entry for a field of a node. Removing an
	// absent entry is not an error.
	Remove(classTag string, ref store.NodeRef, field string) error

	// Query returns the references whose indexed field matches the
	// predicate, in unspecified order.
	Query(classTag string, p Predicate) ([]store.NodeRef, error)
}
