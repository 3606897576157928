// Package store defines the graph storage contract consumed by graphom.
//
// A Store owns nodes, edges, node properties, and the transactional scope
// in which they are mutated. The mapping layer is a participant in that
// scope, never its owner: implementations that require an explicit
// transaction must return [ErrNoActiveTransaction] from mutating calls
// issued outside one.
//
// Three implementations ship with this module:
//
//   - [github.com/syssam/graphom/store/memstore]: in-memory, for tests and
//     small datasets
//   - [github.com/syssam/graphom/store/badgerstore]: persistent, backed by
//     badger
//   - [github.com/syssam/graphom/store/sqlstore]: backed by database/sql
//     with the sqlite dialect
package store

import "errors"

// NodeRef is an opaque reference to a node owned by a Store.
type NodeRef string

// EdgeRef is an opaque reference to an edge owned by a Store.
type EdgeRef string

// Direction selects which edges of a node to traverse.
type Direction int

// Traversal directions.
const (
	Outgoing Direction = iota // edges starting at the node
	Incoming                  // edges ending at the node
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Incoming {
		return Outgoing
	}
	return Incoming
}

// End selects one endpoint of an edge.
type End int

// Edge endpoints.
const (
	StartNode End = iota // the node the edge points away from
	EndNode              // the node the edge points at
)

// Sentinel errors shared by all Store implementations.
var (
	// ErrNotFound is returned when a referenced node or edge does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrNoActiveTransaction is returned by stores that require mutations
	// to run inside a caller-managed transactional scope when no such
	// scope is active.
	ErrNoActiveTransaction = errors.New("store: no active transaction")
)

// Store is the graph storage engine contract.
//
// Property values round-trip as Go values; implementations that persist to
// disk serialize them internally. Edges are directed and typed. All methods
// are synchronous; visibility of uncommitted changes is owned by the
// implementation's transactional scope.
type Store interface {
	// CreateNode allocates a new node and returns its reference.
	CreateNode() (NodeRef, error)

	// DeleteNode removes a node. The caller is responsible for removing
	// or repairing edges that reference it first.
	DeleteNode(ref NodeRef) error

	// GetProperty returns the named property of a node. The second return
	// value reports whether the property is present.
	GetProperty(ref NodeRef, name string) (any, bool, error)

	// SetProperty sets the named property of a node.
	SetProperty(ref NodeRef, name string, value any) error

	// DeleteProperty removes the named property of a node. Removing an
	// absent property is not an error.
	DeleteProperty(ref NodeRef, name string) error

	// CreateEdge creates a directed edge of the given type.
	CreateEdge(from, to NodeRef, edgeType string) (EdgeRef, error)

	// DeleteEdge removes an edge.
	DeleteEdge(ref EdgeRef) error

	// Edges returns the edges of the given type touching ref in the given
	// direction. The order is unspecified but stable within one scope.
	Edges(ref NodeRef, edgeType string, dir Direction) ([]EdgeRef, error)

	// Endpoint returns one endpoint of an edge.
	Endpoint(ref EdgeRef, which End) (NodeRef, error)
}
