// Package badgerstore provides a Store persisted in a Badger key-value
// database. All operations run inside an explicitly opened transaction;
// calls outside a Begin/Commit scope fail with ErrNoActiveTransaction.
//
// Key layout:
//
//	n:<node>                    node marker
//	p:<node>:<name>             property value, msgpack
//	e:<edge>                    edge record, msgpack
//	o:<node>:<type>:<edge>      outgoing adjacency
//	i:<node>:<type>:<edge>      incoming adjacency
package badgerstore

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/graphom/store"
)

type edgeRec struct {
	From string `msgpack:"f"`
	To   string `msgpack:"t"`
	Type string `msgpack:"y"`
}

// Store implements store.Store over a Badger database. One transaction
// may be open at a time; the transaction scope is caller-managed.
type Store struct {
	db *badger.DB

	mu  sync.Mutex
	txn *badger.Txn
}

// Open opens or creates a database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database. An open transaction is discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.txn != nil {
		s.txn.Discard()
		s.txn = nil
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Begin opens a read-write transaction. Nested transactions are not
// supported.
func (s *Store) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txn != nil {
		return errors.New("badgerstore: transaction already open")
	}
	s.txn = s.db.NewTransaction(true)
	return nil
}

// Commit commits the open transaction.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txn == nil {
		return store.ErrNoActiveTransaction
	}
	err := s.txn.Commit()
	s.txn = nil
	return err
}

// Rollback discards the open transaction.
func (s *Store) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txn == nil {
		return store.ErrNoActiveTransaction
	}
	s.txn.Discard()
	s.txn = nil
	return nil
}

func (s *Store) tx() (*badger.Txn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txn == nil {
		return nil, store.ErrNoActiveTransaction
	}
	return s.txn, nil
}

func nodeKey(ref store.NodeRef) []byte { return []byte("n:" + ref) }
func propKey(ref store.NodeRef, name string) []byte {
	return []byte("p:" + string(ref) + ":" + name)
}
func edgeKey(ref store.EdgeRef) []byte { return []byte("e:" + ref) }
func adjKey(prefix string, node store.NodeRef, edgeType string, edge store.EdgeRef) []byte {
	return []byte(prefix + string(node) + ":" + edgeType + ":" + string(edge))
}

func (s *Store) CreateNode() (store.NodeRef, error) {
	txn, err := s.tx()
	if err != nil {
		return "", err
	}
	ref := store.NodeRef(uuid.NewString())
	if err := txn.Set(nodeKey(ref), nil); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *Store) nodeExists(txn *badger.Txn, ref store.NodeRef) error {
	if _, err := txn.Get(nodeKey(ref)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteNode removes the node, its properties, and every edge touching
// it.
func (s *Store) DeleteNode(ref store.NodeRef) error {
	txn, err := s.tx()
	if err != nil {
		return err
	}
	if err := s.nodeExists(txn, ref); err != nil {
		return err
	}
	for _, prefix := range []string{"o:", "i:"} {
		edges, err := scanAdjacency(txn, prefix, ref, "")
		if err != nil {
			return err
		}
		for _, e := range edges {
			if err := s.deleteEdgeTx(txn, e); err != nil {
				return err
			}
		}
	}
	if err := deletePrefix(txn, []byte("p:"+string(ref)+":")); err != nil {
		return err
	}
	return txn.Delete(nodeKey(ref))
}

func (s *Store) GetProperty(ref store.NodeRef, name string) (any, bool, error) {
	txn, err := s.tx()
	if err != nil {
		return nil, false, err
	}
	if err := s.nodeExists(txn, ref); err != nil {
		return nil, false, err
	}
	item, err := txn.Get(propKey(ref, name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out any
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &out)
	})
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *Store) SetProperty(ref store.NodeRef, name string, value any) error {
	txn, err := s.tx()
	if err != nil {
		return err
	}
	if err := s.nodeExists(txn, ref); err != nil {
		return err
	}
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(propKey(ref, name), raw)
}

func (s *Store) DeleteProperty(ref store.NodeRef, name string) error {
	txn, err := s.tx()
	if err != nil {
		return err
	}
	if err := s.nodeExists(txn, ref); err != nil {
		return err
	}
	return txn.Delete(propKey(ref, name))
}

func (s *Store) CreateEdge(from, to store.NodeRef, edgeType string) (store.EdgeRef, error) {
	txn, err := s.tx()
	if err != nil {
		return "", err
	}
	if err := s.nodeExists(txn, from); err != nil {
		return "", err
	}
	if err := s.nodeExists(txn, to); err != nil {
		return "", err
	}
	ref := store.EdgeRef(uuid.NewString())
	raw, err := msgpack.Marshal(&edgeRec{From: string(from), To: string(to), Type: edgeType})
	if err != nil {
		return "", err
	}
	if err := txn.Set(edgeKey(ref), raw); err != nil {
		return "", err
	}
	if err := txn.Set(adjKey("o:", from, edgeType, ref), nil); err != nil {
		return "", err
	}
	if err := txn.Set(adjKey("i:", to, edgeType, ref), nil); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *Store) DeleteEdge(ref store.EdgeRef) error {
	txn, err := s.tx()
	if err != nil {
		return err
	}
	return s.deleteEdgeTx(txn, ref)
}

func (s *Store) deleteEdgeTx(txn *badger.Txn, ref store.EdgeRef) error {
	rec, err := getEdge(txn, ref)
	if err != nil {
		return err
	}
	if err := txn.Delete(adjKey("o:", store.NodeRef(rec.From), rec.Type, ref)); err != nil {
		return err
	}
	if err := txn.Delete(adjKey("i:", store.NodeRef(rec.To), rec.Type, ref)); err != nil {
		return err
	}
	return txn.Delete(edgeKey(ref))
}

func (s *Store) Edges(ref store.NodeRef, edgeType string, dir store.Direction) ([]store.EdgeRef, error) {
	txn, err := s.tx()
	if err != nil {
		return nil, err
	}
	if err := s.nodeExists(txn, ref); err != nil {
		return nil, err
	}
	prefix := "o:"
	if dir == store.Incoming {
		prefix = "i:"
	}
	return scanAdjacency(txn, prefix, ref, edgeType)
}

func (s *Store) Endpoint(ref store.EdgeRef, which store.End) (store.NodeRef, error) {
	txn, err := s.tx()
	if err != nil {
		return "", err
	}
	rec, err := getEdge(txn, ref)
	if err != nil {
		return "", err
	}
	if which == store.StartNode {
		return store.NodeRef(rec.From), nil
	}
	return store.NodeRef(rec.To), nil
}

func getEdge(txn *badger.Txn, ref store.EdgeRef) (*edgeRec, error) {
	item, err := txn.Get(edgeKey(ref))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec edgeRec
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// scanAdjacency collects edge refs under an adjacency prefix. An empty
// edgeType matches all types.
func scanAdjacency(txn *badger.Txn, prefix string, node store.NodeRef, edgeType string) ([]store.EdgeRef, error) {
	scan := []byte(prefix + string(node) + ":")
	if edgeType != "" {
		scan = append(scan, []byte(edgeType+":")...)
	}
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []store.EdgeRef
	for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
		key := it.Item().Key()
		i := bytes.LastIndexByte(key, ':')
		out = append(out, store.EdgeRef(key[i+1:]))
	}
	return out, nil
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
