// Package sqlstore provides a Store persisted in a SQL database. It
// targets SQLite through the modernc driver but issues only portable
// ANSI statements, so any database/sql driver with the same placeholder
// style works.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/syssam/graphom/store"
)

func newRef() string { return uuid.NewString() }

// Store implements store.Store over database/sql.
type Store struct {
	db      *sql.DB
	nextRef func() string
}

// Open opens a SQLite database at dsn and prepares the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dsn, err)
	}
	s := NewWithDB(db)
	if err := s.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing database handle. The caller owns the
// handle's lifecycle and schema.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, nextRef: newRef}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying handle.
func (s *Store) Close() error { return s.db.Close() }

// InitSchema creates the tables when they do not exist.
func (s *Store) InitSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			ref TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS node_props (
			node_ref TEXT NOT NULL,
			name     TEXT NOT NULL,
			value    BLOB,
			PRIMARY KEY (node_ref, name)
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			ref       TEXT PRIMARY KEY,
			from_ref  TEXT NOT NULL,
			to_ref    TEXT NOT NULL,
			edge_type TEXT NOT NULL,
			seq       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS edges_from ON edges (from_ref, edge_type, seq)`,
		`CREATE INDEX IF NOT EXISTS edges_to ON edges (to_ref, edge_type, seq)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlstore: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) CreateNode() (store.NodeRef, error) {
	ref := s.nextRef()
	if _, err := s.db.Exec(`INSERT INTO nodes (ref) VALUES (?)`, ref); err != nil {
		return "", err
	}
	return store.NodeRef(ref), nil
}

// DeleteNode removes the node, its properties, and every edge touching
// it.
func (s *Store) DeleteNode(ref store.NodeRef) error {
	res, err := s.db.Exec(`DELETE FROM nodes WHERE ref = ?`, string(ref))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	if _, err := s.db.Exec(`DELETE FROM node_props WHERE node_ref = ?`, string(ref)); err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM edges WHERE from_ref = ? OR to_ref = ?`, string(ref), string(ref))
	return err
}

func (s *Store) GetProperty(ref store.NodeRef, name string) (any, bool, error) {
	var raw []byte
	err := s.db.QueryRow(
		`SELECT value FROM node_props WHERE node_ref = ? AND name = ?`,
		string(ref), name,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out any
	if err := msgpack.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *Store) SetProperty(ref store.NodeRef, name string, value any) error {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO node_props (node_ref, name, value) VALUES (?, ?, ?)
		 ON CONFLICT (node_ref, name) DO UPDATE SET value = excluded.value`,
		string(ref), name, raw,
	)
	return err
}

func (s *Store) DeleteProperty(ref store.NodeRef, name string) error {
	_, err := s.db.Exec(
		`DELETE FROM node_props WHERE node_ref = ? AND name = ?`,
		string(ref), name,
	)
	return err
}

func (s *Store) CreateEdge(from, to store.NodeRef, edgeType string) (store.EdgeRef, error) {
	ref := s.nextRef()
	_, err := s.db.Exec(
		`INSERT INTO edges (ref, from_ref, to_ref, edge_type, seq)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM edges))`,
		ref, string(from), string(to), edgeType,
	)
	if err != nil {
		return "", err
	}
	return store.EdgeRef(ref), nil
}

func (s *Store) DeleteEdge(ref store.EdgeRef) error {
	res, err := s.db.Exec(`DELETE FROM edges WHERE ref = ?`, string(ref))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Edges(ref store.NodeRef, edgeType string, dir store.Direction) ([]store.EdgeRef, error) {
	col := "from_ref"
	if dir == store.Incoming {
		col = "to_ref"
	}
	rows, err := s.db.Query(
		`SELECT ref FROM edges WHERE `+col+` = ? AND edge_type = ? ORDER BY seq`,
		string(ref), edgeType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.EdgeRef
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, store.EdgeRef(e))
	}
	return out, rows.Err()
}

func (s *Store) Endpoint(ref store.EdgeRef, which store.End) (store.NodeRef, error) {
	var from, to string
	err := s.db.QueryRow(
		`SELECT from_ref, to_ref FROM edges WHERE ref = ?`,
		string(ref),
	).Scan(&from, &to)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if which == store.StartNode {
		return store.NodeRef(from), nil
	}
	return store.NodeRef(to), nil
}
