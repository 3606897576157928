package sqlstore

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/graphom/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewWithDB(db)
	s.nextRef = func() string { return "ref-1" }
	return s, mock
}

// TestCreateNode tests node insertion.
func TestCreateNode(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO nodes").
		WithArgs("ref-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	ref, err := s.CreateNode()
	require.NoError(t, err)
	assert.Equal(t, store.NodeRef("ref-1"), ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestProperties tests the property round trip and absence handling.
func TestProperties(t *testing.T) {
	t.Run("set_upserts", func(t *testing.T) {
		s, mock := newMockStore(t)
		raw, err := msgpack.Marshal("alpha")
		require.NoError(t, err)
		mock.ExpectExec("INSERT INTO node_props").
			WithArgs("n1", "name", raw).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.SetProperty("n1", "name", "alpha"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get_decodes", func(t *testing.T) {
		s, mock := newMockStore(t)
		raw, err := msgpack.Marshal("alpha")
		require.NoError(t, err)
		mock.ExpectQuery("SELECT value FROM node_props").
			WithArgs("n1", "name").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(raw))

		v, ok, err := s.GetProperty("n1", "name")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "alpha", v)
	})

	t.Run("get_absent", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT value FROM node_props").
			WithArgs("n1", "name").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, ok, err := s.GetProperty("n1", "name")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// TestEdgeQueries tests adjacency selection and endpoint lookup.
func TestEdgeQueries(t *testing.T) {
	t.Run("edges_ordered_by_seq", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT ref FROM edges WHERE from_ref").
			WithArgs("n1", "likes").
			WillReturnRows(sqlmock.NewRows([]string{"ref"}).AddRow("e1").AddRow("e2"))

		got, err := s.Edges("n1", "likes", store.Outgoing)
		require.NoError(t, err)
		assert.Equal(t, []store.EdgeRef{"e1", "e2"}, got)
	})

	t.Run("incoming_selects_to_ref", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT ref FROM edges WHERE to_ref").
			WithArgs("n1", "likes").
			WillReturnRows(sqlmock.NewRows([]string{"ref"}))

		got, err := s.Edges("n1", "likes", store.Incoming)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("endpoint", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT from_ref, to_ref FROM edges").
			WithArgs("e1").
			WillReturnRows(sqlmock.NewRows([]string{"from_ref", "to_ref"}).AddRow("a", "b"))

		from, err := s.Endpoint("e1", store.StartNode)
		require.NoError(t, err)
		assert.Equal(t, store.NodeRef("a"), from)
	})

	t.Run("endpoint_missing_edge", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("SELECT from_ref, to_ref FROM edges").
			WithArgs("e9").
			WillReturnRows(sqlmock.NewRows([]string{"from_ref", "to_ref"}))

		_, err := s.Endpoint("e9", store.StartNode)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

// TestDeletes tests affected-row checks on deletion.
func TestDeletes(t *testing.T) {
	t.Run("delete_edge_missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM edges WHERE ref").
			WithArgs("e9").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.DeleteEdge("e9"), store.ErrNotFound)
	})

	t.Run("delete_node_cascades", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM nodes").
			WithArgs("n1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM node_props").
			WithArgs("n1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM edges").
			WithArgs("n1", "n1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.DeleteNode("n1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete_node_missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec("DELETE FROM nodes").
			WithArgs("n9").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.DeleteNode("n9"), store.ErrNotFound)
	})
}
