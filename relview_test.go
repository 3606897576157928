package graphom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphom"
	"github.com/syssam/graphom/schema/rel"
	"github.com/syssam/graphom/store"
)

// TestHasOne tests the single-valued view and its at-most-one guarantee.
func TestHasOne(t *testing.T) {
	writer := graphom.NewModel("Writer")
	publisher := graphom.NewModel("Publisher")
	require.NoError(t, writer.Relationships(
		rel.NewOne("publisher").Type("published_by"),
	))
	require.NoError(t, publisher.Relationships(
		rel.NewMany("writers").From("Writer", "publisher"),
	))

	g := newTestGraph()
	w, err := g.Create(writer)
	require.NoError(t, err)
	p1, err := g.Create(publisher)
	require.NoError(t, err)
	p2, err := g.Create(publisher)
	require.NoError(t, err)

	view, err := w.One("publisher")
	require.NoError(t, err)

	t.Run("unset_returns_nil", func(t *testing.T) {
		got, err := view.Get()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("replace_keeps_single_edge", func(t *testing.T) {
		require.NoError(t, view.Replace(p1))
		require.NoError(t, view.Replace(p2))

		got, err := view.Get()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(p2))

		edges, err := g.Store().Edges(w.Ref(), "published_by", store.Outgoing)
		require.NoError(t, err)
		assert.Len(t, edges, 1)
	})

	t.Run("append_also_replaces", func(t *testing.T) {
		require.NoError(t, view.Append(p1))
		edges, err := g.Store().Edges(w.Ref(), "published_by", store.Outgoing)
		require.NoError(t, err)
		assert.Len(t, edges, 1)
	})

	t.Run("replace_nil_clears", func(t *testing.T) {
		require.NoError(t, view.Replace(nil))
		got, err := view.Get()
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("replace_on_many_fails", func(t *testing.T) {
		writers, err := p1.Many("writers")
		require.NoError(t, err)
		err = writers.Replace(w)
		assert.True(t, graphom.IsInvalidCardinality(err))
	})
}

// TestHasMany tests the multi-valued view in both directions.
func TestHasMany(t *testing.T) {
	reader := graphom.NewModel("Reader")
	library := graphom.NewModel("Library")
	require.NoError(t, reader.Relationships(
		rel.NewOne("library").Type("member_of"),
	))
	require.NoError(t, library.Relationships(
		rel.NewMany("readers").From("Reader", "library"),
	))

	g := newTestGraph()
	lib, err := g.Create(library)
	require.NoError(t, err)
	r1, err := g.Create(reader)
	require.NoError(t, err)
	r2, err := g.Create(reader)
	require.NoError(t, err)

	for _, r := range []*graphom.Node{r1, r2} {
		v, err := r.One("library")
		require.NoError(t, err)
		require.NoError(t, v.Replace(lib))
	}

	// The inverse view walks the same edges from the other end.
	readers, err := lib.Many("readers")
	require.NoError(t, err)

	t.Run("each_yields_far_endpoints", func(t *testing.T) {
		var got []store.NodeRef
		for n, err := range readers.Each() {
			require.NoError(t, err)
			got = append(got, n.Ref())
		}
		assert.ElementsMatch(t, []store.NodeRef{r1.Ref(), r2.Ref()}, got)
	})

	t.Run("includes", func(t *testing.T) {
		ok, err := readers.Includes(r1)
		require.NoError(t, err)
		assert.True(t, ok)

		stranger, err := g.Create(reader)
		require.NoError(t, err)
		ok, err = readers.Includes(stranger)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("each_restarts_fresh", func(t *testing.T) {
		seq := readers.Each()

		count := func() int {
			var n int
			for _, err := range seq {
				require.NoError(t, err)
				n++
			}
			return n
		}
		require.Equal(t, 2, count())

		v, err := r2.One("library")
		require.NoError(t, err)
		require.NoError(t, v.Replace(nil))

		// The same sequence value observes the mutation on re-range.
		assert.Equal(t, 1, count())
	})
}
