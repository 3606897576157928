package graphom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphom"
	"github.com/syssam/graphom/schema/rel"
	"github.com/syssam/graphom/store"
)

// pushN creates count nodes of model m and pushes them onto the list,
// returning them in push order.
func pushN(t *testing.T, g *graphom.Graph, l *graphom.ListView, m *graphom.Model, count int) []*graphom.Node {
	t.Helper()
	out := make([]*graphom.Node, 0, count)
	for range count {
		n, err := g.Create(m)
		require.NoError(t, err)
		require.NoError(t, l.PushFront(n))
		out = append(out, n)
	}
	return out
}

func listRefs(t *testing.T, l *graphom.ListView) []store.NodeRef {
	t.Helper()
	var out []store.NodeRef
	for n, err := range l.Each() {
		require.NoError(t, err)
		out = append(out, n.Ref())
	}
	return out
}

// TestListPushFront tests insertion order and the size counter.
func TestListPushFront(t *testing.T) {
	playlist := graphom.NewModel("Playlist")
	song := graphom.NewModel("Song")
	require.NoError(t, playlist.Relationships(
		rel.NewList("songs").Counter(),
	))

	g := newTestGraph()
	pl, err := g.Create(playlist)
	require.NoError(t, err)
	songs, err := pl.List("songs")
	require.NoError(t, err)

	t.Run("empty_list", func(t *testing.T) {
		head, err := songs.Head()
		require.NoError(t, err)
		assert.Nil(t, head)
		size, err := songs.Size()
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	items := pushN(t, g, songs, song, 3)

	t.Run("newest_first", func(t *testing.T) {
		want := []store.NodeRef{items[2].Ref(), items[1].Ref(), items[0].Ref()}
		assert.Equal(t, want, listRefs(t, songs))

		head, err := songs.Head()
		require.NoError(t, err)
		require.NotNil(t, head)
		assert.True(t, head.Equal(items[2]))
	})

	t.Run("reverse_yields_oldest_first", func(t *testing.T) {
		var got []store.NodeRef
		for n, err := range songs.EachReverse() {
			require.NoError(t, err)
			got = append(got, n.Ref())
		}
		want := []store.NodeRef{items[0].Ref(), items[1].Ref(), items[2].Ref()}
		assert.Equal(t, want, got)
	})

	t.Run("counter_tracks_pushes", func(t *testing.T) {
		size, err := songs.Size()
		require.NoError(t, err)
		assert.EqualValues(t, 3, size)
	})
}

// TestListDelete tests unlinking at the head, in the middle, and at the
// tail, and the counter staying in step.
func TestListDelete(t *testing.T) {
	album := graphom.NewModel("PhotoAlbum")
	photo := graphom.NewModel("Photo")
	require.NoError(t, album.Relationships(
		rel.NewList("photos").Counter(),
	))

	g := newTestGraph()
	al, err := g.Create(album)
	require.NoError(t, err)
	photos, err := al.List("photos")
	require.NoError(t, err)

	items := pushN(t, g, photos, photo, 4)
	// List order is d, c, b, a.
	a, b, c, d := items[0], items[1], items[2], items[3]

	t.Run("delete_interior", func(t *testing.T) {
		require.NoError(t, photos.Delete(b))
		assert.Equal(t, []store.NodeRef{d.Ref(), c.Ref(), a.Ref()}, listRefs(t, photos))
	})

	t.Run("delete_head", func(t *testing.T) {
		require.NoError(t, photos.Delete(d))
		assert.Equal(t, []store.NodeRef{c.Ref(), a.Ref()}, listRefs(t, photos))
	})

	t.Run("delete_tail", func(t *testing.T) {
		require.NoError(t, photos.Delete(a))
		assert.Equal(t, []store.NodeRef{c.Ref()}, listRefs(t, photos))
	})

	t.Run("counter_tracks_deletes", func(t *testing.T) {
		size, err := photos.Size()
		require.NoError(t, err)
		assert.EqualValues(t, 1, size)
	})

	t.Run("delete_last_item_empties_list", func(t *testing.T) {
		require.NoError(t, photos.Delete(c))
		head, err := photos.Head()
		require.NoError(t, err)
		assert.Nil(t, head)
		size, err := photos.Size()
		require.NoError(t, err)
		assert.Zero(t, size)
	})

	t.Run("delete_non_member_fails", func(t *testing.T) {
		outsider, err := g.Create(photo)
		require.NoError(t, err)
		err = photos.Delete(outsider)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

// TestListDeleteForeignChain tests that a view refuses to unlink items
// that belong to another owner's list of the same schema, and leaves
// both lists untouched when it does.
func TestListDeleteForeignChain(t *testing.T) {
	inbox := graphom.NewModel("Inbox")
	memo := graphom.NewModel("Memo")
	require.NoError(t, inbox.Relationships(
		rel.NewList("memos").Counter(),
	))

	g := newTestGraph()
	in1, err := g.Create(inbox)
	require.NoError(t, err)
	in2, err := g.Create(inbox)
	require.NoError(t, err)
	memos1, err := in1.List("memos")
	require.NoError(t, err)
	memos2, err := in2.List("memos")
	require.NoError(t, err)

	mine := pushN(t, g, memos1, memo, 1)
	theirs := pushN(t, g, memos2, memo, 2)
	// in2's list order is theirs[1], theirs[0].

	t.Run("interior_of_other_list", func(t *testing.T) {
		err := memos1.Delete(theirs[0])
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("head_of_other_list", func(t *testing.T) {
		err := memos1.Delete(theirs[1])
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("both_lists_unchanged", func(t *testing.T) {
		assert.Equal(t, []store.NodeRef{mine[0].Ref()}, listRefs(t, memos1))
		assert.Equal(t, []store.NodeRef{theirs[1].Ref(), theirs[0].Ref()}, listRefs(t, memos2))

		size1, err := memos1.Size()
		require.NoError(t, err)
		assert.EqualValues(t, 1, size1)
		size2, err := memos2.Size()
		require.NoError(t, err)
		assert.EqualValues(t, 2, size2)
	})

	t.Run("own_member_still_deletable", func(t *testing.T) {
		require.NoError(t, memos2.Delete(theirs[0]))
		assert.Equal(t, []store.NodeRef{theirs[1].Ref()}, listRefs(t, memos2))
	})
}

// TestListWithoutCounter tests that size requires a declared counter.
func TestListWithoutCounter(t *testing.T) {
	queue := graphom.NewModel("JobQueue")
	job := graphom.NewModel("Job")
	require.NoError(t, queue.Relationships(
		rel.NewList("jobs"),
	))

	g := newTestGraph()
	q, err := g.Create(queue)
	require.NoError(t, err)
	jobs, err := q.List("jobs")
	require.NoError(t, err)

	pushN(t, g, jobs, job, 2)

	_, err = jobs.Size()
	assert.True(t, graphom.IsCounterNotEnabled(err))

	// Traversal still works without a counter.
	assert.Len(t, listRefs(t, jobs), 2)
}

// TestListEachRestartable tests that every range starts a fresh walk
// from the current head.
func TestListEachRestartable(t *testing.T) {
	feed := graphom.NewModel("Feed")
	entry := graphom.NewModel("Entry")
	require.NoError(t, feed.Relationships(
		rel.NewList("entries").Counter(),
	))

	g := newTestGraph()
	f, err := g.Create(feed)
	require.NoError(t, err)
	entries, err := f.List("entries")
	require.NoError(t, err)

	pushN(t, g, entries, entry, 2)
	seq := entries.Each()

	assert.Len(t, listRefs(t, entries), 2)

	n, err := g.Create(entry)
	require.NoError(t, err)
	require.NoError(t, entries.PushFront(n))

	// The same sequence value observes the new head on re-range.
	var got []store.NodeRef
	for item, err := range seq {
		require.NoError(t, err)
		got = append(got, item.Ref())
	}
	require.Len(t, got, 3)
	assert.Equal(t, n.Ref(), got[0])
}
