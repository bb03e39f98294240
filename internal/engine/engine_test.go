package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestCreateAndSearch(t *testing.T) {
	e := newTestEngine(t)

	ids, err := e.Create("default", "notes", []Document{
		{Content: "Go channels are typed conduits", Metadata: map[string]string{"source": "u1"}},
		{Content: "Rust ownership rules"},
	}, false)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	hits, err := e.Search("default", "notes", "channels conduits", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, ids[0], hits[0].ID)
	require.Equal(t, map[string]string{"source": "u1"}, hits[0].Metadata)
	require.Greater(t, hits[0].Score, 0.0)
}

func TestCreate_Conflict(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("default", "notes", []Document{{Content: "a"}}, false)
	require.NoError(t, err)

	_, err = e.Create("default", "notes", []Document{{Content: "b"}}, false)
	require.ErrorIs(t, err, ErrCollectionExists)
}

func TestCreate_ForceReplaces(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("default", "notes", []Document{{Content: "apples"}}, true)
	require.NoError(t, err)
	_, err = e.Create("default", "notes", []Document{{Content: "bananas"}}, true)
	require.NoError(t, err)

	hits, err := e.Search("default", "notes", "apples", 5)
	require.NoError(t, err)
	require.Empty(t, hits)

	hits, err = e.Search("default", "notes", "bananas", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestCreate_InvalidDocuments(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("default", "notes", nil, false)
	require.ErrorIs(t, err, ErrInvalidDocuments)

	_, err = e.Create("default", "notes", []Document{{Content: ""}}, false)
	require.ErrorIs(t, err, ErrInvalidDocuments)
	require.False(t, e.Exists("default", "notes"))
}

func TestStoresAreIsolated(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("a", "notes", []Document{{Content: "x"}}, false)
	require.NoError(t, err)

	require.True(t, e.Exists("a", "notes"))
	require.False(t, e.Exists("b", "notes"))
	require.Empty(t, e.List("b"))
}

func TestList_Sorted(t *testing.T) {
	e := newTestEngine(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := e.Create("default", name, []Document{{Content: "x"}}, false)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"alpha", "mid", "zeta"}, e.List("default"))
}

func TestAdd(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("default", "notes", []Document{{Content: "first entry"}}, false)
	require.NoError(t, err)

	hits, err := e.Search("default", "notes", "giraffe", 5)
	require.NoError(t, err)
	require.Empty(t, hits)

	ids, err := e.Add("default", "notes", []Document{{Content: "a giraffe appears"}})
	require.NoError(t, err)

	hits, err = e.Search("default", "notes", "giraffe", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, ids[0], hits[0].ID)

	_, err = e.Add("default", "missing", []Document{{Content: "x"}})
	require.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestDeleteDocuments_AllOrNothing(t *testing.T) {
	e := newTestEngine(t)
	ids, err := e.Create("default", "notes", []Document{
		{Content: "red apple"},
		{Content: "green apple"},
	}, false)
	require.NoError(t, err)

	err = e.DeleteDocuments("default", "notes", []string{ids[0], "unknown"})
	require.ErrorIs(t, err, ErrDocumentNotFound)

	hits, err := e.Search("default", "notes", "apple", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	require.NoError(t, e.DeleteDocuments("default", "notes", []string{ids[0]}))
	hits, err = e.Search("default", "notes", "apple", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, ids[1], hits[0].ID)
}

func TestSearch_RespectsK(t *testing.T) {
	e := newTestEngine(t)
	docs := make([]Document, 5)
	for i := range docs {
		docs[i] = Document{Content: "shared term"}
	}
	_, err := e.Create("default", "notes", docs, false)
	require.NoError(t, err)

	hits, err := e.Search("default", "notes", "shared", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
}

func TestDrop(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Create("default", "notes", []Document{{Content: "x"}}, false)
	require.NoError(t, err)

	require.NoError(t, e.Drop("default", "notes"))
	require.False(t, e.Exists("default", "notes"))
	require.ErrorIs(t, e.Drop("default", "notes"), ErrCollectionNotFound)

	_, err = e.Search("default", "notes", "x", 1)
	require.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestClose(t *testing.T) {
	e := New()
	_, err := e.Create("default", "notes", []Document{{Content: "x"}}, false)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	_, err = e.Create("default", "other", []Document{{Content: "x"}}, false)
	require.ErrorIs(t, err, ErrClosed)
}
