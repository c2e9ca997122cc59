package store

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreWithGraph(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed())

	for _, v := range []string{"e", "d", "c", "b", "a"} {
		require.NoError(t, g.AddVertex(v))
	}
	require.NoError(t, g.AddEdge("e", "c"))
	require.NoError(t, g.AddEdge("e", "d"))
	require.NoError(t, g.AddEdge("c", "a"))
	require.ErrorIs(t, g.AddEdge("e", "c"), graph.ErrEdgeAlreadyExists)

	vertices, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, vertices)

	edges, err := s.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, "c", edges[0].Target)
	assert.Equal(t, "d", edges[1].Target)
	assert.Equal(t, "a", edges[2].Target)

	adjacency, err := g.AdjacencyMap()
	require.NoError(t, err)
	assert.Len(t, adjacency["e"], 2)
	assert.Empty(t, adjacency["b"])

	predecessors, err := g.PredecessorMap()
	require.NoError(t, err)
	assert.Contains(t, predecessors["a"], "c")

	assert.Equal(t, 0, s.Rank("e"))
	assert.Equal(t, 4, s.Rank("a"))
	assert.Equal(t, -1, s.Rank("missing"))
}

func TestMemoryStoreRemoveVertex(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore[string, string]()
	require.NoError(t, s.AddVertex("a", "a", graph.VertexProperties{}))
	require.NoError(t, s.AddVertex("b", "b", graph.VertexProperties{}))
	require.ErrorIs(t, s.AddVertex("a", "a", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)
	require.NoError(t, s.AddEdge("a", "b", graph.Edge[string]{Source: "a", Target: "b"}))

	assert.ErrorIs(t, s.RemoveVertex("a"), graph.ErrVertexHasEdges)
	require.NoError(t, s.RemoveEdge("a", "b"))
	_, err := s.Edge("a", "b")
	assert.ErrorIs(t, err, graph.ErrEdgeNotFound)

	require.NoError(t, s.RemoveVertex("a"))
	assert.ErrorIs(t, s.RemoveVertex("a"), graph.ErrVertexNotFound)

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
