package store

import (
	"sync"

	"github.com/dominikbraun/graph"
)

// RankedStore is a graph.Store that also reports the insertion rank of its vertices.
type RankedStore[K comparable, T any] interface {
	graph.Store[K, T]
	// Rank returns the position at which k was added, or -1.
	Rank(k K) int
}

// MemoryStore keeps vertices and edges in insertion order so that listing
// them is deterministic.
type MemoryStore[K comparable, T any] struct {
	lock             sync.RWMutex
	vertices         *OrderedMap[K, T]
	vertexProperties map[K]*graph.VertexProperties
	rank             map[K]int
	nextRank         int

	// outEdges and inEdges store all outgoing and ingoing edges for all
	// vertices, keyed by the hash of the vertex at the other end.
	outEdges map[K]*OrderedMap[K, graph.Edge[K]] // source -> target
	inEdges  map[K]*OrderedMap[K, graph.Edge[K]] // target -> source
}

// NewMemoryStore creates an empty ordered store.
func NewMemoryStore[K comparable, T any]() RankedStore[K, T] {
	return &MemoryStore[K, T]{
		vertices:         NewOrderedMap[K, T](),
		vertexProperties: make(map[K]*graph.VertexProperties),
		rank:             make(map[K]int),
		outEdges:         make(map[K]*OrderedMap[K, graph.Edge[K]]),
		inEdges:          make(map[K]*OrderedMap[K, graph.Edge[K]]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.vertices.Has(k) {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices.Set(k, t)
	s.vertexProperties[k] = &p
	s.rank[k] = s.nextRank
	s.nextRank++

	return nil
}

func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.vertices.Keys(), nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.vertices.Len(), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices.Get(k)
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v, *s.vertexProperties[k], nil
}

func (s *MemoryStore[K, T]) Rank(k K) int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	r, ok := s.rank[k]
	if !ok {
		return -1
	}
	return r
}

func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.vertices.Has(k) {
		return graph.ErrVertexNotFound
	}

	if edges, ok := s.inEdges[k]; ok {
		if edges.Len() > 0 {
			return graph.ErrVertexHasEdges
		}
		delete(s.inEdges, k)
	}

	if edges, ok := s.outEdges[k]; ok {
		if edges.Len() > 0 {
			return graph.ErrVertexHasEdges
		}
		delete(s.outEdges, k)
	}

	s.vertices.Delete(k)
	delete(s.vertexProperties, k)
	delete(s.rank, k)

	return nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash]; !ok {
		s.outEdges[sourceHash] = NewOrderedMap[K, graph.Edge[K]]()
	}
	s.outEdges[sourceHash].Set(targetHash, edge)

	if _, ok := s.inEdges[targetHash]; !ok {
		s.inEdges[targetHash] = NewOrderedMap[K, graph.Edge[K]]()
	}
	s.inEdges[targetHash].Set(sourceHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	if _, err := s.Edge(sourceHash, targetHash); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.outEdges[sourceHash].Set(targetHash, edge)
	s.inEdges[targetHash].Set(sourceHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if edges, ok := s.inEdges[targetHash]; ok {
		edges.Delete(sourceHash)
	}
	if edges, ok := s.outEdges[sourceHash]; ok {
		edges.Delete(targetHash)
	}
	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sourceEdges, ok := s.outEdges[sourceHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	edge, ok := sourceEdges.Get(targetHash)
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges grouped by source vertex, sources in insertion order.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0)
	s.vertices.Each(func(k K, _ T) bool {
		if edges, ok := s.outEdges[k]; ok {
			res = append(res, edges.Values()...)
		}
		return true
	})
	return res, nil
}

var _ graph.Store[string, string] = (*MemoryStore[string, string])(nil)
