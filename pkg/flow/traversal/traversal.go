// Package traversal answers reachability queries over the node links of one pipeline.
package traversal

import (
	"sort"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/internal/store"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// Graph is the link graph of a single pipeline. Supernodes are plain
// vertices: their sub-pipelines are not entered.
type Graph struct {
	store        store.RankedStore[string, *model.Node]
	adjacency    map[string]map[string]graph.Edge[string]
	predecessors map[string]map[string]graph.Edge[string]
}

func nodeHash(n *model.Node) string {
	return n.ID
}

// New builds the graph of p. Only node links are followed.
func New(p *model.Pipeline) (*Graph, error) {
	s := store.NewMemoryStore[string, *model.Node]()
	g := graph.NewWithStore(nodeHash, s, graph.Directed())

	for _, n := range p.Nodes {
		if err := g.AddVertex(n); err != nil {
			return nil, errors.Wrapf(model.ErrSchema, "node %s: %v", n.ID, err)
		}
	}
	for _, l := range p.Links {
		if l.Type != model.NodeLinkType {
			continue
		}
		err := g.AddEdge(l.SrcNodeID, l.TrgNodeID, graph.EdgeAttribute("link", l.ID))
		switch {
		case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
		case errors.Is(err, graph.ErrVertexNotFound):
			return nil, errors.Wrapf(model.ErrReference, "link %s in pipeline %s", l.ID, p.ID)
		default:
			return nil, errors.Wrapf(err, "link %s", l.ID)
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get adjacency map")
	}
	predecessors, err := g.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}

	return &Graph{
		store:        s,
		adjacency:    adjacency,
		predecessors: predecessors,
	}, nil
}

// Upstream returns the seeds followed by every node that reaches one of them.
func (g *Graph) Upstream(seeds []string) ([]string, error) {
	start, err := g.seeds(seeds)
	if err != nil {
		return nil, err
	}
	return append(start, g.walk(start, g.predecessors)...), nil
}

// Downstream returns the seeds followed by every node reachable from them.
func (g *Graph) Downstream(seeds []string) ([]string, error) {
	start, err := g.seeds(seeds)
	if err != nil {
		return nil, err
	}
	return append(start, g.walk(start, g.adjacency)...), nil
}

// Branch returns the seeds, then their upstream nodes, then their downstream nodes.
func (g *Graph) Branch(seeds []string) ([]string, error) {
	start, err := g.seeds(seeds)
	if err != nil {
		return nil, err
	}
	res := start
	seen := make(map[string]bool, len(start))
	for _, id := range start {
		seen[id] = true
	}
	for _, ids := range [][]string{g.walk(start, g.predecessors), g.walk(start, g.adjacency)} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				res = append(res, id)
			}
		}
	}
	return res, nil
}

// seeds deduplicates ids and orders them by node position.
func (g *Graph) seeds(ids []string) ([]string, error) {
	res := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if g.store.Rank(id) < 0 {
			return nil, errors.Wrapf(model.ErrReference, "node %s", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	g.sortByRank(res)
	return res, nil
}

// walk runs a breadth-first search from start and returns the discovered
// nodes, start excluded. Neighbours are visited in node order.
func (g *Graph) walk(start []string, edges map[string]map[string]graph.Edge[string]) []string {
	visited := make(map[string]bool, len(start))
	for _, id := range start {
		visited[id] = true
	}
	queue := append([]string(nil), start...)
	var res []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next := make([]string, 0, len(edges[cur]))
		for id := range edges[cur] {
			if !visited[id] {
				next = append(next, id)
			}
		}
		g.sortByRank(next)
		for _, id := range next {
			visited[id] = true
			res = append(res, id)
			queue = append(queue, id)
		}
	}
	return res
}

func (g *Graph) sortByRank(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		return g.store.Rank(ids[i]) < g.store.Rank(ids[j])
	})
}

// Upstream builds the graph of p and returns the upstream nodes of seeds.
func Upstream(p *model.Pipeline, seeds []string) ([]string, error) {
	g, err := New(p)
	if err != nil {
		return nil, err
	}
	return g.Upstream(seeds)
}

// Downstream builds the graph of p and returns the downstream nodes of seeds.
func Downstream(p *model.Pipeline, seeds []string) ([]string, error) {
	g, err := New(p)
	if err != nil {
		return nil, err
	}
	return g.Downstream(seeds)
}

// Branch builds the graph of p and returns the branch of seeds.
func Branch(p *model.Pipeline, seeds []string) ([]string, error) {
	g, err := New(p)
	if err != nil {
		return nil, err
	}
	return g.Branch(seeds)
}
