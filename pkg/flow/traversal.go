package flow

import (
	"github.com/askiada/go-pipeline-flow/pkg/flow/traversal"
)

// GetBranchNodes returns the seeds and every node upstream or downstream of them.
func (c *Controller) GetBranchNodes(pipelineID string, ids []string) ([]string, error) {
	g, err := c.graph(pipelineID)
	if err != nil {
		return nil, err
	}
	return g.Branch(ids)
}

// GetUpstreamNodes returns the seeds and every node reaching them.
func (c *Controller) GetUpstreamNodes(pipelineID string, ids []string) ([]string, error) {
	g, err := c.graph(pipelineID)
	if err != nil {
		return nil, err
	}
	return g.Upstream(ids)
}

// GetDownstreamNodes returns the seeds and every node reachable from them.
func (c *Controller) GetDownstreamNodes(pipelineID string, ids []string) ([]string, error) {
	g, err := c.graph(pipelineID)
	if err != nil {
		return nil, err
	}
	return g.Downstream(ids)
}

func (c *Controller) graph(pipelineID string) (*traversal.Graph, error) {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return nil, err
	}
	p, err := c.store.Pipeline(pid)
	if err != nil {
		return nil, err
	}
	return traversal.New(p)
}
