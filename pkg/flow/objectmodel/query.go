package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// NodeRef locates a node in the document.
type NodeRef struct {
	PipelineID string
	NodeID     string
}

// HasPipeline reports whether the pipeline is loaded.
func (s *Store) HasPipeline(id string) bool {
	return s.pipelines.Has(id)
}

// PipelineIDs returns the loaded pipeline ids in load order.
func (s *Store) PipelineIDs() []string {
	return s.pipelines.Keys()
}

// Pipeline returns a copy of the pipeline, including temporary decorations.
func (s *Store) Pipeline(id string) (*model.Pipeline, error) {
	p, err := s.pipeline(id)
	if err != nil {
		return nil, err
	}
	return p.export(false), nil
}

// ParentPipelineID returns the pipeline holding the supernode that owns id.
// It is empty for the primary pipeline.
func (s *Store) ParentPipelineID(id string) (string, error) {
	p, err := s.pipeline(id)
	if err != nil {
		return "", err
	}
	return p.parentPipelineID, nil
}

// Node returns a copy of a node.
func (s *Store) Node(pipelineID, nodeID string) (*model.Node, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	n, err := p.node(nodeID)
	if err != nil {
		return nil, err
	}
	return n.Clone(), nil
}

// Link returns a copy of a link.
func (s *Store) Link(pipelineID, linkID string) (*model.Link, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	l, err := p.link(linkID)
	if err != nil {
		return nil, err
	}
	return l.Clone(), nil
}

// Comment returns a copy of a comment.
func (s *Store) Comment(pipelineID, commentID string) (*model.Comment, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	c, err := p.comment(commentID)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// ObjectKind tells which arena of a pipeline holds an id.
type ObjectKind int

const (
	UnknownObject ObjectKind = iota
	NodeObject
	LinkObject
	CommentObject
)

// Kind returns the kind of object id designates in the pipeline.
func (s *Store) Kind(pipelineID, id string) (ObjectKind, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return UnknownObject, err
	}
	switch {
	case p.nodes.Has(id):
		return NodeObject, nil
	case p.comments.Has(id):
		return CommentObject, nil
	case p.links.Has(id):
		return LinkObject, nil
	}
	return UnknownObject, errors.Wrapf(model.ErrReference, "object %s not found in pipeline %s", id, pipelineID)
}

// SupernodesReferencing lists the supernodes whose sub-pipelines include pipelineID.
func (s *Store) SupernodesReferencing(pipelineID string) []NodeRef {
	var res []NodeRef
	s.pipelines.Each(func(pid string, p *pipeline) bool {
		p.nodes.Each(func(_ string, n *model.Node) bool {
			if !n.IsSupernode() {
				return true
			}
			for _, sub := range n.SubPipelineIDs {
				if sub == pipelineID {
					res = append(res, NodeRef{PipelineID: pid, NodeID: n.ID})
					break
				}
			}
			return true
		})
		return true
	})
	return res
}

// owner returns the supernode owning p, if it is loaded.
func (s *Store) owner(p *pipeline) *model.Node {
	if p.parentPipelineID == "" {
		return nil
	}
	parent, ok := s.pipelines.Get(p.parentPipelineID)
	if !ok {
		return nil
	}
	var res *model.Node
	parent.nodes.Each(func(_ string, n *model.Node) bool {
		for _, sub := range n.SubPipelineIDs {
			if sub == p.id {
				res = n
				return false
			}
		}
		return true
	})
	return res
}
