package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// NodeRemoval is what DeleteNode took out of a pipeline.
type NodeRemoval struct {
	PipelineID string
	Node       Indexed[*model.Node]
	Links      []Indexed[*model.Link]
}

// AddNode appends n to the pipeline.
func (s *Store) AddNode(pipelineID string, n *model.Node) error {
	return s.InsertNode(pipelineID, -1, n)
}

// InsertNode puts n at position idx of the pipeline; a negative idx appends.
func (s *Store) InsertNode(pipelineID string, idx int, n *model.Node) error {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return err
	}
	if err := s.checkNewNode(p, n); err != nil {
		return err
	}
	if idx < 0 {
		p.nodes.Set(n.ID, n.Clone())
	} else {
		p.nodes.Insert(idx, n.ID, n.Clone())
	}
	s.markSeen(n.ID)
	s.mutated()
	return nil
}

func (s *Store) checkNewNode(p *pipeline, n *model.Node) error {
	if n == nil {
		return errors.Wrap(model.ErrSchema, "node is nil")
	}
	if err := model.ValidateStruct(n); err != nil {
		return err
	}
	if p.nodes.Has(n.ID) {
		return errors.Wrapf(model.ErrReference, "node %s already exists in pipeline %s", n.ID, p.id)
	}
	if err := checkPorts(n); err != nil {
		return errors.Wrap(model.ErrSchema, err.Error())
	}
	return s.checkNodeRefs(p, n)
}

// checkNodeRefs verifies the sub-pipeline references of a supernode and the
// ports of a binding node against its owner.
func (s *Store) checkNodeRefs(p *pipeline, n *model.Node) error {
	if n.IsSupernode() {
		if len(n.SubPipelineIDs) == 0 && !n.IsExternal() {
			return errors.Wrapf(model.ErrReference, "supernode %s has no sub-pipeline", n.ID)
		}
		for _, subID := range n.SubPipelineIDs {
			sub, ok := s.pipelines.Get(subID)
			if !ok {
				if n.IsExternal() {
					continue
				}
				return errors.Wrapf(model.ErrReference, "supernode %s references missing pipeline %s", n.ID, subID)
			}
			if err := checkBindings(n, sub); err != nil {
				return errors.Wrap(model.ErrReference, err.Error())
			}
		}
	}
	if n.IsBinding() {
		if sn := s.owner(p); sn != nil {
			if err := bindingPortsMatch(sn, n); err != nil {
				return errors.Wrap(model.ErrReference, err.Error())
			}
		}
	}
	return nil
}

// DeleteNode removes a node and every link touching it.
func (s *Store) DeleteNode(pipelineID, nodeID string) (*NodeRemoval, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	n, err := p.node(nodeID)
	if err != nil {
		return nil, err
	}

	rem := &NodeRemoval{PipelineID: pipelineID}
	rem.Links = p.removeLinks(p.linksTouching(nodeID))
	rem.Node = Indexed[*model.Node]{Index: p.nodes.Delete(nodeID), Value: n.Clone()}
	s.mutated()

	return rem, nil
}

// RestoreNode puts back what DeleteNode removed.
func (s *Store) RestoreNode(rem *NodeRemoval) error {
	p, err := s.pipeline(rem.PipelineID)
	if err != nil {
		return err
	}
	if p.nodes.Has(rem.Node.Value.ID) {
		return errors.Wrapf(model.ErrReference, "node %s already exists in pipeline %s", rem.Node.Value.ID, p.id)
	}
	for _, l := range rem.Links {
		for _, end := range []string{l.Value.SrcNodeID, l.Value.TrgNodeID} {
			if end != rem.Node.Value.ID && !p.nodes.Has(end) && !p.comments.Has(end) {
				return errors.Wrapf(model.ErrReference, "link %s endpoint %s not found in pipeline %s", l.Value.ID, end, p.id)
			}
		}
	}

	p.nodes.Insert(rem.Node.Index, rem.Node.Value.ID, rem.Node.Value.Clone())
	p.restoreLinks(rem.Links)
	s.mutated()

	return nil
}

// ReplaceNodes swaps whole nodes in place and returns the previous versions.
// Every replacement is checked before any is applied.
func (s *Store) ReplaceNodes(pipelineID string, nodes []*model.Node) ([]*model.Node, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	prev := make([]*model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return nil, errors.Wrap(model.ErrSchema, "node is nil")
		}
		old, err := p.node(n.ID)
		if err != nil {
			return nil, err
		}
		if err := s.checkReplacement(p, n); err != nil {
			return nil, err
		}
		prev = append(prev, old.Clone())
	}

	for _, n := range nodes {
		p.nodes.Set(n.ID, n.Clone())
	}
	s.mutated()

	return prev, nil
}

func (s *Store) checkReplacement(p *pipeline, n *model.Node) error {
	if err := model.ValidateStruct(n); err != nil {
		return err
	}
	if err := checkPorts(n); err != nil {
		return errors.Wrap(model.ErrSchema, err.Error())
	}
	for _, l := range p.linksTouching(n.ID) {
		if l.Type == model.CommentLinkType {
			continue
		}
		if l.SrcNodeID == n.ID && l.SrcNodePortID != "" && n.OutputPort(l.SrcNodePortID) == nil {
			return errors.Wrapf(model.ErrReference, "link %s uses output port %s of node %s", l.ID, l.SrcNodePortID, n.ID)
		}
		if l.TrgNodeID == n.ID && l.TrgNodePortID != "" && n.InputPort(l.TrgNodePortID) == nil {
			return errors.Wrapf(model.ErrReference, "link %s uses input port %s of node %s", l.ID, l.TrgNodePortID, n.ID)
		}
	}
	return s.checkNodeRefs(p, n)
}

// SetNodeProperties applies props to a node and returns the previous node.
func (s *Store) SetNodeProperties(pipelineID, nodeID string, props model.NodeProperties) (*model.Node, error) {
	return s.updateNode(pipelineID, nodeID, props.Apply)
}

// SetNodeInputPorts replaces the input ports of a node.
func (s *Store) SetNodeInputPorts(pipelineID, nodeID string, ports []*model.Port) (*model.Node, error) {
	return s.updateNode(pipelineID, nodeID, func(n *model.Node) {
		n.Inputs = model.ClonePorts(ports)
	})
}

// SetNodeOutputPorts replaces the output ports of a node.
func (s *Store) SetNodeOutputPorts(pipelineID, nodeID string, ports []*model.Port) (*model.Node, error) {
	return s.updateNode(pipelineID, nodeID, func(n *model.Node) {
		n.Outputs = model.ClonePorts(ports)
	})
}

// SetNodesClassName sets the class name of several nodes at once.
func (s *Store) SetNodesClassName(pipelineID string, nodeIDs []string, className string) ([]*model.Node, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	updated := make([]*model.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n, err := p.node(id)
		if err != nil {
			return nil, err
		}
		c := n.Clone()
		c.ClassName = className
		updated = append(updated, c)
	}
	return s.ReplaceNodes(pipelineID, updated)
}

func (s *Store) updateNode(pipelineID, nodeID string, fn func(n *model.Node)) (*model.Node, error) {
	p, err := s.pipeline(pipelineID)
	if err != nil {
		return nil, err
	}
	n, err := p.node(nodeID)
	if err != nil {
		return nil, err
	}
	c := n.Clone()
	fn(c)
	prev, err := s.ReplaceNodes(pipelineID, []*model.Node{c})
	if err != nil {
		return nil, err
	}
	return prev[0], nil
}
