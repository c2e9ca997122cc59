package flow

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
	"github.com/askiada/go-pipeline-flow/pkg/flow/objectmodel"
)

// An empty pipelineID in the methods below designates the displayed pipeline.

func (c *Controller) SetNodeProperties(pipelineID, nodeID string, props model.NodeProperties) error {
	return c.updateNode("setNodeProperties", pipelineID, nodeID, props.Apply)
}

// SetNodeInputPorts replaces the input ports of a node. A port still used by
// a link or a binding node cannot be removed.
func (c *Controller) SetNodeInputPorts(pipelineID, nodeID string, ports []*model.Port) error {
	return c.updateNode("setNodeInputPorts", pipelineID, nodeID, func(n *model.Node) {
		n.Inputs = model.ClonePorts(ports)
	})
}

// SetNodeOutputPorts replaces the output ports of a node.
func (c *Controller) SetNodeOutputPorts(pipelineID, nodeID string, ports []*model.Port) error {
	return c.updateNode("setNodeOutputPorts", pipelineID, nodeID, func(n *model.Node) {
		n.Outputs = model.ClonePorts(ports)
	})
}

func (c *Controller) updateNode(label, pipelineID, nodeID string, fn func(n *model.Node)) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	n, err := c.store.Node(pid, nodeID)
	if err != nil {
		return err
	}
	fn(n)
	return c.push(command.NewMacro(label, &replaceNodes{store: c.store, pipelineID: pid, next: []*model.Node{n}}))
}

func (c *Controller) SetNodesClassName(pipelineID string, nodeIDs []string, className string) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	next := make([]*model.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n, err := c.store.Node(pid, id)
		if err != nil {
			return err
		}
		n.ClassName = className
		next = append(next, n)
	}
	return c.push(command.NewMacro("setNodesClassName", &replaceNodes{store: c.store, pipelineID: pid, next: next}))
}

func (c *Controller) SetLinkProperties(pipelineID, linkID string, props model.LinkProperties) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	l, err := c.store.Link(pid, linkID)
	if err != nil {
		return err
	}
	props.Apply(l)
	return c.push(command.NewMacro("setLinkProperties", &replaceLinks{store: c.store, pipelineID: pid, next: []*model.Link{l}}))
}

func (c *Controller) SetLinksClassName(pipelineID string, linkIDs []string, className string) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	next := make([]*model.Link, 0, len(linkIDs))
	for _, id := range linkIDs {
		l, err := c.store.Link(pid, id)
		if err != nil {
			return err
		}
		l.ClassName = className
		next = append(next, l)
	}
	return c.push(command.NewMacro("setLinksClassName", &replaceLinks{store: c.store, pipelineID: pid, next: next}))
}

func (c *Controller) SetCommentProperties(pipelineID, commentID string, props model.CommentProperties) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	cm, err := c.store.Comment(pid, commentID)
	if err != nil {
		return err
	}
	props.Apply(cm)
	return c.push(command.NewMacro("setCommentProperties", &replaceComments{store: c.store, pipelineID: pid, next: []*model.Comment{cm}}))
}

func (c *Controller) SetCommentsClassName(pipelineID string, commentIDs []string, className string) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	next := make([]*model.Comment, 0, len(commentIDs))
	for _, id := range commentIDs {
		cm, err := c.store.Comment(pid, id)
		if err != nil {
			return err
		}
		cm.ClassName = className
		next = append(next, cm)
	}
	return c.push(command.NewMacro("setCommentsClassName", &replaceComments{store: c.store, pipelineID: pid, next: next}))
}

// CreateNodeLink adds a link. A missing id is generated and a missing type
// defaults to a node link. The link as added is returned.
func (c *Controller) CreateNodeLink(pipelineID string, l *model.Link) (*model.Link, error) {
	if l == nil {
		return nil, errors.Wrap(model.ErrSchema, "no link")
	}
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return nil, err
	}
	nl := l.Clone()
	if nl.ID == "" {
		nl.ID = c.newID()
	}
	if nl.Type == "" {
		nl.Type = model.NodeLinkType
	}
	if err := c.push(command.NewMacro("createLink", &addLink{store: c.store, pipelineID: pid, link: nl})); err != nil {
		return nil, err
	}
	return nl.Clone(), nil
}

// CreateComment adds a comment, generating its id when missing.
func (c *Controller) CreateComment(pipelineID string, cm *model.Comment) (*model.Comment, error) {
	if cm == nil {
		return nil, errors.Wrap(model.ErrSchema, "no comment")
	}
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return nil, err
	}
	nc := cm.Clone()
	if nc.ID == "" {
		nc.ID = c.newID()
	}
	if err := c.push(command.NewMacro("createComment", &addComment{store: c.store, pipelineID: pid, comment: nc})); err != nil {
		return nil, err
	}
	return nc.Clone(), nil
}

// CreateNode instantiates a palette template at the given position without
// adding it. The node and the sub-pipelines of a supernode template get
// fresh ids. Use CreateNodeCommand to add the result.
func (c *Controller) CreateNode(template *model.NodeTemplate, x, y float64) (*model.NodeTemplate, error) {
	if template == nil {
		return nil, errors.Wrap(model.ErrReference, "no node template")
	}
	r := newRemapper(c, template.SubPipelines)
	res := &model.NodeTemplate{Node: *r.node(&template.Node)}
	res.XPos, res.YPos = x, y
	res.SubPipelines = r.pipelines("", []*model.Node{&template.Node}, template.SubPipelines)
	return res, nil
}

// CreateNodeCommand adds a node built by CreateNode, with its sub-pipelines.
func (c *Controller) CreateNodeCommand(pipelineID string, nt *model.NodeTemplate) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	if nt == nil {
		return errors.Wrap(model.ErrReference, "no node")
	}
	var cmds []command.Command
	if len(nt.SubPipelines) > 0 {
		subs := make([]*model.Pipeline, 0, len(nt.SubPipelines))
		for _, p := range nt.SubPipelines {
			cp := p.Clone()
			if cp.ParentPipelineID == "" && slices.Contains(nt.SubPipelineIDs, cp.ID) {
				cp.ParentPipelineID = pid
			}
			subs = append(subs, cp)
		}
		cmds = append(cmds, &addPipelines{store: c.store, pipelines: subs})
	}
	node := nt.Node
	cmds = append(cmds, &addNode{store: c.store, pipelineID: pid, node: node.Clone()})
	return c.push(command.NewMacro("createNode", cmds...))
}

// DeleteSelectedObjects deletes the selection of the displayed pipeline.
func (c *Controller) DeleteSelectedObjects() error {
	ids := c.GetSelectedObjectIDs()
	if len(ids) == 0 {
		return errors.Wrap(model.ErrState, "nothing selected")
	}
	return c.DeleteObjects("", ids)
}

// DeleteObjects deletes nodes, comments and links of a pipeline as one
// command. Links touching deleted nodes go with them, as do the sub-pipelines
// only referenced by deleted supernodes.
func (c *Controller) DeleteObjects(pipelineID string, ids []string) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	cmds, err := c.deleteCommands(pid, ids)
	if err != nil {
		return err
	}
	return c.push(command.NewMacro("deleteObjects", cmds...))
}

func (c *Controller) deleteCommands(pid string, ids []string) ([]command.Command, error) {
	var links, comments, nodes []string
	deleted := make(map[string]bool)
	for _, id := range ids {
		if deleted[id] {
			continue
		}
		kind, err := c.store.Kind(pid, id)
		if err != nil {
			return nil, err
		}
		deleted[id] = true
		switch kind {
		case objectmodel.LinkObject:
			links = append(links, id)
		case objectmodel.CommentObject:
			comments = append(comments, id)
		case objectmodel.NodeObject:
			nodes = append(nodes, id)
		}
	}

	p, err := c.store.Pipeline(pid)
	if err != nil {
		return nil, err
	}
	var cmds []command.Command
	for _, id := range links {
		if l := p.Link(id); deleted[l.SrcNodeID] || deleted[l.TrgNodeID] {
			// Removed with its endpoint.
			continue
		}
		cmds = append(cmds, &deleteLink{store: c.store, pipelineID: pid, linkID: id})
	}
	for _, id := range comments {
		cmds = append(cmds, &deleteComment{store: c.store, pipelineID: pid, commentID: id})
	}
	for _, id := range nodes {
		cmds = append(cmds, &deleteNode{store: c.store, pipelineID: pid, nodeID: id})
	}

	removed := c.privatePipelines(pid, nodes, deleted)
	for _, sub := range removed {
		cmds = append(cmds, &removePipeline{store: c.store, pipelineID: sub})
	}
	if cmd := c.dropRemovedCrumbs(removed); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// privatePipelines returns the sub-pipelines, nested ones included, that no
// supernode would reference once nodeIDs are deleted from pid.
func (c *Controller) privatePipelines(pid string, nodeIDs []string, deleted map[string]bool) []string {
	var res []string
	removed := make(map[string]bool)
	private := func(sub string) bool {
		for _, ref := range c.store.SupernodesReferencing(sub) {
			if removed[ref.PipelineID] || (ref.PipelineID == pid && deleted[ref.NodeID]) {
				continue
			}
			return false
		}
		return true
	}
	var visit func(subs []string)
	visit = func(subs []string) {
		for _, sub := range subs {
			if removed[sub] || !c.store.HasPipeline(sub) || !private(sub) {
				continue
			}
			removed[sub] = true
			res = append(res, sub)
			p, err := c.store.Pipeline(sub)
			if err != nil {
				continue
			}
			for _, n := range p.Nodes {
				visit(n.SubPipelineIDs)
			}
		}
	}
	for _, id := range nodeIDs {
		n, err := c.store.Node(pid, id)
		if err != nil || !n.IsSupernode() {
			continue
		}
		visit(n.SubPipelineIDs)
	}
	return res
}

// dropRemovedCrumbs truncates the breadcrumbs above the first removed pipeline.
func (c *Controller) dropRemovedCrumbs(removed []string) command.Command {
	if len(removed) == 0 {
		return nil
	}
	gone := make(map[string]bool, len(removed))
	for _, id := range removed {
		gone[id] = true
	}
	prev := c.crumbs.All()
	for i, b := range prev {
		if gone[b.PipelineID] {
			return &setBreadcrumbs{ctrl: c, prev: prev, next: prev[:i]}
		}
	}
	return nil
}
