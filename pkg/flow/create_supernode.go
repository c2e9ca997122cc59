package flow

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

const (
	supernodeLabel = "Supernode"
	bindingGap     = 150
)

// CreateSuperNode moves the selected nodes and comments into a new
// sub-pipeline owned by a new supernode. Links crossing the selection are
// routed through supernode ports and binding nodes.
func (c *Controller) CreateSuperNode() error {
	return c.createSuperNode(false)
}

// CreateSuperNodeExternal is CreateSuperNode with the new sub-pipeline stored
// by the host under the URL it supplies.
func (c *Controller) CreateSuperNodeExternal() error {
	return c.createSuperNode(true)
}

type boundaryPort struct {
	port    *model.Port
	binding *model.Node
}

//nolint:gocyclo,cyclop // one pass over the links of the pipeline
func (c *Controller) createSuperNode(external bool) error {
	p, nodes, comments, err := c.selectedObjects()
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return errors.Wrap(model.ErrState, "no node selected")
	}
	pid := p.ID

	var url, flowID string
	if external {
		action, err := c.askHost(&EditAction{
			EditType:          EditTypeCreateSuperNodeExternal,
			PipelineID:        pid,
			SelectedObjectIDs: c.GetSelectedObjectIDs(),
		})
		if err != nil || action == nil {
			return err
		}
		if action.ExternalURL == "" {
			return errors.Wrap(model.ErrState, "host provided no external url for the new supernode")
		}
		url, flowID = action.ExternalURL, action.ExternalPipelineFlowID
	}

	inside := make(map[string]bool)
	minX, minY := nodes[0].XPos, nodes[0].YPos
	maxX := nodes[0].XPos
	for _, n := range nodes {
		inside[n.ID] = true
		minX, minY, maxX = min(minX, n.XPos), min(minY, n.YPos), max(maxX, n.XPos)
	}
	for _, cm := range comments {
		inside[cm.ID] = true
	}

	sub := &model.Pipeline{
		ID:                     c.newID(),
		ParentPipelineID:       pid,
		ExternalURL:            url,
		ExternalPipelineFlowID: flowID,
	}
	sn := &model.Node{
		ID:                     c.newID(),
		Type:                   model.SuperNodeType,
		Label:                  supernodeLabel,
		XPos:                   minX,
		YPos:                   minY,
		SubPipelineIDs:         []string{sub.ID},
		ExternalURL:            url,
		ExternalPipelineFlowID: flowID,
	}
	for _, n := range nodes {
		sub.Nodes = append(sub.Nodes, n.Clone())
	}
	for _, cm := range comments {
		sub.Comments = append(sub.Comments, cm.Clone())
	}

	var cmds, outer []command.Command
	inputs := make(map[string]*boundaryPort)
	outputs := make(map[string]*boundaryPort)
	var bindings []*model.Node
	var bindingLinks []*model.Link

	for _, l := range p.Links {
		src, trg := inside[l.SrcNodeID], inside[l.TrgNodeID]
		if !src && !trg {
			continue
		}
		cmds = append(cmds, &deleteLink{store: c.store, pipelineID: pid, linkID: l.ID})
		switch {
		case src && trg:
			sub.Links = append(sub.Links, l.Clone())
		case l.Type != model.NodeLinkType:
			// Comment and association links crossing the selection are dropped.
		case trg:
			key := l.TrgNodeID + "/" + l.TrgNodePortID
			bp, ok := inputs[key]
			if !ok {
				bp = c.newBoundaryPort(model.BindingEntryNodeType, minX-bindingGap, minY+float64(len(inputs))*bindingGap/2)
				inputs[key] = bp
				sn.Inputs = append(sn.Inputs, bp.port)
				bindings = append(bindings, bp.binding)
				bindingLinks = append(bindingLinks, &model.Link{
					ID: c.newID(), Type: model.NodeLinkType,
					SrcNodeID: bp.binding.ID, SrcNodePortID: bp.port.ID,
					TrgNodeID: l.TrgNodeID, TrgNodePortID: l.TrgNodePortID,
				})
			}
			outer = append(outer, &addLink{store: c.store, pipelineID: pid, link: &model.Link{
				ID: c.newID(), Type: model.NodeLinkType,
				SrcNodeID: l.SrcNodeID, SrcNodePortID: l.SrcNodePortID,
				TrgNodeID: sn.ID, TrgNodePortID: bp.port.ID,
				Decorations: model.CloneDecorations(l.Decorations, false), ClassName: l.ClassName,
			}})
		default:
			key := l.SrcNodeID + "/" + l.SrcNodePortID
			bp, ok := outputs[key]
			if !ok {
				bp = c.newBoundaryPort(model.BindingExitNodeType, maxX+bindingGap, minY+float64(len(outputs))*bindingGap/2)
				outputs[key] = bp
				sn.Outputs = append(sn.Outputs, bp.port)
				bindings = append(bindings, bp.binding)
				bindingLinks = append(bindingLinks, &model.Link{
					ID: c.newID(), Type: model.NodeLinkType,
					SrcNodeID: l.SrcNodeID, SrcNodePortID: l.SrcNodePortID,
					TrgNodeID: bp.binding.ID, TrgNodePortID: bp.port.ID,
				})
			}
			outer = append(outer, &addLink{store: c.store, pipelineID: pid, link: &model.Link{
				ID: c.newID(), Type: model.NodeLinkType,
				SrcNodeID: sn.ID, SrcNodePortID: bp.port.ID,
				TrgNodeID: l.TrgNodeID, TrgNodePortID: l.TrgNodePortID,
				Decorations: model.CloneDecorations(l.Decorations, false), ClassName: l.ClassName,
			}})
		}
	}
	sub.Nodes = append(sub.Nodes, bindings...)
	sub.Links = append(sub.Links, bindingLinks...)

	for _, cm := range comments {
		cmds = append(cmds, &deleteComment{store: c.store, pipelineID: pid, commentID: cm.ID})
	}
	for _, n := range nodes {
		cmds = append(cmds, &deleteNode{store: c.store, pipelineID: pid, nodeID: n.ID})
	}
	cmds = append(cmds, &addPipelines{store: c.store, pipelines: []*model.Pipeline{sub}})

	// Pipelines owned by moved supernodes now hang under the new sub-pipeline.
	for _, n := range nodes {
		for _, id := range n.SubPipelineIDs {
			if parent, err := c.store.ParentPipelineID(id); err == nil && parent == pid {
				cmds = append(cmds, &setPipelineParent{store: c.store, pipelineID: id, parentID: sub.ID})
			}
		}
	}
	if external {
		for _, id := range c.ownedPipelines(&model.Node{SubPipelineIDs: movedSubs(nodes)}, "") {
			cmds = append(cmds, &setPipelineExternal{store: c.store, pipelineID: id, url: url, flowID: flowID})
		}
	}

	cmds = append(cmds, &addNode{store: c.store, pipelineID: pid, node: sn})
	cmds = append(cmds, outer...)

	label := "createSuperNode"
	if external {
		label = "createSuperNodeExternal"
	}
	if err := c.push(command.NewMacro(label, cmds...)); err != nil {
		return err
	}
	return c.SetSelections([]string{sn.ID})
}

func (c *Controller) newBoundaryPort(typ model.NodeType, x, y float64) *boundaryPort {
	port := &model.Port{ID: c.newID()}
	binding := &model.Node{ID: c.newID(), Type: typ, XPos: x, YPos: y}
	if typ == model.BindingEntryNodeType {
		binding.Outputs = []*model.Port{port.Clone()}
	} else {
		binding.Inputs = []*model.Port{port.Clone()}
	}
	return &boundaryPort{port: port, binding: binding}
}

func movedSubs(nodes []*model.Node) []string {
	var res []string
	for _, n := range nodes {
		if n.IsSupernode() && !n.IsExternal() {
			res = append(res, n.SubPipelineIDs...)
		}
	}
	return res
}
