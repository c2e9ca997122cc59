package flow

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

type selection struct {
	pipelineID string
	ids        []string
}

// SetSelections selects objects of the displayed pipeline. Unknown ids are rejected.
func (c *Controller) SetSelections(ids []string) error {
	pid := c.CurrentPipelineID()
	res := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, err := c.store.Kind(pid, id); err != nil {
			return err
		}
		if !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	c.selection = selection{pipelineID: pid, ids: res}
	c.store.Touch()
	return nil
}

// GetSelectedObjectIDs returns the selected ids in selection order.
func (c *Controller) GetSelectedObjectIDs() []string {
	if c.selection.pipelineID != c.CurrentPipelineID() {
		return nil
	}
	return append([]string(nil), c.selection.ids...)
}

func (c *Controller) ClearSelections() {
	if len(c.selection.ids) == 0 {
		return
	}
	c.selection = selection{}
	c.store.Touch()
}

// SelectAll selects every node and comment of the displayed pipeline.
func (c *Controller) SelectAll() error {
	p, err := c.store.Pipeline(c.CurrentPipelineID())
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(p.Nodes)+len(p.Comments))
	for _, n := range p.Nodes {
		ids = append(ids, n.ID)
	}
	for _, cm := range p.Comments {
		ids = append(ids, cm.ID)
	}
	return c.SetSelections(ids)
}

// pruneSelection drops selected ids that no longer exist.
func (c *Controller) pruneSelection() {
	if len(c.selection.ids) == 0 {
		return
	}
	if !c.store.HasPipeline(c.selection.pipelineID) {
		c.selection = selection{}
		return
	}
	kept := c.selection.ids[:0]
	for _, id := range c.selection.ids {
		if _, err := c.store.Kind(c.selection.pipelineID, id); err == nil {
			kept = append(kept, id)
		}
	}
	c.selection.ids = kept
}

// selectedObjects splits the selection of the displayed pipeline into nodes
// and comments, in pipeline order. Selected links are ignored.
func (c *Controller) selectedObjects() (*model.Pipeline, []*model.Node, []*model.Comment, error) {
	p, err := c.store.Pipeline(c.CurrentPipelineID())
	if err != nil {
		return nil, nil, nil, err
	}
	selected := make(map[string]bool)
	for _, id := range c.GetSelectedObjectIDs() {
		selected[id] = true
	}
	var nodes []*model.Node
	for _, n := range p.Nodes {
		if selected[n.ID] {
			nodes = append(nodes, n)
		}
	}
	var comments []*model.Comment
	for _, cm := range p.Comments {
		if selected[cm.ID] {
			comments = append(comments, cm)
		}
	}
	return p, nodes, comments, nil
}

// clipboard holds an induced subgraph and the local pipelines nested in it.
type clipboard struct {
	nodes        []*model.Node
	comments     []*model.Comment
	links        []*model.Link
	subPipelines []*model.Pipeline
}

// Copy puts the selected nodes and comments, the links between them and the
// sub-pipelines of the selected supernodes on the clipboard.
func (c *Controller) Copy() error {
	p, nodes, comments, err := c.selectedObjects()
	if err != nil {
		return err
	}
	if len(nodes)+len(comments) == 0 {
		return errors.Wrap(model.ErrState, "nothing selected")
	}
	inside := make(map[string]bool)
	for _, n := range nodes {
		inside[n.ID] = true
	}
	for _, cm := range comments {
		inside[cm.ID] = true
	}

	cb := &clipboard{nodes: nodes, comments: comments}
	for _, l := range p.Links {
		if inside[l.SrcNodeID] && inside[l.TrgNodeID] {
			cb.links = append(cb.links, l)
		}
	}
	cb.subPipelines, err = c.localSubPipelines(nodes)
	if err != nil {
		return err
	}
	c.clipboard = cb
	c.pasteCount = 0
	c.logger.Debug("copied", "nodes", len(nodes), "comments", len(comments), "links", len(cb.links))
	return nil
}

// localSubPipelines returns the loaded, locally stored pipelines nested under
// nodes, parents before children.
func (c *Controller) localSubPipelines(nodes []*model.Node) ([]*model.Pipeline, error) {
	var res []*model.Pipeline
	seen := make(map[string]bool)
	for _, n := range nodes {
		if !n.IsSupernode() || n.IsExternal() {
			continue
		}
		for _, sub := range n.SubPipelineIDs {
			for _, id := range append([]string{sub}, c.store.Descendants(sub)...) {
				if seen[id] || !c.store.HasPipeline(id) {
					continue
				}
				p, err := c.store.Pipeline(id)
				if err != nil {
					return nil, err
				}
				if p.IsExternal() {
					continue
				}
				seen[id] = true
				res = append(res, p)
			}
		}
	}
	return res, nil
}

// Cut copies the selection and deletes it.
func (c *Controller) Cut() error {
	if err := c.Copy(); err != nil {
		return err
	}
	return c.DeleteSelectedObjects()
}

// Paste adds a fresh copy of the clipboard to the displayed pipeline, moved by
// the paste offset once more for every paste of the same copy.
func (c *Controller) Paste() error {
	if c.clipboard == nil {
		return errors.Wrap(model.ErrState, "clipboard is empty")
	}
	pid := c.CurrentPipelineID()
	c.pasteCount++
	offset := c.pasteOffset * float64(c.pasteCount)

	r := newRemapper(c, c.clipboard.subPipelines)
	var cmds []command.Command
	var pasted []string

	if len(c.clipboard.subPipelines) > 0 {
		cmds = append(cmds, &addPipelines{store: c.store, pipelines: r.pipelines(pid, c.clipboard.nodes, c.clipboard.subPipelines)})
	}
	for _, n := range c.clipboard.nodes {
		nn := r.node(n)
		nn.XPos += offset
		nn.YPos += offset
		cmds = append(cmds, &addNode{store: c.store, pipelineID: pid, node: nn})
		pasted = append(pasted, nn.ID)
	}
	for _, cm := range c.clipboard.comments {
		nc := r.comment(cm)
		nc.XPos += offset
		nc.YPos += offset
		cmds = append(cmds, &addComment{store: c.store, pipelineID: pid, comment: nc})
		pasted = append(pasted, nc.ID)
	}
	for _, l := range c.clipboard.links {
		cmds = append(cmds, &addLink{store: c.store, pipelineID: pid, link: r.link(l)})
	}

	if err := c.push(command.NewMacro("paste", cmds...)); err != nil {
		c.pasteCount--
		return err
	}
	return c.SetSelections(pasted)
}

// remapper gives fresh ids to copied objects. Sub-pipeline references are
// only rewritten for the pipelines being copied along.
type remapper struct {
	ctrl   *Controller
	ids    map[string]string
	copied map[string]bool
}

func newRemapper(c *Controller, subs []*model.Pipeline) *remapper {
	r := &remapper{ctrl: c, ids: make(map[string]string), copied: make(map[string]bool)}
	for _, p := range subs {
		r.copied[p.ID] = true
	}
	return r
}

func (r *remapper) id(old string) string {
	if id, ok := r.ids[old]; ok {
		return id
	}
	id := r.ctrl.newID()
	r.ids[old] = id
	return id
}

func (r *remapper) node(n *model.Node) *model.Node {
	res := n.Clone()
	res.ID = r.id(n.ID)
	for i, sub := range res.SubPipelineIDs {
		if r.copied[sub] {
			res.SubPipelineIDs[i] = r.id(sub)
		}
	}
	return res
}

func (r *remapper) comment(cm *model.Comment) *model.Comment {
	res := cm.Clone()
	res.ID = r.id(cm.ID)
	return res
}

func (r *remapper) link(l *model.Link) *model.Link {
	res := l.Clone()
	res.ID = r.id(l.ID)
	res.SrcNodeID = r.id(l.SrcNodeID)
	res.TrgNodeID = r.id(l.TrgNodeID)
	return res
}

func (r *remapper) pipeline(p *model.Pipeline, parentID string) *model.Pipeline {
	res := &model.Pipeline{
		ID:               r.id(p.ID),
		ParentPipelineID: parentID,
		AppData:          model.CloneAppData(p.AppData),
		Shape:            p.Shape,
	}
	for _, n := range p.Nodes {
		res.Nodes = append(res.Nodes, r.node(n))
	}
	for _, cm := range p.Comments {
		res.Comments = append(res.Comments, r.comment(cm))
	}
	for _, l := range p.Links {
		res.Links = append(res.Links, r.link(l))
	}
	return res
}

// pipelines remaps subs, which are nested under roots in pipelineID, and
// returns them parents first with their new parent ids.
func (r *remapper) pipelines(pipelineID string, roots []*model.Node, subs []*model.Pipeline) []*model.Pipeline {
	parents := make(map[string]string)
	for _, n := range roots {
		for _, sub := range n.SubPipelineIDs {
			if r.copied[sub] {
				parents[sub] = pipelineID
			}
		}
	}
	for _, p := range subs {
		for _, n := range p.Nodes {
			for _, sub := range n.SubPipelineIDs {
				if _, ok := parents[sub]; !ok && r.copied[sub] {
					parents[sub] = r.id(p.ID)
				}
			}
		}
	}
	res := make([]*model.Pipeline, 0, len(subs))
	for _, p := range subs {
		res = append(res, r.pipeline(p, parents[p.ID]))
	}
	return res
}
