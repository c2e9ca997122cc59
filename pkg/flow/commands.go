package flow

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
	"github.com/askiada/go-pipeline-flow/pkg/flow/objectmodel"
)

// The commands below each wrap one store operation with its inverse.
// Controller methods combine them into macros.

type addNode struct {
	store      *objectmodel.Store
	pipelineID string
	node       *model.Node
}

func (c *addNode) Do() error {
	return c.store.AddNode(c.pipelineID, c.node)
}

func (c *addNode) Undo() error {
	_, err := c.store.DeleteNode(c.pipelineID, c.node.ID)
	return err
}

func (c *addNode) Label() string { return "addNode" }

type deleteNode struct {
	store      *objectmodel.Store
	pipelineID string
	nodeID     string
	removed    *objectmodel.NodeRemoval
}

func (c *deleteNode) Do() error {
	rem, err := c.store.DeleteNode(c.pipelineID, c.nodeID)
	if err != nil {
		return err
	}
	c.removed = rem
	return nil
}

func (c *deleteNode) Undo() error {
	return c.store.RestoreNode(c.removed)
}

func (c *deleteNode) Label() string { return "deleteNode" }

type addLink struct {
	store      *objectmodel.Store
	pipelineID string
	link       *model.Link
}

func (c *addLink) Do() error {
	return c.store.AddLink(c.pipelineID, c.link)
}

func (c *addLink) Undo() error {
	_, err := c.store.DeleteLink(c.pipelineID, c.link.ID)
	return err
}

func (c *addLink) Label() string { return "addLink" }

type deleteLink struct {
	store      *objectmodel.Store
	pipelineID string
	linkID     string
	removed    objectmodel.Indexed[*model.Link]
}

func (c *deleteLink) Do() error {
	removed, err := c.store.DeleteLink(c.pipelineID, c.linkID)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *deleteLink) Undo() error {
	return c.store.InsertLink(c.pipelineID, c.removed.Index, c.removed.Value)
}

func (c *deleteLink) Label() string { return "deleteLink" }

type addComment struct {
	store      *objectmodel.Store
	pipelineID string
	comment    *model.Comment
}

func (c *addComment) Do() error {
	return c.store.AddComment(c.pipelineID, c.comment)
}

func (c *addComment) Undo() error {
	_, err := c.store.DeleteComment(c.pipelineID, c.comment.ID)
	return err
}

func (c *addComment) Label() string { return "addComment" }

type deleteComment struct {
	store      *objectmodel.Store
	pipelineID string
	commentID  string
	removed    *objectmodel.CommentRemoval
}

func (c *deleteComment) Do() error {
	rem, err := c.store.DeleteComment(c.pipelineID, c.commentID)
	if err != nil {
		return err
	}
	c.removed = rem
	return nil
}

func (c *deleteComment) Undo() error {
	return c.store.RestoreComment(c.removed)
}

func (c *deleteComment) Label() string { return "deleteComment" }

type replaceNodes struct {
	store      *objectmodel.Store
	pipelineID string
	next       []*model.Node
	prev       []*model.Node
}

func (c *replaceNodes) Do() error {
	prev, err := c.store.ReplaceNodes(c.pipelineID, c.next)
	if err != nil {
		return err
	}
	c.prev = prev
	return nil
}

func (c *replaceNodes) Undo() error {
	_, err := c.store.ReplaceNodes(c.pipelineID, c.prev)
	return err
}

func (c *replaceNodes) Label() string { return "replaceNodes" }

type replaceLinks struct {
	store      *objectmodel.Store
	pipelineID string
	next       []*model.Link
	prev       []*model.Link
}

func (c *replaceLinks) Do() error {
	prev, err := c.store.ReplaceLinks(c.pipelineID, c.next)
	if err != nil {
		return err
	}
	c.prev = prev
	return nil
}

func (c *replaceLinks) Undo() error {
	_, err := c.store.ReplaceLinks(c.pipelineID, c.prev)
	return err
}

func (c *replaceLinks) Label() string { return "replaceLinks" }

type replaceComments struct {
	store      *objectmodel.Store
	pipelineID string
	next       []*model.Comment
	prev       []*model.Comment
}

func (c *replaceComments) Do() error {
	prev, err := c.store.ReplaceComments(c.pipelineID, c.next)
	if err != nil {
		return err
	}
	c.prev = prev
	return nil
}

func (c *replaceComments) Undo() error {
	_, err := c.store.ReplaceComments(c.pipelineID, c.prev)
	return err
}

func (c *replaceComments) Label() string { return "replaceComments" }

// addPipelines adds pipelines in order and removes them in reverse on undo.
// A pipeline that fails to load rolls back the ones already added.
type addPipelines struct {
	store     *objectmodel.Store
	pipelines []*model.Pipeline
	// cause wraps load failures, typically model.ErrExternalFetch for
	// fragments returned by the host.
	cause error
}

func (c *addPipelines) Do() error {
	for i, p := range c.pipelines {
		if err := c.store.AddPipeline(p, -1); err != nil {
			_ = c.remove(i)
			if c.cause != nil {
				return errors.Wrapf(c.cause, "pipeline %s: %v", p.ID, err)
			}
			return err
		}
	}
	return nil
}

func (c *addPipelines) Undo() error {
	return c.remove(len(c.pipelines))
}

func (c *addPipelines) remove(n int) error {
	for i := n - 1; i >= 0; i-- {
		if _, err := c.store.RemovePipeline(c.pipelines[i].ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *addPipelines) Label() string { return "addPipelines" }

type removePipeline struct {
	store      *objectmodel.Store
	pipelineID string
	removed    objectmodel.Indexed[*model.Pipeline]
}

func (c *removePipeline) Do() error {
	removed, err := c.store.RemovePipeline(c.pipelineID)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *removePipeline) Undo() error {
	return c.store.AddPipeline(c.removed.Value, c.removed.Index)
}

func (c *removePipeline) Label() string { return "removePipeline" }

type setPipelineExternal struct {
	store           *objectmodel.Store
	pipelineID      string
	url, flowID     string
	prevURL, prevID string
}

func (c *setPipelineExternal) Do() error {
	prevURL, prevID, err := c.store.SetPipelineExternal(c.pipelineID, c.url, c.flowID)
	if err != nil {
		return err
	}
	c.prevURL, c.prevID = prevURL, prevID
	return nil
}

func (c *setPipelineExternal) Undo() error {
	_, _, err := c.store.SetPipelineExternal(c.pipelineID, c.prevURL, c.prevID)
	return err
}

func (c *setPipelineExternal) Label() string { return "setPipelineExternal" }

type setPipelineParent struct {
	store      *objectmodel.Store
	pipelineID string
	parentID   string
	prev       string
}

func (c *setPipelineParent) Do() error {
	prev, err := c.store.SetPipelineParent(c.pipelineID, c.parentID)
	if err != nil {
		return err
	}
	c.prev = prev
	return nil
}

func (c *setPipelineParent) Undo() error {
	_, err := c.store.SetPipelineParent(c.pipelineID, c.prev)
	return err
}

func (c *setPipelineParent) Label() string { return "setPipelineParent" }

// setBreadcrumbs changes the displayed pipeline. The selection belongs to the
// displayed pipeline, so it is cleared both ways.
type setBreadcrumbs struct {
	ctrl       *Controller
	prev, next []model.Breadcrumb
}

func (c *setBreadcrumbs) Do() error {
	return c.apply(c.next)
}

func (c *setBreadcrumbs) Undo() error {
	return c.apply(c.prev)
}

func (c *setBreadcrumbs) apply(crumbs []model.Breadcrumb) error {
	if err := c.ctrl.crumbs.Replace(crumbs); err != nil {
		return err
	}
	c.ctrl.selection = selection{}
	c.ctrl.store.Touch()
	c.ctrl.logger.Debug("displayed pipeline changed",
		"pipeline", c.ctrl.crumbs.Top().PipelineID, "depth", c.ctrl.crumbs.Len())
	return nil
}

func (c *setBreadcrumbs) Label() string { return "setBreadcrumbs" }
