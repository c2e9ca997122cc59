package flow

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// Context menu actions understood by ContextMenuActionHandler.
const (
	ActionSelectAll                       = "selectAll"
	ActionCopy                            = "copy"
	ActionCut                             = "cut"
	ActionPaste                           = "paste"
	ActionDeleteSelectedObjects           = "deleteSelectedObjects"
	ActionUndo                            = "undo"
	ActionRedo                            = "redo"
	ActionSaveToPalette                   = "saveToPalette"
	ActionCreateSuperNode                 = "createSuperNode"
	ActionCreateSuperNodeExternal         = "createSuperNodeExternal"
	ActionExpandSuperNodeInPlace          = "expandSuperNodeInPlace"
	ActionCollapseSuperNodeInPlace        = "collapseSuperNodeInPlace"
	ActionConvertSuperNodeLocalToExternal = "convertSuperNodeLocalToExternal"
	ActionConvertSuperNodeExternalToLocal = "convertSuperNodeExternalToLocal"
	ActionDisplaySubPipeline              = "displaySubPipeline"
	ActionDisplayPreviousPipeline         = "displayPreviousPipeline"
)

// ContextMenuActionHandler runs a context menu action on the selection of the
// displayed pipeline. Supernode actions need exactly one selected supernode.
func (c *Controller) ContextMenuActionHandler(action string) error {
	c.logger.Debug("context menu action", "action", action, "pipeline", c.CurrentPipelineID())

	switch action {
	case ActionSelectAll:
		return c.SelectAll()
	case ActionCopy:
		return c.Copy()
	case ActionCut:
		return c.Cut()
	case ActionPaste:
		return c.Paste()
	case ActionDeleteSelectedObjects:
		return c.DeleteSelectedObjects()
	case ActionUndo:
		return c.Undo()
	case ActionRedo:
		return c.Redo()
	case ActionSaveToPalette:
		return c.SaveToPalette()
	case ActionCreateSuperNode:
		return c.CreateSuperNode()
	case ActionCreateSuperNodeExternal:
		return c.CreateSuperNodeExternal()
	case ActionDisplayPreviousPipeline:
		return c.DisplayPreviousPipeline()
	case ActionExpandSuperNodeInPlace, ActionCollapseSuperNodeInPlace, ActionDisplaySubPipeline,
		ActionConvertSuperNodeLocalToExternal, ActionConvertSuperNodeExternalToLocal:
		return c.supernodeAction(action)
	}
	return errors.Wrapf(model.ErrReference, "unknown action %s", action)
}

func (c *Controller) supernodeAction(action string) error {
	snID, err := c.selectedSupernode()
	if err != nil {
		return err
	}
	pid := c.CurrentPipelineID()
	switch action {
	case ActionExpandSuperNodeInPlace:
		return c.ExpandSuperNodeInPlace(pid, snID)
	case ActionCollapseSuperNodeInPlace:
		return c.CollapseSuperNodeInPlace(pid, snID)
	case ActionConvertSuperNodeLocalToExternal:
		return c.ConvertSuperNodeLocalToExternal(pid, snID)
	case ActionConvertSuperNodeExternalToLocal:
		return c.ConvertSuperNodeExternalToLocal(pid, snID)
	default:
		return c.DisplaySubPipelineForSupernode(snID, pid)
	}
}

func (c *Controller) selectedSupernode() (string, error) {
	ids := c.GetSelectedObjectIDs()
	if len(ids) != 1 {
		return "", errors.Wrapf(model.ErrState, "%d objects selected, one supernode expected", len(ids))
	}
	n, err := c.store.Node(c.CurrentPipelineID(), ids[0])
	if err != nil || !n.IsSupernode() {
		return "", errors.Wrapf(model.ErrState, "%s is not a supernode", ids[0])
	}
	return n.ID, nil
}
