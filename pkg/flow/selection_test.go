package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

func TestSelections(t *testing.T) {
	t.Parallel()

	c, _ := newController(t, "start_flow.json")
	assert.Empty(t, c.GetSelectedObjectIDs())

	require.NoError(t, c.SetSelections([]string{filterID, readID, filterID, "l1"}))
	assert.Equal(t, []string{filterID, readID, "l1"}, c.GetSelectedObjectIDs())

	require.ErrorIs(t, c.SetSelections([]string{"s-step"}), model.ErrReference)
	assert.Equal(t, []string{filterID, readID, "l1"}, c.GetSelectedObjectIDs())

	// deleted objects leave the selection
	require.NoError(t, c.DeleteObjects("", []string{readID}))
	assert.Equal(t, []string{filterID}, c.GetSelectedObjectIDs())

	require.NoError(t, c.SelectAll())
	assert.Equal(t, []string{filterID, writeID, "sn-local", "c1"}, c.GetSelectedObjectIDs())

	c.ClearSelections()
	assert.Empty(t, c.GetSelectedObjectIDs())
	require.ErrorIs(t, c.DeleteSelectedObjects(), model.ErrState)

	// the selection belongs to the displayed pipeline
	require.NoError(t, c.SetSelections([]string{filterID}))
	require.NoError(t, c.DisplaySubPipeline("pipeline-sub"))
	assert.Empty(t, c.GetSelectedObjectIDs())
	require.NoError(t, c.SetSelections([]string{"s-step"}))
	require.NoError(t, c.Undo())
	assert.Empty(t, c.GetSelectedObjectIDs())
}

func TestCopyPaste(t *testing.T) {
	t.Parallel()

	c, _ := newController(t, "start_flow.json")
	require.ErrorIs(t, c.Paste(), model.ErrState)
	require.ErrorIs(t, c.Copy(), model.ErrState)

	require.NoError(t, c.SetSelections([]string{readID, filterID, "c1"}))
	require.NoError(t, c.Copy())

	for i, offset := range []float64{10, 20} {
		require.NoError(t, c.Paste())
		pasted := c.GetSelectedObjectIDs()
		require.Len(t, pasted, 3, "paste %d", i)

		read, err := c.Store().Node("pipeline-main", pasted[0])
		require.NoError(t, err)
		assert.Equal(t, "read-csv", read.Op)
		assert.InDelta(t, 100+offset, read.XPos, 0)
		assert.InDelta(t, 100+offset, read.YPos, 0)

		comment, err := c.Store().Comment("pipeline-main", pasted[2])
		require.NoError(t, err)
		assert.InDelta(t, 100+offset, comment.XPos, 0)
		assert.InDelta(t, 20+offset, comment.YPos, 0)

		// links between copied objects come along, the others do not
		p, err := c.Store().Pipeline("pipeline-main")
		require.NoError(t, err)
		var links []*model.Link
		for _, l := range p.Links {
			if l.Touches(pasted[0]) {
				links = append(links, l)
			}
		}
		require.Len(t, links, 2)
		assert.Equal(t, pasted[1], links[0].TrgNodeID)
		assert.Equal(t, model.CommentLinkType, links[1].Type)
		assert.Equal(t, pasted[2], links[1].SrcNodeID)
	}

	// a new copy starts the offset again
	require.NoError(t, c.SetSelections([]string{writeID}))
	require.NoError(t, c.Copy())
	require.NoError(t, c.Paste())
	n, err := c.Store().Node("pipeline-main", c.GetSelectedObjectIDs()[0])
	require.NoError(t, err)
	assert.InDelta(t, 510, n.XPos, 0)
}

func TestPasteSupernodeCopiesSubPipelines(t *testing.T) {
	t.Parallel()

	c, _ := newController(t, "start_flow.json")
	require.NoError(t, c.SetSelections([]string{"sn-local"}))
	require.NoError(t, c.Copy())
	require.NoError(t, c.DisplaySubPipeline("pipeline-sub"))
	require.NoError(t, c.Paste())

	pasted, err := c.Store().Node("pipeline-sub", c.GetSelectedObjectIDs()[0])
	require.NoError(t, err)
	sub := pasted.SubPipelineID()
	assert.NotEqual(t, "pipeline-sub", sub)
	parent, err := c.Store().ParentPipelineID(sub)
	require.NoError(t, err)
	assert.Equal(t, "pipeline-sub", parent)

	copied, err := c.Store().Pipeline(sub)
	require.NoError(t, err)
	require.Len(t, copied.Nodes, 3)
	for _, n := range copied.Nodes {
		assert.NotContains(t, []string{"b-in", "s-step", "b-out"}, n.ID)
	}

	// deleting the copy leaves the original alone
	require.NoError(t, c.DeleteObjects("", []string{pasted.ID}))
	assert.False(t, c.Store().HasPipeline(sub))
	assert.True(t, c.Store().HasPipeline("pipeline-sub"))
	assert.Equal(t, "pipeline-sub", c.CurrentPipelineID())
}

func TestCutMovesObjects(t *testing.T) {
	t.Parallel()

	c, _ := newController(t, "start_flow.json")
	require.NoError(t, c.SetSelections([]string{filterID}))
	require.NoError(t, c.Cut())
	_, err := c.Store().Node("pipeline-main", filterID)
	require.ErrorIs(t, err, model.ErrReference)
	assert.Empty(t, c.GetSelectedObjectIDs())

	require.NoError(t, c.Paste())
	n, err := c.Store().Node("pipeline-main", c.GetSelectedObjectIDs()[0])
	require.NoError(t, err)
	assert.Equal(t, "filter", n.Op)
	assert.Equal(t, 2, c.GetCommandStack().Len())
}

func TestContextMenuActions(t *testing.T) {
	t.Parallel()

	c, _ := newController(t, "start_flow.json")
	require.ErrorIs(t, c.ContextMenuActionHandler("explode"), model.ErrReference)
	require.ErrorIs(t, c.ContextMenuActionHandler(flow.ActionExpandSuperNodeInPlace), model.ErrState)

	require.NoError(t, c.ContextMenuActionHandler(flow.ActionSelectAll))
	assert.Len(t, c.GetSelectedObjectIDs(), 5)
	require.ErrorIs(t, c.ContextMenuActionHandler(flow.ActionDisplaySubPipeline), model.ErrState)

	require.NoError(t, c.SetSelections([]string{readID}))
	require.ErrorIs(t, c.ContextMenuActionHandler(flow.ActionCollapseSuperNodeInPlace), model.ErrState)

	require.NoError(t, c.SetSelections([]string{"sn-local"}))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionExpandSuperNodeInPlace))
	sn, err := c.Store().Node("pipeline-main", "sn-local")
	require.NoError(t, err)
	assert.True(t, sn.IsExpanded)

	require.NoError(t, c.ContextMenuActionHandler(flow.ActionDisplaySubPipeline))
	assert.Equal(t, "pipeline-sub", c.CurrentPipelineID())
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionDisplayPreviousPipeline))
	assert.Equal(t, "pipeline-main", c.CurrentPipelineID())

	require.NoError(t, c.ContextMenuActionHandler(flow.ActionUndo))
	assert.Equal(t, "pipeline-sub", c.CurrentPipelineID())
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionRedo))
	assert.Equal(t, "pipeline-main", c.CurrentPipelineID())

	require.NoError(t, c.SetSelections([]string{"sn-local"}))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionConvertSuperNodeLocalToExternal))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionConvertSuperNodeExternalToLocal))

	require.NoError(t, c.SetSelections([]string{filterID}))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionCopy))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionPaste))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionSaveToPalette))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionCreateSuperNode))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionCut))
	require.NoError(t, c.SetSelections([]string{writeID}))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionCreateSuperNodeExternal))
	require.NoError(t, c.ContextMenuActionHandler(flow.ActionDeleteSelectedObjects))
	assert.Empty(t, c.GetExternalPipelineFlows())
}

func TestBranchScenario(t *testing.T) {
	t.Parallel()

	const sn = "7015d906-2eae-45c1-999e-fb888ed957e5"
	var expected struct {
		Branch     []string `json:"branch"`
		Upstream   []string `json:"upstream"`
		Downstream []string `json:"downstream"`
	}
	readJSON(t, "branch_expected.json", &expected)

	c, _ := newController(t, "branch_flow.json")

	branch, err := c.GetBranchNodes("", []string{sn})
	require.NoError(t, err)
	assert.Equal(t, expected.Branch, branch)

	upstream, err := c.GetUpstreamNodes("pipeline-branch", []string{sn})
	require.NoError(t, err)
	assert.Equal(t, expected.Upstream, upstream)

	downstream, err := c.GetDownstreamNodes("", []string{sn})
	require.NoError(t, err)
	assert.Equal(t, expected.Downstream, downstream)

	// supernodes are not entered
	inside, err := c.GetDownstreamNodes("sub-7015", []string{"sub-entry"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-entry", "sub-work", "sub-exit"}, inside)

	_, err = c.GetBranchNodes("", []string{"ghost"})
	require.ErrorIs(t, err, model.ErrReference)
	_, err = c.GetBranchNodes("ghost", []string{sn})
	require.ErrorIs(t, err, model.ErrReference)
}
