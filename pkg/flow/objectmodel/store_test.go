package objectmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
	"github.com/askiada/go-pipeline-flow/pkg/flow/objectmodel"
)

func TestSetPipelineFlowRoundTrip(t *testing.T) {
	t.Parallel()

	doc := readFlow(t, "supernode_flow.json")
	s := objectmodel.New()
	require.NoError(t, s.SetPipelineFlow(doc))

	expected := doc.Clone()
	read := expected.Pipeline("p-main").Node("n-read")
	read.Decorations = read.Decorations[:1]

	assert.JSONEq(t, toJSON(t, expected), toJSON(t, s.PipelineFlow()))

	// transient data survives in memory
	n, err := s.Node("p-main", "n-read")
	require.NoError(t, err)
	assert.Len(t, n.Decorations, 2)

	parent, err := s.ParentPipelineID("p-sub")
	require.NoError(t, err)
	assert.Equal(t, "p-main", parent)
	assert.Equal(t, "p-main", s.PrimaryPipelineID())
	assert.Equal(t, []string{"p-main", "p-sub"}, s.PipelineIDs())
	assert.True(t, s.Seen("ls2"))
	assert.False(t, s.Seen("nope"))
}

func TestSetPipelineFlowSchemaErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]func(doc *model.Document){
		"duplicate pipeline": func(doc *model.Document) {
			doc.Pipelines = append(doc.Pipelines, doc.Pipelines[1].Clone())
		},
		"missing primary": func(doc *model.Document) {
			doc.PrimaryPipeline = "unknown"
		},
		"duplicate node": func(doc *model.Document) {
			p := doc.Pipeline("p-main")
			p.Nodes = append(p.Nodes, p.Nodes[0].Clone())
		},
		"dangling link": func(doc *model.Document) {
			doc.Pipeline("p-main").Links[0].TrgNodeID = "ghost"
		},
		"unknown port": func(doc *model.Document) {
			doc.Pipeline("p-main").Links[0].SrcNodePortID = "ghost"
		},
		"comment link without comment": func(doc *model.Document) {
			doc.Pipeline("p-main").Comments = nil
		},
		"missing sub-pipeline": func(doc *model.Document) {
			doc.Pipelines = doc.Pipelines[:1]
		},
		"binding port mismatch": func(doc *model.Document) {
			doc.Pipeline("p-sub").Node("b-entry").Outputs[0].ID = "in9"
			doc.Pipeline("p-sub").Links[0].SrcNodePortID = "in9"
		},
		"duplicate port": func(doc *model.Document) {
			n := doc.Pipeline("p-main").Node("n-write")
			n.Inputs = append(n.Inputs, &model.Port{ID: "in"})
		},
		"bad version": func(doc *model.Document) {
			doc.Version = "1"
		},
	}

	for name, mutate := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := loadStore(t, "supernode_flow.json")
			before := s.Snapshot()

			doc := readFlow(t, "supernode_flow.json")
			mutate(doc)
			err := s.SetPipelineFlow(doc)
			require.ErrorIs(t, err, model.ErrSchema)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestExternalSupernodeWithoutPipelineLoads(t *testing.T) {
	t.Parallel()

	doc := readFlow(t, "supernode_flow.json")
	doc.Pipelines = doc.Pipelines[:1]
	doc.Pipeline("p-main").Node("n-super").ExternalURL = "file://sub.json"

	s := objectmodel.New()
	require.NoError(t, s.SetPipelineFlow(doc))
	assert.False(t, s.HasPipeline("p-sub"))
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	_, err := s.SetNodeProperties("p-main", "n-read", model.NodeProperties{Label: model.Ptr("Read all")})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = s.SetNodeProperties("p-main", "ghost", model.NodeProperties{Label: model.Ptr("x")})
	require.ErrorIs(t, err, model.ErrReference)
	assert.Equal(t, 1, calls)

	err = s.Batch(func() error {
		if _, err := s.DeleteNode("p-main", "n-orphan"); err != nil {
			return err
		}
		_, err := s.DeleteLink("p-main", "l2")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	unsubscribe()
	_, err = s.DeleteNode("p-main", "n-write")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDeleteNodeRemovesLinksAndRestoresExactly(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	before := s.Snapshot()

	rem, err := s.DeleteNode("p-main", "n-read")
	require.NoError(t, err)
	assert.Equal(t, 0, rem.Node.Index)
	require.Len(t, rem.Links, 2)

	p, err := s.Pipeline("p-main")
	require.NoError(t, err)
	for _, l := range p.Links {
		assert.False(t, l.Touches("n-read"), "link %s still references the deleted node", l.ID)
	}
	assert.Nil(t, p.Node("n-read"))

	require.NoError(t, s.RestoreNode(rem))
	assert.Equal(t, before, s.Snapshot())

	require.ErrorIs(t, s.RestoreNode(rem), model.ErrReference)
}

func TestAddNodeAndLink(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")

	require.NoError(t, s.AddNode("p-main", &model.Node{ID: "n-new", Type: model.ExecutionNodeType, Inputs: []*model.Port{{ID: "in"}}}))
	require.ErrorIs(t, s.AddNode("p-main", &model.Node{ID: "n-new", Type: model.ExecutionNodeType}), model.ErrReference)
	require.ErrorIs(t, s.AddNode("ghost", &model.Node{ID: "n-x", Type: model.ExecutionNodeType}), model.ErrReference)
	require.ErrorIs(t, s.AddNode("p-main", &model.Node{ID: "n-x", Type: "weird"}), model.ErrSchema)
	require.ErrorIs(t, s.AddNode("p-main", &model.Node{ID: "n-s", Type: model.SuperNodeType, SubPipelineIDs: []string{"ghost"}}), model.ErrReference)

	require.NoError(t, s.AddLink("p-main", &model.Link{ID: "l-new", Type: model.NodeLinkType, SrcNodeID: "n-read", SrcNodePortID: "out", TrgNodeID: "n-new", TrgNodePortID: "in"}))
	require.ErrorIs(t, s.AddLink("p-main", &model.Link{ID: "l-bad", Type: model.NodeLinkType, SrcNodeID: "n-read", TrgNodeID: "ghost"}), model.ErrReference)
	require.ErrorIs(t, s.AddLink("p-main", &model.Link{ID: "l-bad", Type: model.NodeLinkType, SrcNodeID: "n-read", SrcNodePortID: "nope", TrgNodeID: "n-new"}), model.ErrReference)
	require.ErrorIs(t, s.AddLink("p-main", &model.Link{ID: "l-new", Type: model.NodeLinkType, SrcNodeID: "n-read", TrgNodeID: "n-new"}), model.ErrReference)

	p, err := s.Pipeline("p-main")
	require.NoError(t, err)
	assert.Equal(t, "n-new", p.Nodes[len(p.Nodes)-1].ID)
	assert.Equal(t, "l-new", p.Links[len(p.Links)-1].ID)
	assert.Nil(t, p.Link("l-bad"))
}

func TestSetNodePortsKeepsLinksValid(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	before := s.Snapshot()

	_, err := s.SetNodeInputPorts("p-main", "n-write", []*model.Port{{ID: "other"}})
	require.ErrorIs(t, err, model.ErrReference)
	assert.Equal(t, before, s.Snapshot())

	// removing a supernode port used by a binding node is rejected too
	_, err = s.SetNodeInputPorts("p-main", "n-super", []*model.Port{{ID: "in1"}, {ID: "in2"}})
	require.NoError(t, err)
	_, err = s.SetNodeOutputPorts("p-main", "n-super", []*model.Port{{ID: "out1"}})
	require.NoError(t, err)
	require.NoError(t, s.Batch(func() error {
		_, err := s.DeleteLink("p-main", "l2")
		return err
	}))
	_, err = s.SetNodeOutputPorts("p-main", "n-super", []*model.Port{{ID: "out2"}})
	require.ErrorIs(t, err, model.ErrReference)

	prev, err := s.SetNodeOutputPorts("p-main", "n-read", []*model.Port{{ID: "out"}, {ID: "err"}})
	require.NoError(t, err)
	assert.Len(t, prev.Outputs, 1)
	n, err := s.Node("p-main", "n-read")
	require.NoError(t, err)
	assert.Len(t, n.Outputs, 2)
}

func TestClassNames(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	before := s.Snapshot()

	_, err := s.SetNodesClassName("p-main", []string{"n-read", "ghost"}, "hot")
	require.ErrorIs(t, err, model.ErrReference)
	_, err = s.SetLinksClassName("p-main", []string{"l1", "ghost"}, "hot")
	require.ErrorIs(t, err, model.ErrReference)
	_, err = s.SetCommentsClassName("p-main", []string{"ghost"}, "hot")
	require.ErrorIs(t, err, model.ErrReference)
	assert.Equal(t, before, s.Snapshot())

	prevNodes, err := s.SetNodesClassName("p-main", []string{"n-read", "n-write"}, "hot")
	require.NoError(t, err)
	prevLinks, err := s.SetLinksClassName("p-main", []string{"l1"}, "hot")
	require.NoError(t, err)
	prevComments, err := s.SetCommentsClassName("p-main", []string{"c1"}, "hot")
	require.NoError(t, err)

	p, err := s.Pipeline("p-main")
	require.NoError(t, err)
	assert.Equal(t, "hot", p.Node("n-write").ClassName)
	assert.Equal(t, "hot", p.Link("l1").ClassName)
	assert.Equal(t, "hot", p.Comment("c1").ClassName)

	_, err = s.ReplaceNodes("p-main", prevNodes)
	require.NoError(t, err)
	_, err = s.ReplaceLinks("p-main", prevLinks)
	require.NoError(t, err)
	_, err = s.ReplaceComments("p-main", prevComments)
	require.NoError(t, err)
	assert.Equal(t, before, s.Snapshot())
}

func TestLinkAndCommentProperties(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")

	_, err := s.SetLinkProperties("p-main", "l1", model.LinkProperties{SrcNodePortID: model.Ptr("ghost")})
	require.ErrorIs(t, err, model.ErrReference)

	prevLink, err := s.SetLinkProperties("p-main", "l1", model.LinkProperties{Decorations: []*model.Decoration{{ID: "dl"}}})
	require.NoError(t, err)
	assert.Empty(t, prevLink.Decorations)

	prevComment, err := s.SetCommentProperties("p-main", "c1", model.CommentProperties{Content: model.Ptr("updated"), Width: model.Ptr(300.0)})
	require.NoError(t, err)
	assert.Equal(t, "reads the input", prevComment.Content)

	c, err := s.Comment("p-main", "c1")
	require.NoError(t, err)
	assert.Equal(t, "updated", c.Content)
	assert.InDelta(t, 300.0, c.Width, 0)
}

func TestDeleteCommentRemovesCommentLinks(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	before := s.Snapshot()

	rem, err := s.DeleteComment("p-main", "c1")
	require.NoError(t, err)
	require.Len(t, rem.Links, 1)
	assert.Equal(t, "lc1", rem.Links[0].Value.ID)

	_, err = s.Link("p-main", "lc1")
	require.ErrorIs(t, err, model.ErrReference)

	require.NoError(t, s.RestoreComment(rem))
	assert.Equal(t, before, s.Snapshot())
}

func TestPipelinesAndExternalFlows(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	before := s.Snapshot()

	_, err := s.RemovePipeline("p-main")
	require.ErrorIs(t, err, model.ErrReference)

	removed, err := s.RemovePipeline("p-sub")
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Index)
	assert.False(t, s.HasPipeline("p-sub"))

	require.ErrorIs(t, s.AddPipeline(&model.Pipeline{ID: "p-main"}, -1), model.ErrReference)
	require.NoError(t, s.AddPipeline(removed.Value, removed.Index))
	assert.Equal(t, before, s.Snapshot())

	_, _, err = s.SetPipelineExternal("p-sub", "file://sub.json", "flow-sub")
	require.NoError(t, err)

	flow := s.PipelineFlow()
	assert.Nil(t, flow.Pipeline("p-sub"))
	external := s.ExternalPipelineFlows()
	require.Contains(t, external, "file://sub.json")
	assert.Equal(t, "flow-sub", external["file://sub.json"].ID)
	assert.Equal(t, "p-sub", external["file://sub.json"].PrimaryPipeline)

	prevURL, _, err := s.SetPipelineExternal("p-sub", "", "")
	require.NoError(t, err)
	assert.Equal(t, "file://sub.json", prevURL)
	assert.Equal(t, before, s.Snapshot())
}

func TestAddPipelineChecksBindings(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	removed, err := s.RemovePipeline("p-sub")
	require.NoError(t, err)

	bad := removed.Value.Clone()
	bad.Node("b-exit").Inputs[0].ID = "out9"
	bad.Links[1].TrgNodePortID = "out9"
	require.ErrorIs(t, s.AddPipeline(bad, -1), model.ErrReference)
	assert.False(t, s.HasPipeline("p-sub"))
}

func TestKindAndReferences(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")

	kind, err := s.Kind("p-main", "c1")
	require.NoError(t, err)
	assert.Equal(t, objectmodel.CommentObject, kind)
	kind, err = s.Kind("p-main", "l1")
	require.NoError(t, err)
	assert.Equal(t, objectmodel.LinkObject, kind)
	_, err = s.Kind("p-main", "ghost")
	require.ErrorIs(t, err, model.ErrReference)

	assert.Equal(t, []objectmodel.NodeRef{{PipelineID: "p-main", NodeID: "n-super"}}, s.SupernodesReferencing("p-sub"))
	assert.Equal(t, []string{"p-sub"}, s.Descendants("p-main"))
	assert.Empty(t, s.Descendants("p-sub"))
}

func TestSetPipelineParentAndTouch(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "supernode_flow.json")
	calls := 0
	s.Subscribe(func() { calls++ })

	prev, err := s.SetPipelineParent("p-sub", "")
	require.NoError(t, err)
	assert.Equal(t, "p-main", prev)
	parent, err := s.ParentPipelineID("p-sub")
	require.NoError(t, err)
	assert.Empty(t, parent)

	_, err = s.SetPipelineParent("p-sub", "missing")
	require.ErrorIs(t, err, model.ErrReference)
	_, err = s.SetPipelineParent("missing", "p-main")
	require.ErrorIs(t, err, model.ErrReference)

	s.Touch()
	assert.Equal(t, 2, calls)
}
