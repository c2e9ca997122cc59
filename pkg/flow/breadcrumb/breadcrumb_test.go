package breadcrumb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow/breadcrumb"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

func crumb(pipelineID, supernodeID, parentID string) model.Breadcrumb {
	return model.Breadcrumb{PipelineID: pipelineID, SupernodeID: supernodeID, SupernodeParentPipelineID: parentID}
}

func TestManagerNavigation(t *testing.T) {
	t.Parallel()

	m := breadcrumb.New("main")
	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Top().IsRoot())

	require.NoError(t, m.Push(crumb("sub1", "sn1", "main")))
	require.NoError(t, m.Push(crumb("sub2", "sn2", "sub1")))
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "sub2", m.Top().PipelineID)

	require.ErrorIs(t, m.Push(crumb("sub3", "sn3", "main")), model.ErrReference)
	require.ErrorIs(t, m.Push(crumb("sub1", "sn4", "sub2")), model.ErrReference)

	all := m.All()
	all[0].PipelineID = "changed"
	assert.Equal(t, "main", m.All()[0].PipelineID)

	require.NoError(t, m.TruncateTo("sub1"))
	assert.Equal(t, 2, m.Len())
	require.ErrorIs(t, m.TruncateTo("sub2"), model.ErrReference)

	popped, err := m.Pop()
	require.NoError(t, err)
	assert.Equal(t, "sub1", popped.PipelineID)
	_, err = m.Pop()
	require.ErrorIs(t, err, model.ErrState)

	m.Reset("other")
	assert.Equal(t, []model.Breadcrumb{{PipelineID: "other"}}, m.All())
}

func TestManagerReplace(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		crumbs  []model.Breadcrumb
		wantErr bool
	}{
		"valid chain": {
			crumbs: []model.Breadcrumb{{PipelineID: "main"}, crumb("sub1", "sn1", "main"), crumb("sub2", "sn2", "sub1")},
		},
		"root only": {
			crumbs: []model.Breadcrumb{{PipelineID: "main"}},
		},
		"empty": {
			wantErr: true,
		},
		"first is not root": {
			crumbs:  []model.Breadcrumb{crumb("sub1", "sn1", "main")},
			wantErr: true,
		},
		"broken chain": {
			crumbs:  []model.Breadcrumb{{PipelineID: "main"}, crumb("sub2", "sn2", "sub1")},
			wantErr: true,
		},
		"repeated pipeline": {
			crumbs:  []model.Breadcrumb{{PipelineID: "main"}, crumb("sub1", "sn1", "main"), crumb("main", "sn2", "sub1")},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m := breadcrumb.New("start")
			err := m.Replace(tt.crumbs)
			if tt.wantErr {
				require.ErrorIs(t, err, model.ErrReference)
				assert.Equal(t, "start", m.Top().PipelineID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.crumbs, m.All())
		})
	}
}
