// Package breadcrumb keeps the stack of nested pipelines being displayed.
package breadcrumb

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// Manager is a stack of breadcrumbs. The first entry is always the root
// pipeline and the last one is the pipeline on display.
type Manager struct {
	crumbs []model.Breadcrumb
}

// New creates a manager whose only entry is a root breadcrumb for pipelineID.
func New(pipelineID string) *Manager {
	m := &Manager{}
	m.Reset(pipelineID)
	return m
}

// Reset drops every entry and starts again from the root pipeline.
func (m *Manager) Reset(pipelineID string) {
	m.crumbs = []model.Breadcrumb{{PipelineID: pipelineID}}
}

// Top returns the breadcrumb of the displayed pipeline.
func (m *Manager) Top() model.Breadcrumb {
	return m.crumbs[len(m.crumbs)-1]
}

// Len returns the depth of the stack.
func (m *Manager) Len() int {
	return len(m.crumbs)
}

// All returns a copy of the stack, root first.
func (m *Manager) All() []model.Breadcrumb {
	res := make([]model.Breadcrumb, len(m.crumbs))
	copy(res, m.crumbs)
	return res
}

// Index returns the position of pipelineID in the stack, or -1.
func (m *Manager) Index(pipelineID string) int {
	for i, b := range m.crumbs {
		if b.PipelineID == pipelineID {
			return i
		}
	}
	return -1
}

// Push adds a breadcrumb for a sub-pipeline of the displayed pipeline.
func (m *Manager) Push(b model.Breadcrumb) error {
	if err := checkEntry(m.Top(), b); err != nil {
		return err
	}
	if m.Index(b.PipelineID) >= 0 {
		return errors.Wrapf(model.ErrReference, "pipeline %s is already displayed", b.PipelineID)
	}
	m.crumbs = append(m.crumbs, b)
	return nil
}

// Pop removes the displayed pipeline and returns it. The root cannot be popped.
func (m *Manager) Pop() (model.Breadcrumb, error) {
	if len(m.crumbs) == 1 {
		return model.Breadcrumb{}, errors.Wrap(model.ErrState, "already at the root pipeline")
	}
	b := m.Top()
	m.crumbs = m.crumbs[:len(m.crumbs)-1]
	return b, nil
}

// TruncateTo drops every entry deeper than pipelineID.
func (m *Manager) TruncateTo(pipelineID string) error {
	idx := m.Index(pipelineID)
	if idx < 0 {
		return errors.Wrapf(model.ErrReference, "pipeline %s is not in the breadcrumbs", pipelineID)
	}
	m.crumbs = m.crumbs[:idx+1]
	return nil
}

// Replace swaps the whole stack after checking that every entry chains to
// the previous one.
func (m *Manager) Replace(crumbs []model.Breadcrumb) error {
	if err := Check(crumbs); err != nil {
		return err
	}
	m.crumbs = make([]model.Breadcrumb, len(crumbs))
	copy(m.crumbs, crumbs)
	return nil
}

// Check validates a breadcrumb chain: a root entry first, then entries whose
// supernode parent is the previous pipeline, with no pipeline repeated.
func Check(crumbs []model.Breadcrumb) error {
	if len(crumbs) == 0 {
		return errors.Wrap(model.ErrReference, "empty breadcrumbs")
	}
	if crumbs[0].PipelineID == "" || !crumbs[0].IsRoot() {
		return errors.Wrap(model.ErrReference, "first breadcrumb must be the root pipeline")
	}
	seen := map[string]bool{crumbs[0].PipelineID: true}
	for i := 1; i < len(crumbs); i++ {
		if err := checkEntry(crumbs[i-1], crumbs[i]); err != nil {
			return errors.Wrapf(err, "breadcrumb %d", i)
		}
		if seen[crumbs[i].PipelineID] {
			return errors.Wrapf(model.ErrReference, "pipeline %s appears twice", crumbs[i].PipelineID)
		}
		seen[crumbs[i].PipelineID] = true
	}
	return nil
}

func checkEntry(parent, b model.Breadcrumb) error {
	switch {
	case b.PipelineID == "":
		return errors.Wrap(model.ErrReference, "missing pipeline id")
	case b.IsRoot():
		return errors.Wrapf(model.ErrReference, "pipeline %s has no supernode", b.PipelineID)
	case b.SupernodeParentPipelineID != parent.PipelineID:
		return errors.Wrapf(model.ErrReference, "supernode %s is in pipeline %s, not %s",
			b.SupernodeID, b.SupernodeParentPipelineID, parent.PipelineID)
	}
	return nil
}
