package flow

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

const (
	savedNodesCategoryID    = "savedNodes"
	savedNodesCategoryLabel = "Saved Nodes"
)

// SetPipelineFlowPalette validates and installs a palette.
func (c *Controller) SetPipelineFlowPalette(p *model.Palette) error {
	if err := model.ValidatePalette(p); err != nil {
		return err
	}
	c.palette = p.Clone()
	c.store.Touch()
	return nil
}

// GetPaletteData returns a copy of the palette.
func (c *Controller) GetPaletteData() *model.Palette {
	return c.palette.Clone()
}

// GetPaletteNode returns a copy of the first template with the given op.
func (c *Controller) GetPaletteNode(op string) *model.NodeTemplate {
	if c.palette == nil {
		return nil
	}
	return c.palette.NodeTemplateByOp(op).Clone()
}

// GetPaletteNodeByID returns a copy of the template with the given id.
func (c *Controller) GetPaletteNodeByID(id string) *model.NodeTemplate {
	if c.palette == nil {
		return nil
	}
	return c.palette.NodeTemplateByID(id).Clone()
}

// SaveToPalette adds one template per selected node to the saved nodes
// category. Templates are placed at the origin and get fresh ids; supernode
// templates carry a copy of their sub-pipelines.
func (c *Controller) SaveToPalette() error {
	_, nodes, _, err := c.selectedObjects()
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return errors.Wrap(model.ErrState, "no node selected")
	}

	templates := make([]*model.NodeTemplate, 0, len(nodes))
	for _, n := range nodes {
		subs, err := c.localSubPipelines([]*model.Node{n})
		if err != nil {
			return err
		}
		r := newRemapper(c, subs)
		nt := &model.NodeTemplate{Node: *r.node(n)}
		nt.XPos, nt.YPos = 0, 0
		nt.Decorations = model.CloneDecorations(nt.Decorations, true)
		nt.SubPipelines = r.pipelines("", []*model.Node{n}, subs)
		templates = append(templates, nt)
	}

	cmd := &saveToPalette{ctrl: c, templates: templates}
	return c.push(cmd)
}

type saveToPalette struct {
	ctrl      *Controller
	templates []*model.NodeTemplate

	// set when Do created them, Undo only drops what is still the same
	createdPalette  *model.Palette
	createdCategory *model.Category
}

func (s *saveToPalette) Do() error {
	c := s.ctrl
	if c.palette == nil {
		c.palette = &model.Palette{}
		s.createdPalette = c.palette
	}
	cat := c.palette.Category(savedNodesCategoryID)
	if cat == nil {
		cat = &model.Category{ID: savedNodesCategoryID, Label: savedNodesCategoryLabel}
		c.palette.Categories = append(c.palette.Categories, cat)
		s.createdCategory = cat
	}
	for _, nt := range s.templates {
		cat.NodeTypes = append(cat.NodeTypes, nt.Clone())
	}
	c.store.Touch()
	return nil
}

// Undo removes the saved templates by id, so a palette installed since Do
// keeps its own templates.
func (s *saveToPalette) Undo() error {
	c := s.ctrl
	defer func() { s.createdPalette, s.createdCategory = nil, nil }()
	if c.palette == nil {
		return nil
	}
	saved := make(map[string]struct{}, len(s.templates))
	for _, nt := range s.templates {
		saved[nt.ID] = struct{}{}
	}
	if cat := c.palette.Category(savedNodesCategoryID); cat != nil {
		cat.NodeTypes = slices.DeleteFunc(cat.NodeTypes, func(nt *model.NodeTemplate) bool {
			_, ok := saved[nt.ID]
			return ok
		})
		if cat == s.createdCategory && len(cat.NodeTypes) == 0 {
			c.palette.Categories = slices.DeleteFunc(c.palette.Categories, func(other *model.Category) bool {
				return other == cat
			})
		}
	}
	if c.palette == s.createdPalette && len(c.palette.Categories) == 0 {
		c.palette = nil
	}
	c.store.Touch()
	return nil
}

func (s *saveToPalette) Label() string { return "saveToPalette" }

var _ command.Command = (*saveToPalette)(nil)
