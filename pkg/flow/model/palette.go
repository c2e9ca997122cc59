package model

// Palette is a catalog of reusable node templates grouped by category.
type Palette struct {
	Version    string      `json:"version,omitempty"`
	Categories []*Category `json:"categories" validate:"dive,required"`
}

// Category groups node templates in the palette.
type Category struct {
	ID          string          `json:"category" validate:"required"`
	Label       string          `json:"label,omitempty"`
	Description string          `json:"description,omitempty"`
	NodeTypes   []*NodeTemplate `json:"node_types" validate:"dive,required"`
}

// NodeTemplate is a node that can be instantiated on a pipeline. Supernode
// templates carry their sub-pipelines.
type NodeTemplate struct {
	Node
	SubPipelines []*Pipeline `json:"sub_pipelines,omitempty" validate:"dive,required"`
}

// Category returns the category with the given id.
func (p *Palette) Category(id string) *Category {
	for _, c := range p.Categories {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// NodeTemplateByOp returns the first template whose op matches.
func (p *Palette) NodeTemplateByOp(op string) *NodeTemplate {
	for _, c := range p.Categories {
		for _, nt := range c.NodeTypes {
			if nt.Op == op {
				return nt
			}
		}
	}
	return nil
}

// NodeTemplateByID returns the template with the given id.
func (p *Palette) NodeTemplateByID(id string) *NodeTemplate {
	for _, c := range p.Categories {
		for _, nt := range c.NodeTypes {
			if nt.ID == id {
				return nt
			}
		}
	}
	return nil
}
