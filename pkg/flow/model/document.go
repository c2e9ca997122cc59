package model

// SchemaVersion is the pipeline flow document version understood by this package.
const SchemaVersion = "3.0"

// Document is a pipeline flow: one primary pipeline plus every pipeline nested
// under its supernodes.
type Document struct {
	DocType         string         `json:"doc_type,omitempty"`
	Version         string         `json:"version" validate:"required"`
	ID              string         `json:"id,omitempty"`
	PrimaryPipeline string         `json:"primary_pipeline" validate:"required"`
	Pipelines       []*Pipeline    `json:"pipelines" validate:"required,min=1,dive,required"`
	AppData         map[string]any `json:"app_data,omitempty"`

	Shape *Shape `json:"-"`
}

// Pipeline is a single directed graph of nodes, links and comments.
type Pipeline struct {
	ID string `json:"id" validate:"required"`
	// ParentPipelineID is derived from the supernode that owns the pipeline.
	ParentPipelineID string         `json:"-"`
	Nodes            []*Node        `json:"nodes,omitempty" validate:"dive,required"`
	Links            []*Link        `json:"links,omitempty" validate:"dive,required"`
	Comments         []*Comment     `json:"comments,omitempty" validate:"dive,required"`
	AppData          map[string]any `json:"app_data,omitempty"`

	// ExternalURL is set when the host stores the pipeline outside the document.
	ExternalURL            string `json:"-"`
	ExternalPipelineFlowID string `json:"-"`

	Shape *Shape `json:"-"`
}

// IsExternal reports whether the pipeline is owned by the host outside the document.
func (p *Pipeline) IsExternal() bool {
	return p.ExternalURL != ""
}

// Pipeline returns the pipeline with the given id.
func (d *Document) Pipeline(id string) *Pipeline {
	for _, p := range d.Pipelines {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Node returns the node with the given id.
func (p *Pipeline) Node(id string) *Node {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// Link returns the link with the given id.
func (p *Pipeline) Link(id string) *Link {
	for _, l := range p.Links {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Comment returns the comment with the given id.
func (p *Pipeline) Comment(id string) *Comment {
	for _, c := range p.Comments {
		if c.ID == id {
			return c
		}
	}
	return nil
}
