package model

// LinkType is the kind of a link.
type LinkType string

const (
	NodeLinkType        LinkType = "nodeLink"
	CommentLinkType     LinkType = "commentLink"
	AssociationLinkType LinkType = "associationLink"
)

// Link connects two objects of the same pipeline. The source of a comment
// link is a comment id.
type Link struct {
	ID            string        `json:"id" validate:"required"`
	Type          LinkType      `json:"type" validate:"required,oneof=nodeLink commentLink associationLink"`
	SrcNodeID     string        `json:"src_node_id" validate:"required"`
	SrcNodePortID string        `json:"src_node_port_id,omitempty"`
	TrgNodeID     string        `json:"trg_node_id" validate:"required"`
	TrgNodePortID string        `json:"trg_node_port_id,omitempty"`
	Decorations   []*Decoration `json:"decorations,omitempty" validate:"dive,required"`
	ClassName     string        `json:"class_name,omitempty"`

	Shape *Shape `json:"-"`
}

// Touches reports whether id is one of the link endpoints.
func (l *Link) Touches(id string) bool {
	return l.SrcNodeID == id || l.TrgNodeID == id
}

// Comment is a free text note placed on a pipeline.
type Comment struct {
	ID        string  `json:"id" validate:"required"`
	XPos      float64 `json:"x_pos"`
	YPos      float64 `json:"y_pos"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Content   string  `json:"content,omitempty"`
	ClassName string  `json:"class_name,omitempty"`

	Shape *Shape `json:"-"`
}
