package model

// Ptr returns a pointer to v. It helps building property updates.
func Ptr[T any](v T) *T {
	return &v
}

// NodeProperties is a partial update of a node. Nil fields are left unchanged;
// an empty non-nil slice or map clears the field.
type NodeProperties struct {
	Label                  *string
	Op                     *string
	XPos                   *float64
	YPos                   *float64
	ClassName              *string
	Decorations            []*Decoration
	AppData                map[string]any
	SubPipelineIDs         []string
	IsExpanded             *bool
	ExternalURL            *string
	ExternalPipelineFlowID *string
}

// Apply writes the set properties onto n.
func (p NodeProperties) Apply(n *Node) {
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Op != nil {
		n.Op = *p.Op
	}
	if p.XPos != nil {
		n.XPos = *p.XPos
	}
	if p.YPos != nil {
		n.YPos = *p.YPos
	}
	if p.ClassName != nil {
		n.ClassName = *p.ClassName
	}
	if p.Decorations != nil {
		n.Decorations = CloneDecorations(p.Decorations, false)
	}
	if p.AppData != nil {
		n.AppData = emptyAsNil(CloneAppData(p.AppData))
	}
	if p.SubPipelineIDs != nil {
		n.SubPipelineIDs = nil
		if len(p.SubPipelineIDs) > 0 {
			n.SubPipelineIDs = append([]string(nil), p.SubPipelineIDs...)
		}
	}
	if p.IsExpanded != nil {
		n.IsExpanded = *p.IsExpanded
	}
	if p.ExternalURL != nil {
		n.ExternalURL = *p.ExternalURL
	}
	if p.ExternalPipelineFlowID != nil {
		n.ExternalPipelineFlowID = *p.ExternalPipelineFlowID
	}
}

// LinkProperties is a partial update of a link.
type LinkProperties struct {
	SrcNodePortID *string
	TrgNodePortID *string
	Decorations   []*Decoration
	ClassName     *string
}

// Apply writes the set properties onto l.
func (p LinkProperties) Apply(l *Link) {
	if p.SrcNodePortID != nil {
		l.SrcNodePortID = *p.SrcNodePortID
	}
	if p.TrgNodePortID != nil {
		l.TrgNodePortID = *p.TrgNodePortID
	}
	if p.Decorations != nil {
		l.Decorations = CloneDecorations(p.Decorations, false)
	}
	if p.ClassName != nil {
		l.ClassName = *p.ClassName
	}
}

// CommentProperties is a partial update of a comment.
type CommentProperties struct {
	XPos      *float64
	YPos      *float64
	Width     *float64
	Height    *float64
	Content   *string
	ClassName *string
}

// Apply writes the set properties onto c.
func (p CommentProperties) Apply(c *Comment) {
	if p.XPos != nil {
		c.XPos = *p.XPos
	}
	if p.YPos != nil {
		c.YPos = *p.YPos
	}
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.Height != nil {
		c.Height = *p.Height
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.ClassName != nil {
		c.ClassName = *p.ClassName
	}
}

func emptyAsNil(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
