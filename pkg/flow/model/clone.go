package model

// CloneAppData deep copies a JSON-like value tree.
func CloneAppData(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneAppData(val)
	case []any:
		res := make([]any, len(val))
		for i, item := range val {
			res[i] = cloneValue(item)
		}
		return res
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

// Clone returns a deep copy of the port.
func (p *Port) Clone() *Port {
	if p == nil {
		return nil
	}
	res := *p
	if p.Cardinality != nil {
		c := *p.Cardinality
		res.Cardinality = &c
	}
	res.AppData = CloneAppData(p.AppData)
	return &res
}

// ClonePorts deep copies a port list.
func ClonePorts(ports []*Port) []*Port {
	if ports == nil {
		return nil
	}
	res := make([]*Port, len(ports))
	for i, p := range ports {
		res[i] = p.Clone()
	}
	return res
}

// CloneDecorations deep copies a decoration list. When persistent is true,
// temporary decorations are dropped. Nil entries are kept for validation to
// reject.
func CloneDecorations(decs []*Decoration, persistent bool) []*Decoration {
	if decs == nil {
		return nil
	}
	res := make([]*Decoration, 0, len(decs))
	for _, d := range decs {
		if d == nil {
			res = append(res, nil)
			continue
		}
		if persistent && d.Temporary {
			continue
		}
		c := *d
		res = append(res, &c)
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	res := *n
	res.Inputs = ClonePorts(n.Inputs)
	res.Outputs = ClonePorts(n.Outputs)
	res.Decorations = CloneDecorations(n.Decorations, false)
	res.AppData = CloneAppData(n.AppData)
	if n.SubPipelineIDs != nil {
		res.SubPipelineIDs = append([]string(nil), n.SubPipelineIDs...)
	}
	return &res
}

// Clone returns a deep copy of the link.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	res := *l
	res.Decorations = CloneDecorations(l.Decorations, false)
	return &res
}

// Clone returns a copy of the comment.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	res := *c
	return &res
}

// Clone returns a deep copy of the pipeline.
func (p *Pipeline) Clone() *Pipeline {
	if p == nil {
		return nil
	}
	res := *p
	res.AppData = CloneAppData(p.AppData)
	res.Nodes = nil
	res.Links = nil
	res.Comments = nil
	for _, n := range p.Nodes {
		res.Nodes = append(res.Nodes, n.Clone())
	}
	for _, l := range p.Links {
		res.Links = append(res.Links, l.Clone())
	}
	for _, c := range p.Comments {
		res.Comments = append(res.Comments, c.Clone())
	}
	return &res
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	res := *d
	res.AppData = CloneAppData(d.AppData)
	res.Pipelines = make([]*Pipeline, len(d.Pipelines))
	for i, p := range d.Pipelines {
		res.Pipelines[i] = p.Clone()
	}
	return &res
}

// Clone returns a deep copy of the node template.
func (nt *NodeTemplate) Clone() *NodeTemplate {
	if nt == nil {
		return nil
	}
	res := &NodeTemplate{Node: *nt.Node.Clone()}
	for _, p := range nt.SubPipelines {
		res.SubPipelines = append(res.SubPipelines, p.Clone())
	}
	return res
}

// Clone returns a deep copy of the palette.
func (p *Palette) Clone() *Palette {
	if p == nil {
		return nil
	}
	res := &Palette{Version: p.Version}
	for _, c := range p.Categories {
		cc := &Category{ID: c.ID, Label: c.Label, Description: c.Description}
		for _, nt := range c.NodeTypes {
			cc.NodeTypes = append(cc.NodeTypes, nt.Clone())
		}
		res.Categories = append(res.Categories, cc)
	}
	return res
}
