package objectmodel

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/internal/store"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

type pipeline struct {
	id               string
	parentPipelineID string
	externalURL      string
	externalFlowID   string
	appData          map[string]any
	shape            *model.Shape

	nodes    *store.OrderedMap[string, *model.Node]
	links    *store.OrderedMap[string, *model.Link]
	comments *store.OrderedMap[string, *model.Comment]
}

// newPipeline copies p into a fresh arena and checks its internal references.
func newPipeline(p *model.Pipeline) (*pipeline, error) {
	np := &pipeline{
		id:               p.ID,
		parentPipelineID: p.ParentPipelineID,
		externalURL:      p.ExternalURL,
		externalFlowID:   p.ExternalPipelineFlowID,
		appData:          model.CloneAppData(p.AppData),
		shape:            p.Shape,
		nodes:            store.NewOrderedMap[string, *model.Node](),
		links:            store.NewOrderedMap[string, *model.Link](),
		comments:         store.NewOrderedMap[string, *model.Comment](),
	}
	for _, n := range p.Nodes {
		if np.nodes.Has(n.ID) {
			return nil, errors.Errorf("duplicate node id %s in pipeline %s", n.ID, p.ID)
		}
		if err := checkPorts(n); err != nil {
			return nil, err
		}
		np.nodes.Set(n.ID, n.Clone())
	}
	for _, c := range p.Comments {
		if np.comments.Has(c.ID) {
			return nil, errors.Errorf("duplicate comment id %s in pipeline %s", c.ID, p.ID)
		}
		np.comments.Set(c.ID, c.Clone())
	}
	for _, l := range p.Links {
		if np.links.Has(l.ID) {
			return nil, errors.Errorf("duplicate link id %s in pipeline %s", l.ID, p.ID)
		}
		if err := np.checkLink(l); err != nil {
			return nil, err
		}
		np.links.Set(l.ID, l.Clone())
	}
	return np, nil
}

// export builds a model pipeline. With persistent set, temporary decorations
// and in-memory marks are dropped.
func (p *pipeline) export(persistent bool) *model.Pipeline {
	res := &model.Pipeline{
		ID:               p.id,
		ParentPipelineID: p.parentPipelineID,
		AppData:          model.CloneAppData(p.appData),
		Shape:            p.shape,
	}
	if !persistent {
		res.ExternalURL = p.externalURL
		res.ExternalPipelineFlowID = p.externalFlowID
	}
	p.nodes.Each(func(_ string, n *model.Node) bool {
		c := n.Clone()
		c.Decorations = model.CloneDecorations(n.Decorations, persistent)
		res.Nodes = append(res.Nodes, c)
		return true
	})
	p.links.Each(func(_ string, l *model.Link) bool {
		c := l.Clone()
		c.Decorations = model.CloneDecorations(l.Decorations, persistent)
		res.Links = append(res.Links, c)
		return true
	})
	p.comments.Each(func(_ string, c *model.Comment) bool {
		res.Comments = append(res.Comments, c.Clone())
		return true
	})
	return res
}

// each calls fn with the id of every object of the pipeline.
func (p *pipeline) each(fn func(id string)) {
	for _, id := range p.nodes.Keys() {
		fn(id)
	}
	for _, id := range p.links.Keys() {
		fn(id)
	}
	for _, id := range p.comments.Keys() {
		fn(id)
	}
}

func (p *pipeline) node(id string) (*model.Node, error) {
	n, ok := p.nodes.Get(id)
	if !ok {
		return nil, errors.Wrapf(model.ErrReference, "node %s not found in pipeline %s", id, p.id)
	}
	return n, nil
}

func (p *pipeline) link(id string) (*model.Link, error) {
	l, ok := p.links.Get(id)
	if !ok {
		return nil, errors.Wrapf(model.ErrReference, "link %s not found in pipeline %s", id, p.id)
	}
	return l, nil
}

func (p *pipeline) comment(id string) (*model.Comment, error) {
	c, ok := p.comments.Get(id)
	if !ok {
		return nil, errors.Wrapf(model.ErrReference, "comment %s not found in pipeline %s", id, p.id)
	}
	return c, nil
}

// checkLink verifies that the endpoints of l exist in the pipeline.
func (p *pipeline) checkLink(l *model.Link) error {
	switch l.Type {
	case model.CommentLinkType:
		if !p.comments.Has(l.SrcNodeID) {
			return errors.Errorf("link %s: comment %s not found", l.ID, l.SrcNodeID)
		}
		if !p.nodes.Has(l.TrgNodeID) {
			return errors.Errorf("link %s: node %s not found", l.ID, l.TrgNodeID)
		}
		return nil
	default:
		src, ok := p.nodes.Get(l.SrcNodeID)
		if !ok {
			return errors.Errorf("link %s: source node %s not found", l.ID, l.SrcNodeID)
		}
		trg, ok := p.nodes.Get(l.TrgNodeID)
		if !ok {
			return errors.Errorf("link %s: target node %s not found", l.ID, l.TrgNodeID)
		}
		if l.SrcNodePortID != "" && src.OutputPort(l.SrcNodePortID) == nil {
			return errors.Errorf("link %s: node %s has no output port %s", l.ID, src.ID, l.SrcNodePortID)
		}
		if l.TrgNodePortID != "" && trg.InputPort(l.TrgNodePortID) == nil {
			return errors.Errorf("link %s: node %s has no input port %s", l.ID, trg.ID, l.TrgNodePortID)
		}
		return nil
	}
}

// linksTouching returns the links with id as an endpoint, in arena order.
func (p *pipeline) linksTouching(id string) []*model.Link {
	var res []*model.Link
	p.links.Each(func(_ string, l *model.Link) bool {
		if l.Touches(id) {
			res = append(res, l)
		}
		return true
	})
	return res
}

// removeLinks deletes links and records their positions in removal order.
func (p *pipeline) removeLinks(links []*model.Link) []Indexed[*model.Link] {
	res := make([]Indexed[*model.Link], 0, len(links))
	for _, l := range links {
		idx := p.links.Delete(l.ID)
		res = append(res, Indexed[*model.Link]{Index: idx, Value: l.Clone()})
	}
	return res
}

// restoreLinks undoes removeLinks.
func (p *pipeline) restoreLinks(links []Indexed[*model.Link]) {
	for i := len(links) - 1; i >= 0; i-- {
		p.links.Insert(links[i].Index, links[i].Value.ID, links[i].Value.Clone())
	}
}

func checkPorts(n *model.Node) error {
	for _, ports := range [][]*model.Port{n.Inputs, n.Outputs} {
		ids := make(map[string]struct{}, len(ports))
		for _, port := range ports {
			if port == nil || port.ID == "" {
				return errors.Errorf("node %s has a port without id", n.ID)
			}
			if _, ok := ids[port.ID]; ok {
				return errors.Errorf("node %s has duplicate port id %s", n.ID, port.ID)
			}
			ids[port.ID] = struct{}{}
		}
	}
	return nil
}
