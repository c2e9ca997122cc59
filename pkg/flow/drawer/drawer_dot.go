package drawer

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-pipeline-flow/internal/store"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// DOTDrawer renders a pipeline as a Graphviz digraph.
type DOTDrawer struct {
	graph graph.Graph[string, *model.Node]
	store store.RankedStore[string, *model.Node]
	name  string
}

// NewDOTDrawer creates a new DOT drawer. name becomes the graph label.
func NewDOTDrawer(name string) *DOTDrawer {
	s := store.NewMemoryStore[string, *model.Node]()
	return &DOTDrawer{
		graph: graph.NewWithStore(func(n *model.Node) string { return n.ID }, s, graph.Directed()),
		store: s,
		name:  name,
	}
}

var nodeShapes = map[model.NodeType]string{
	model.ExecutionNodeType:    "box",
	model.SuperNodeType:        "box3d",
	model.BindingEntryNodeType: "cds",
	model.BindingExitNodeType:  "cds",
}

var nodeFills = map[model.NodeType][3]uint8{
	model.ExecutionNodeType:    {224, 236, 255},
	model.SuperNodeType:        {255, 236, 204},
	model.BindingEntryNodeType: {214, 245, 214},
	model.BindingExitNodeType:  {245, 214, 214},
}

func hexColor(rgb [3]uint8) (string, error) {
	c, err := colors.RGB(rgb[0], rgb[1], rgb[2]) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}
	return c.ToHEX().String(), nil
}

// AddNode adds a node to the pipeline graph.
func (d *DOTDrawer) AddNode(n *model.Node) error {
	fill, err := hexColor(nodeFills[n.Type])
	if err != nil {
		return err
	}
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if n.IsSupernode() && n.IsExternal() {
		label += "\n" + n.ExternalURL
	}

	err = d.graph.AddVertex(n,
		graph.VertexAttribute("label", label),
		graph.VertexAttribute("shape", nodeShapes[n.Type]),
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", fill),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", n.ID)
	}

	return nil
}

// AddLink adds a link between two nodes. Comment links are not drawn and
// only the first link between two nodes is kept.
func (d *DOTDrawer) AddLink(l *model.Link) error {
	if l.Type == model.CommentLinkType {
		return nil
	}
	attrs := []func(*graph.EdgeProperties){
		graph.EdgeAttribute("id", l.ID),
	}
	if l.Type == model.AssociationLinkType {
		attrs = append(attrs, graph.EdgeAttribute("style", "dashed"), graph.EdgeAttribute("arrowhead", "none"))
	}
	if l.SrcNodePortID != "" || l.TrgNodePortID != "" {
		attrs = append(attrs, graph.EdgeAttribute("label", l.SrcNodePortID+" → "+l.TrgNodePortID))
	}

	err := d.graph.AddEdge(l.SrcNodeID, l.TrgNodeID, attrs...)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", l.SrcNodeID, l.TrgNodeID)
	}

	return nil
}

const highlightRGB = 220

// Highlight draws a thick red border around the given nodes.
func (d *DOTDrawer) Highlight(ids ...string) error {
	red, err := hexColor([3]uint8{highlightRGB, 0, 0})
	if err != nil {
		return err
	}
	for _, id := range ids {
		_, properties, err := d.graph.VertexWithProperties(id)
		if err != nil {
			return errors.Wrapf(err, "unable to get vertex %s properties", id)
		}
		properties.Attributes["color"] = red
		properties.Attributes["penwidth"] = "2"
	}

	return nil
}

// Draw writes the DOT description of the graph to w.
func (d *DOTDrawer) Draw(w io.Writer) error {
	desc, err := d.generateDOT()
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(w, desc)
}

// DrawPipeline renders every node and link of p, highlighting selected.
func DrawPipeline(w io.Writer, p *model.Pipeline, selected ...string) error {
	var d Drawer = NewDOTDrawer(p.ID)
	for _, n := range p.Nodes {
		if err := d.AddNode(n); err != nil {
			return err
		}
	}
	for _, l := range p.Links {
		if err := d.AddLink(l); err != nil {
			return err
		}
	}
	if err := d.Highlight(selected...); err != nil {
		return err
	}

	return d.Draw(w)
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeAll(attrs map[string]string) map[string]string {
	res := make(map[string]string, len(attrs))
	for k, v := range attrs {
		res[k] = dotEscaper.Replace(v)
	}
	return res
}

func (d *DOTDrawer) generateDOT() (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   map[string]string{"label": dotEscaper.Replace(d.name), "rankdir": "LR"},
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}

	vertices, err := d.store.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}
	for _, vertex := range vertices {
		_, properties, err := d.store.Vertex(vertex)
		if err != nil {
			return desc, fmt.Errorf("failed to get vertex %s: %w", vertex, err)
		}
		desc.Statements = append(desc.Statements, statement{
			Source:           dotEscaper.Replace(vertex),
			SourceWeight:     properties.Weight,
			SourceAttributes: escapeAll(properties.Attributes),
		})
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}
	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         dotEscaper.Replace(edge.Source),
			Target:         dotEscaper.Replace(edge.Target),
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: escapeAll(edge.Properties.Attributes),
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
