package drawer

import (
	"io"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddNode adds a node to the drawing.
	AddNode(n *model.Node) error
	// AddLink adds a link between two nodes already added.
	AddLink(l *model.Link) error
	// Highlight marks nodes, typically the current selection.
	Highlight(ids ...string) error
	// Draw writes the drawing to w.
	Draw(w io.Writer) error
}
