package flow

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/breadcrumb"
	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/drawer"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
	"github.com/askiada/go-pipeline-flow/pkg/flow/objectmodel"
)

const defaultPasteOffset = 10

// Controller edits one pipeline flow.
type Controller struct {
	store  *objectmodel.Store
	stack  *command.Stack
	crumbs *breadcrumb.Manager

	logger      *slog.Logger
	beforeEdit  BeforeEditActionHandler
	genID       func() string
	issued      map[string]struct{}
	pasteOffset float64
	stackOpts   []command.StackOption

	selection  selection
	clipboard  *clipboard
	pasteCount int
	palette    *model.Palette

	// fetched caches the pipeline flows loaded by the host, by external URL.
	fetched map[string]*model.Document
}

// New creates a controller with an empty document.
func New(opts ...Option) *Controller {
	c := &Controller{
		store:       objectmodel.New(),
		crumbs:      breadcrumb.New(""),
		logger:      slog.New(slog.DiscardHandler),
		genID:       uuid.NewString,
		issued:      make(map[string]struct{}),
		pasteOffset: defaultPasteOffset,
		fetched:     make(map[string]*model.Document),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stack = command.NewStack(append([]command.StackOption{command.WithBatcher(c.store.Batch)}, c.stackOpts...)...)
	c.store.Subscribe(c.pruneSelection)

	return c
}

// SetPipelineFlow loads doc. History, selection and breadcrumbs start over.
func (c *Controller) SetPipelineFlow(doc *model.Document) error {
	err := c.store.Batch(func() error {
		if err := c.store.SetPipelineFlow(doc); err != nil {
			return err
		}
		c.stack.Clear()
		c.selection = selection{}
		c.crumbs.Reset(c.store.PrimaryPipelineID())
		c.fetched = make(map[string]*model.Document)
		c.pasteCount = 0
		return nil
	})
	if err != nil {
		return err
	}
	c.logger.Debug("pipeline flow loaded", "primary", doc.PrimaryPipeline, "pipelines", len(doc.Pipelines))
	return nil
}

// GetPipelineFlow returns the document without externally stored pipelines
// and without temporary decorations.
func (c *Controller) GetPipelineFlow() *model.Document {
	return c.store.PipelineFlow()
}

// GetExternalPipelineFlows returns the externally stored pipelines, by URL.
func (c *Controller) GetExternalPipelineFlows() map[string]*model.Document {
	return c.store.ExternalPipelineFlows()
}

// Store gives read access to the underlying store.
func (c *Controller) Store() *objectmodel.Store {
	return c.store
}

// Subscribe registers l to be called once after every change.
func (c *Controller) Subscribe(l func()) func() {
	return c.store.Subscribe(l)
}

func (c *Controller) GetCommandStack() *command.Stack {
	return c.stack
}

// Undo reverts the last command.
func (c *Controller) Undo() error {
	label := c.stack.UndoLabel()
	if err := c.stack.Undo(); err != nil {
		return err
	}
	c.logger.Debug("command undone", "label", label, "depth", c.stack.Len())
	return nil
}

// Redo replays the last undone command.
func (c *Controller) Redo() error {
	label := c.stack.RedoLabel()
	if err := c.stack.Redo(); err != nil {
		return err
	}
	c.logger.Debug("command redone", "label", label, "depth", c.stack.Len())
	return nil
}

func (c *Controller) push(cmd command.Command) error {
	if err := c.stack.Push(cmd); err != nil {
		c.logger.Debug("command rejected", "label", cmd.Label(), "error", err)
		return err
	}
	c.logger.Debug("command executed", "label", cmd.Label(), "depth", c.stack.Len())
	return nil
}

// GetBreadcrumbs returns the displayed pipeline stack, root first.
func (c *Controller) GetBreadcrumbs() []model.Breadcrumb {
	return c.crumbs.All()
}

// CurrentPipelineID returns the pipeline on display.
func (c *Controller) CurrentPipelineID() string {
	return c.crumbs.Top().PipelineID
}

// pipelineID defaults an empty id to the displayed pipeline and checks it exists.
func (c *Controller) pipelineID(id string) (string, error) {
	if id == "" {
		id = c.CurrentPipelineID()
	}
	if !c.store.HasPipeline(id) {
		return "", errors.Wrapf(model.ErrReference, "pipeline %s not found", id)
	}
	return id, nil
}

// newID returns an id never used by the document nor issued before.
func (c *Controller) newID() string {
	for {
		id := c.genID()
		if _, ok := c.issued[id]; ok || c.store.Seen(id) {
			continue
		}
		c.issued[id] = struct{}{}
		return id
	}
}

// ExportDOT renders a pipeline as Graphviz DOT, highlighting the selection.
func (c *Controller) ExportDOT(w io.Writer, pipelineID string) error {
	pid, err := c.pipelineID(pipelineID)
	if err != nil {
		return err
	}
	p, err := c.store.Pipeline(pid)
	if err != nil {
		return err
	}
	var selected []string
	if c.selection.pipelineID == pid {
		for _, id := range c.selection.ids {
			if p.Node(id) != nil {
				selected = append(selected, id)
			}
		}
	}
	return drawer.DrawPipeline(w, p, selected...)
}
