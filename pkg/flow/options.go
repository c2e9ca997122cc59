package flow

import (
	"log/slog"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/measure"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

type Option func(c *Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithBeforeEditActionHandler(h BeforeEditActionHandler) Option {
	return func(c *Controller) {
		c.beforeEdit = h
	}
}

// WithMaxHistory caps the number of undoable commands.
func WithMaxHistory(depth int) Option {
	return func(c *Controller) {
		c.stackOpts = append(c.stackOpts, command.WithMaxDepth(depth))
	}
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) {
		c.genID = gen
	}
}

// WithPasteOffset sets how far each paste is moved from the copied objects.
func WithPasteOffset(offset float64) Option {
	return func(c *Controller) {
		c.pasteOffset = offset
	}
}

// WithMeasure records the duration of every command in m.
func WithMeasure(m measure.Measure) Option {
	return func(c *Controller) {
		c.stackOpts = append(c.stackOpts, command.WithObserver(measure.CommandObserver(m)))
	}
}

func WithPalette(p *model.Palette) Option {
	return func(c *Controller) {
		c.palette = p.Clone()
	}
}
