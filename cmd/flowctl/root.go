package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/askiada/go-pipeline-flow/pkg/flow"
)

type rootOptions struct {
	verbose bool
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}
	cmd := &cobra.Command{
		Use:   "flowctl",
		Short: "Inspect and edit pipeline flow documents",
		Long: `flowctl reads pipeline flow documents, JSON or YAML, and runs the
pipeline flow controller against them: validation, branch queries,
Graphviz export and scripted edits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log controller activity to stderr")

	cmd.AddCommand(
		newValidateCmd(opts),
		newTraversalCmd(opts, "branch", "List the nodes connected to the given nodes", (*flow.Controller).GetBranchNodes),
		newTraversalCmd(opts, "upstream", "List the nodes feeding the given nodes", (*flow.Controller).GetUpstreamNodes),
		newTraversalCmd(opts, "downstream", "List the nodes fed by the given nodes", (*flow.Controller).GetDownstreamNodes),
		newDotCmd(opts),
		newEditCmd(opts),
	)

	return cmd
}

func (o *rootOptions) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(o.errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// controller loads the document at path into a new controller.
func (o *rootOptions) controller(path string, extra ...flow.Option) (*flow.Controller, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	c := flow.New(append([]flow.Option{flow.WithLogger(o.logger().With("file", path))}, extra...)...)
	if err := c.SetPipelineFlow(doc); err != nil {
		return nil, err
	}
	return c, nil
}
