package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askiada/go-pipeline-flow/pkg/flow"
)

type traversalFunc func(c *flow.Controller, pipelineID string, ids []string) ([]string, error)

func newTraversalCmd(opts *rootOptions, name, short string, fn traversalFunc) *cobra.Command {
	var (
		pipelineID string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   name + " FILE NODE...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.controller(args[0])
			if err != nil {
				return err
			}
			ids, err := fn(c, pipelineID, args[1:])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(opts.out)
				return enc.Encode(ids)
			}
			for _, id := range ids {
				fmt.Fprintln(opts.out, id)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pipelineID, "pipeline", "p", "", "pipeline to search, the primary pipeline by default")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the node ids as a JSON array")

	return cmd
}

func newDotCmd(opts *rootOptions) *cobra.Command {
	var (
		pipelineID string
		selected   []string
		output     string
	)
	cmd := &cobra.Command{
		Use:   "dot FILE",
		Short: "Render a pipeline as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.controller(args[0])
			if err != nil {
				return err
			}
			if pipelineID != "" {
				if err := c.DisplaySubPipeline(pipelineID); err != nil {
					return err
				}
			}
			if len(selected) > 0 {
				if err := c.SetSelections(selected); err != nil {
					return err
				}
			}
			if output == "" {
				return c.ExportDOT(opts.out, "")
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			return c.ExportDOT(f, "")
		},
	}
	cmd.Flags().StringVarP(&pipelineID, "pipeline", "p", "", "pipeline to render, the primary pipeline by default")
	cmd.Flags().StringSliceVarP(&selected, "select", "s", nil, "objects to highlight")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}
