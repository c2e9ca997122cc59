package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-pipeline-flow/pkg/flow"
	"github.com/askiada/go-pipeline-flow/pkg/flow/measure"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

type editOptions struct {
	pipelineID  string
	selected    []string
	actions     []string
	palette     string
	externalDir string
	output      string
	stats       bool
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	eo := &editOptions{}
	cmd := &cobra.Command{
		Use:   "edit FILE",
		Short: "Run context menu actions against a document",
		Long: `edit selects objects in a pipeline and runs context menu actions on
them in order, then writes the resulting document. External pipeline flows
are read from --externals, keyed by the base name of their URL, and written
back there when --output is set.`,
		Example: `  flowctl edit flow.json -s node-1,node-2 -a createSuperNode -o out.json
  flowctl edit flow.yaml -s group -a convertSuperNodeLocalToExternal -x flows/ -o flow.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts, eo, args[0])
		},
	}
	cmd.Flags().StringVarP(&eo.pipelineID, "pipeline", "p", "", "pipeline to edit, the primary pipeline by default")
	cmd.Flags().StringSliceVarP(&eo.selected, "select", "s", nil, "objects to select before the first action")
	cmd.Flags().StringArrayVarP(&eo.actions, "action", "a", nil, "context menu action, repeatable")
	cmd.Flags().StringVar(&eo.palette, "palette", "", "palette document used by saveToPalette")
	cmd.Flags().StringVarP(&eo.externalDir, "externals", "x", ".", "directory holding external pipeline flows")
	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "write the document to a file instead of stdout")
	cmd.Flags().BoolVar(&eo.stats, "stats", false, "print command timings to stderr")

	return cmd
}

func runEdit(opts *rootOptions, eo *editOptions, file string) error {
	m := measure.NewDefaultMeasure()
	host := &dirHost{dir: eo.externalDir}
	extra := []flow.Option{flow.WithBeforeEditActionHandler(host.handle), flow.WithMeasure(m)}
	if eo.palette != "" {
		p, err := readPalette(eo.palette)
		if err != nil {
			return err
		}
		extra = append(extra, flow.WithPalette(p))
	}
	c, err := opts.controller(file, extra...)
	if err != nil {
		return err
	}
	if eo.pipelineID != "" {
		if err := c.DisplaySubPipeline(eo.pipelineID); err != nil {
			return err
		}
	}
	if len(eo.selected) > 0 {
		if err := c.SetSelections(eo.selected); err != nil {
			return err
		}
	}
	for _, action := range eo.actions {
		if err := c.ContextMenuActionHandler(action); err != nil {
			return errors.Wrapf(err, "action %s", action)
		}
	}

	if eo.stats {
		printStats(opts, m)
	}
	if err := writeDocument(eo.output, opts, c.GetPipelineFlow()); err != nil {
		return err
	}
	if eo.output == "" {
		return nil
	}
	for url, doc := range c.GetExternalPipelineFlows() {
		if err := writeDocument(host.path(url), opts, doc); err != nil {
			return err
		}
	}
	return nil
}

func writeDocument(file string, opts *rootOptions, doc *model.Document) error {
	if file == "" {
		return model.EncodeDocument(opts.out, doc)
	}
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", file)
	}
	defer f.Close()
	return model.EncodeDocument(f, doc)
}

func printStats(opts *rootOptions, m *measure.DefaultMeasure) {
	for _, name := range m.Names() {
		mt := m.GetMetric(name)
		fmt.Fprintf(opts.errOut, "%-20s do=%d undo=%d redo=%d total=%s\n", name,
			mt.Count(measure.DoKind), mt.Count(measure.UndoKind), mt.Count(measure.RedoKind), mt.TotalDuration())
	}
}

// dirHost serves external pipeline flows from a directory.
type dirHost struct {
	dir string
	n   int
}

func (h *dirHost) path(url string) string {
	return filepath.Join(h.dir, path.Base(url))
}

func (h *dirHost) handle(a *flow.EditAction) (*flow.EditAction, error) {
	res := *a
	if a.ExternalPipelineFlowLoad {
		doc, err := readDocument(h.path(a.ExternalURL))
		if err != nil {
			return nil, err
		}
		res.ExternalPipelineFlow = doc
		return &res, nil
	}
	if res.ExternalURL == "" {
		h.n++
		prefix := a.SupernodeID
		if prefix == "" {
			prefix = "flow"
		}
		res.ExternalPipelineFlowID = fmt.Sprintf("%s-%d", prefix, h.n)
		res.ExternalURL = "file://" + filepath.ToSlash(h.path(res.ExternalPipelineFlowID+".json"))
	}
	return &res, nil
}
