package flow_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

const newExternalURL = "https://flows.example/new.json"

func readFlow(t *testing.T, name string) *model.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	doc, err := model.DecodeDocument(f)
	require.NoError(t, err)
	return doc
}

func readPalette(t *testing.T, name string) *model.Palette {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	p, err := model.DecodePalette(f)
	require.NoError(t, err)
	return p
}

func readJSON(t *testing.T, name string, v any) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// sequentialIDs generates gen-1, gen-2...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

// testHost answers edit actions the way a host application would: external
// pipeline flows are read from testdata/external and new external pipelines
// are stored under newExternalURL.
type testHost struct {
	t      *testing.T
	loads  map[string]int
	action []flow.EditType
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	return &testHost{t: t, loads: make(map[string]int)}
}

func (h *testHost) handle(a *flow.EditAction) (*flow.EditAction, error) {
	h.action = append(h.action, a.EditType)
	res := *a
	if a.ExternalPipelineFlowLoad {
		h.loads[a.ExternalURL]++
		res.ExternalPipelineFlow = readFlow(h.t, filepath.Join("external", path.Base(a.ExternalURL)))
		return &res, nil
	}
	if res.ExternalURL == "" {
		res.ExternalURL = newExternalURL
		res.ExternalPipelineFlowID = "new-flow"
	}
	return &res, nil
}

func newController(t *testing.T, flowName string, opts ...flow.Option) (*flow.Controller, *testHost) {
	t.Helper()
	host := newTestHost(t)
	opts = append([]flow.Option{
		flow.WithIDGenerator(sequentialIDs()),
		flow.WithBeforeEditActionHandler(host.handle),
	}, opts...)
	c := flow.New(opts...)
	require.NoError(t, c.SetPipelineFlow(readFlow(t, flowName)))
	return c, host
}

// state is everything an undo must restore.
type state struct {
	Snapshot *model.Document
	Crumbs   []model.Breadcrumb
	Palette  *model.Palette
}

func stateOf(c *flow.Controller) state {
	return state{
		Snapshot: c.Store().Snapshot(),
		Crumbs:   c.GetBreadcrumbs(),
		Palette:  c.GetPaletteData(),
	}
}
