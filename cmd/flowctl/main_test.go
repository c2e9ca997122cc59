package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

const flowTestdata = "../../pkg/flow/testdata"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		files   []string
		want    []string
		wantErr error
	}{
		"json and yaml": {
			files: []string{filepath.Join(flowTestdata, "start_flow.json"), "testdata/chain.yaml"},
			want: []string{
				"ok   " + filepath.Join(flowTestdata, "start_flow.json"),
				"ok   testdata/chain.yaml",
			},
		},
		"every file is reported": {
			files: []string{"testdata/missing_primary.json", "testdata/chain.yaml", "testdata/truncated.json", "testdata/absent.json"},
			want: []string{
				"FAIL testdata/missing_primary.json",
				"ok   testdata/chain.yaml",
				"FAIL testdata/truncated.json",
				"FAIL testdata/absent.json",
			},
			wantErr: errInvalidDocuments,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, _, err := run(t, append([]string{"validate", "-c", "2"}, tc.files...)...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
			require.Len(t, lines, len(tc.want))
			for i, want := range tc.want {
				assert.True(t, bytes.HasPrefix(lines[i], []byte(want)), "line %d: %s", i, lines[i])
			}
		})
	}
}

func TestReadDocumentErrors(t *testing.T) {
	t.Parallel()

	_, err := (&rootOptions{}).controller("testdata/missing_primary.json")
	require.ErrorIs(t, err, model.ErrSchema)
	_, err = readDocument("testdata/truncated.json")
	require.ErrorIs(t, err, model.ErrSchema)
	_, err = readDocument("testdata/absent.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTraversal(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args []string
		want string
	}{
		"downstream": {
			args: []string{"downstream", "testdata/chain.yaml", "read"},
			want: "read\nclean\nwrite\n",
		},
		"upstream": {
			args: []string{"upstream", "testdata/chain.yaml", "write"},
			want: "write\nclean\nread\n",
		},
		"isolated node": {
			args: []string{"branch", "testdata/chain.yaml", "lonely"},
			want: "lonely\n",
		},
		"json output": {
			args: []string{"downstream", "--json", filepath.Join(flowTestdata, "branch_flow.json"), "7015d906-2eae-45c1-999e-fb888ed957e5"},
			want: `["7015d906-2eae-45c1-999e-fb888ed957e5","sink-1","sink-2"]` + "\n",
		},
		"sub-pipeline": {
			args: []string{"downstream", "-p", "sub-7015", filepath.Join(flowTestdata, "branch_flow.json"), "sub-entry"},
			want: "sub-entry\nsub-work\nsub-exit\n",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, _, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}

	_, _, err := run(t, "branch", "testdata/chain.yaml", "ghost")
	require.ErrorIs(t, err, model.ErrReference)
}

func TestDot(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "dot", filepath.Join(flowTestdata, "start_flow.json"), "-s", "idGWRVT47XDV")
	require.NoError(t, err)
	assert.Contains(t, out, "strict digraph")
	assert.Contains(t, out, `"id8I6RH2V91XW" -> "idGWRVT47XDV"`)

	file := filepath.Join(t.TempDir(), "sub.dot")
	_, _, err = run(t, "dot", filepath.Join(flowTestdata, "start_flow.json"), "-p", "pipeline-sub", "-o", file)
	require.NoError(t, err)
	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"b-in" -> "s-step"`)
}

func TestEdit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "out.json")
	_, stats, err := run(t, "edit", "testdata/chain.yaml",
		"-s", "clean", "-a", "createSuperNodeExternal", "-x", dir, "-o", output, "--stats")
	require.NoError(t, err)
	assert.Contains(t, stats, "do=1")

	doc, err := readDocument(output)
	require.NoError(t, err)
	require.Len(t, doc.Pipelines, 1)
	primary := doc.Pipeline("main")
	require.NotNil(t, primary)
	assert.Nil(t, primary.Node("clean"))
	var sn *model.Node
	for _, n := range primary.Nodes {
		if n.IsSupernode() {
			sn = n
		}
	}
	require.NotNil(t, sn)
	assert.Equal(t, "flow-1", sn.ExternalPipelineFlowID)

	external, err := readDocument(filepath.Join(dir, "flow-1.json"))
	require.NoError(t, err)
	sub := external.Pipeline(sn.SubPipelineID())
	require.NotNil(t, sub)
	assert.NotNil(t, sub.Node("clean"))

	// the external pipeline is fetched back from the directory
	out, _, err := run(t, "edit", output, "-s", sn.ID, "-a", "convertSuperNodeExternalToLocal", "-x", dir)
	require.NoError(t, err)
	local, err := model.DecodeDocument(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Len(t, local.Pipelines, 2)
}

func TestEditErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args    []string
		wantErr error
	}{
		"unknown action": {
			args:    []string{"edit", "testdata/chain.yaml", "-s", "clean", "-a", "explode"},
			wantErr: model.ErrReference,
		},
		"empty selection": {
			args:    []string{"edit", "testdata/chain.yaml", "-a", "copy"},
			wantErr: model.ErrState,
		},
		"unknown object": {
			args:    []string{"edit", "testdata/chain.yaml", "-s", "ghost", "-a", "copy"},
			wantErr: model.ErrReference,
		},
		"bad palette": {
			args:    []string{"edit", "testdata/chain.yaml", "--palette", "testdata/truncated.json"},
			wantErr: model.ErrSchema,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, _, err := run(t, tc.args...)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestEditSaveToPalette(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "edit", "testdata/chain.yaml", "--palette", filepath.Join(flowTestdata, "palette.json"),
		"-s", "clean", "-a", "saveToPalette", "-a", "undo", "-a", "redo", "-a", "paste")
	require.ErrorIs(t, err, model.ErrState)
	assert.Empty(t, out)

	_, errOut, err := run(t, "-v", "edit", "testdata/chain.yaml", "-s", "clean", "-a", "copy", "-a", "paste")
	require.NoError(t, err)
	assert.Contains(t, errOut, "context menu action")

	var doc model.Document
	out, _, err = run(t, "edit", "testdata/chain.yaml", "-s", "clean", "-a", "copy", "-a", "paste")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Pipeline("main").Nodes, 5)
}
