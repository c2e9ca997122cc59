package objectmodel_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
	"github.com/askiada/go-pipeline-flow/pkg/flow/objectmodel"
)

func readFlow(t *testing.T, name string) *model.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	doc, err := model.DecodeDocument(f)
	require.NoError(t, err)
	return doc
}

func loadStore(t *testing.T, name string) *objectmodel.Store {
	t.Helper()
	s := objectmodel.New()
	require.NoError(t, s.SetPipelineFlow(readFlow(t, name)))
	return s
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
