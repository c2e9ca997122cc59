package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// readJSON returns the content of path as JSON. YAML files are converted.
func readJSON(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, errors.Wrapf(model.ErrSchema, "unable to parse %s: %v", path, err)
		}
		res, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(model.ErrSchema, "unable to convert %s: %v", path, err)
		}
		return res, nil
	default:
		return b, nil
	}
}

func readDocument(path string) (*model.Document, error) {
	b, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	doc, err := model.DecodeDocument(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return doc, nil
}

func readPalette(path string) (*model.Palette, error) {
	b, err := readJSON(path)
	if err != nil {
		return nil, err
	}
	p, err := model.DecodePalette(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}
