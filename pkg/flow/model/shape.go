package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Shape records the keys an object was decoded from, in order, and the raw
// values of the keys this package does not know. An object carrying a shape
// encodes back to the same keys: zero values that were present stay present
// and unknown keys are written back untouched.
//
// A shape is never modified once decoded, copies of an object share it.
type Shape struct {
	keys  []string
	nulls map[string]bool
	extra map[string]json.RawMessage
}

// Has reports whether key was present in the decoded object.
func (s *Shape) Has(key string) bool {
	if s == nil {
		return false
	}
	for _, k := range s.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Extra returns the raw value of a key unknown to this package.
func (s *Shape) Extra(key string) (json.RawMessage, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.extra[key]
	return v, ok
}

var fieldCache sync.Map // reflect.Type -> map[string]reflect.Type

// jsonFields maps the json keys of a struct type to their field types.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	if v, ok := fieldCache.Load(t); ok {
		return v.(map[string]reflect.Type)
	}
	res := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		res[name] = f.Type
	}
	fieldCache.Store(t, res)
	return res
}

func zeroJSON(t reflect.Type) json.RawMessage {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return json.RawMessage("[]")
	case reflect.Map:
		return json.RawMessage("{}")
	case reflect.Pointer, reflect.Interface:
		return json.RawMessage("null")
	}
	b, _ := json.Marshal(reflect.Zero(t).Interface())
	return b
}

// objectKeys splits a JSON object into its keys, in order, and raw values.
func objectKeys(b []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.Errorf("expected an object, got %v", tok)
	}
	var keys []string
	raws := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, dup := raws[key]; !dup {
			keys = append(keys, key)
		}
		raws[key] = raw
	}
	return keys, raws, nil
}

// decodeShaped decodes b into v, a pointer to a struct without JSON methods,
// and returns the shape of b. Skipped keys are left out of the shape.
func decodeShaped(b []byte, v any, skip ...string) (*Shape, error) {
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, nil
	}
	keys, raws, err := objectKeys(b)
	if err != nil {
		return nil, err
	}
	fields := jsonFields(reflect.TypeOf(v).Elem())
	s := &Shape{}
	for _, k := range keys {
		if containsKey(skip, k) {
			continue
		}
		s.keys = append(s.keys, k)
		if _, known := fields[k]; !known {
			if s.extra == nil {
				s.extra = make(map[string]json.RawMessage)
			}
			s.extra[k] = raws[k]
			continue
		}
		if bytes.Equal(raws[k], []byte("null")) {
			if s.nulls == nil {
				s.nulls = make(map[string]bool)
			}
			s.nulls[k] = true
		}
	}
	return s, nil
}

// encodeShaped encodes v, a struct without JSON methods, following s. Keys
// of s come first in their decoded order, then keys set since decoding.
func encodeShaped(v any, s *Shape) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || s == nil {
		return b, err
	}
	keys, raws, err := objectKeys(b)
	if err != nil {
		return nil, err
	}
	fields := jsonFields(reflect.TypeOf(v))

	out := make([]string, 0, len(s.keys)+len(keys))
	vals := make(map[string]json.RawMessage, len(s.keys)+len(keys))
	for _, k := range s.keys {
		switch raw, ok := raws[k]; {
		case ok && bytes.Equal(raw, []byte("null")) && !s.nulls[k] && fields[k] != nil:
			// a nil slice or map read from [] or {}
			vals[k] = zeroJSON(fields[k])
		case ok:
			vals[k] = raw
		case s.extra[k] != nil:
			vals[k] = s.extra[k]
		case s.nulls[k]:
			vals[k] = json.RawMessage("null")
		case fields[k] != nil:
			vals[k] = zeroJSON(fields[k])
		default:
			continue
		}
		out = append(out, k)
	}
	for _, k := range keys {
		if _, done := vals[k]; done {
			continue
		}
		raw := raws[k]
		if bytes.Equal(raw, []byte("null")) {
			continue
		}
		if t := fields[k]; t != nil && bytes.Equal(raw, zeroJSON(t)) {
			continue
		}
		vals[k] = raw
		out = append(out, k)
	}
	return writeObject(out, vals)
}

func writeObject(keys []string, vals map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vals[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

type (
	documentFields   Document
	pipelineFields   Pipeline
	nodeFields       Node
	portFields       Port
	decorationFields Decoration
	linkFields       Link
	commentFields    Comment
)

func (d Document) MarshalJSON() ([]byte, error) { return encodeShaped(documentFields(d), d.Shape) }

func (d *Document) UnmarshalJSON(b []byte) (err error) {
	d.Shape, err = decodeShaped(b, (*documentFields)(d))
	return err
}

func (p Pipeline) MarshalJSON() ([]byte, error) { return encodeShaped(pipelineFields(p), p.Shape) }

func (p *Pipeline) UnmarshalJSON(b []byte) (err error) {
	p.Shape, err = decodeShaped(b, (*pipelineFields)(p))
	return err
}

func (n Node) MarshalJSON() ([]byte, error) { return encodeShaped(nodeFields(n), n.Shape) }

func (n *Node) UnmarshalJSON(b []byte) (err error) {
	n.Shape, err = decodeShaped(b, (*nodeFields)(n))
	return err
}

func (p Port) MarshalJSON() ([]byte, error) { return encodeShaped(portFields(p), p.Shape) }

func (p *Port) UnmarshalJSON(b []byte) (err error) {
	p.Shape, err = decodeShaped(b, (*portFields)(p))
	return err
}

func (d Decoration) MarshalJSON() ([]byte, error) {
	return encodeShaped(decorationFields(d), d.Shape)
}

func (d *Decoration) UnmarshalJSON(b []byte) (err error) {
	d.Shape, err = decodeShaped(b, (*decorationFields)(d))
	return err
}

func (l Link) MarshalJSON() ([]byte, error) { return encodeShaped(linkFields(l), l.Shape) }

func (l *Link) UnmarshalJSON(b []byte) (err error) {
	l.Shape, err = decodeShaped(b, (*linkFields)(l))
	return err
}

func (c Comment) MarshalJSON() ([]byte, error) { return encodeShaped(commentFields(c), c.Shape) }

func (c *Comment) UnmarshalJSON(b []byte) (err error) {
	c.Shape, err = decodeShaped(b, (*commentFields)(c))
	return err
}

// MarshalJSON writes the template as its node plus the sub-pipelines.
func (nt NodeTemplate) MarshalJSON() ([]byte, error) {
	b, err := nt.Node.MarshalJSON()
	if err != nil || len(nt.SubPipelines) == 0 {
		return b, err
	}
	keys, vals, err := objectKeys(b)
	if err != nil {
		return nil, err
	}
	subs, err := json.Marshal(nt.SubPipelines)
	if err != nil {
		return nil, err
	}
	vals["sub_pipelines"] = subs
	return writeObject(append(keys, "sub_pipelines"), vals)
}

func (nt *NodeTemplate) UnmarshalJSON(b []byte) error {
	var subs struct {
		SubPipelines []*Pipeline `json:"sub_pipelines"`
	}
	if err := json.Unmarshal(b, &subs); err != nil {
		return err
	}
	s, err := decodeShaped(b, (*nodeFields)(&nt.Node), "sub_pipelines")
	if err != nil {
		return err
	}
	nt.Node.Shape = s
	nt.SubPipelines = subs.SubPipelines
	return nil
}
