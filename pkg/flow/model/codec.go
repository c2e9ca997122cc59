package model

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateDocument checks the shape of a pipeline flow document: required
// fields, supported version, known node and link types.
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return errors.Wrap(ErrSchema, "pipeline flow is nil")
	}
	if err := structValidator().Struct(doc); err != nil {
		return errors.Wrapf(ErrSchema, "invalid pipeline flow: %v", err)
	}
	if doc.Version != SchemaVersion {
		return errors.Wrapf(ErrSchema, "unsupported pipeline flow version %q", doc.Version)
	}
	return nil
}

// ValidatePalette checks the shape of a palette document.
func ValidatePalette(p *Palette) error {
	if p == nil {
		return errors.Wrap(ErrSchema, "palette is nil")
	}
	if err := structValidator().Struct(p); err != nil {
		return errors.Wrapf(ErrSchema, "invalid palette: %v", err)
	}
	return nil
}

// DecodeDocument reads a JSON pipeline flow and validates its shape.
func DecodeDocument(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(ErrSchema, "unable to decode pipeline flow: %v", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodePalette reads a JSON palette and validates its shape.
func DecodePalette(r io.Reader) (*Palette, error) {
	p := &Palette{}
	if err := json.NewDecoder(r).Decode(p); err != nil {
		return nil, errors.Wrapf(ErrSchema, "unable to decode palette: %v", err)
	}
	if err := ValidatePalette(p); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeDocument writes doc as indented JSON.
func EncodeDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "unable to encode pipeline flow")
	}
	return nil
}

// ValidateStruct checks the validation tags of a single model value.
func ValidateStruct(v any) error {
	if err := structValidator().Struct(v); err != nil {
		return errors.Wrapf(ErrSchema, "invalid %T: %v", v, err)
	}
	return nil
}
