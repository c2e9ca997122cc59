package model

import "github.com/pkg/errors"

var (
	// ErrSchema is returned when a pipeline flow or palette document is malformed.
	ErrSchema = errors.New("schema error")
	// ErrReference is returned when an operation references a missing object.
	ErrReference = errors.New("reference error")
	// ErrState is returned by undo or redo with nothing to replay.
	ErrState = errors.New("state error")
	// ErrExternalFetch is returned when the host fails to provide an external pipeline flow.
	ErrExternalFetch = errors.New("external fetch error")
)
