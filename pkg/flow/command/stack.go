package command

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

// Stack records executed commands for undo and redo.
type Stack struct {
	undo      []Command
	redo      []Command
	maxDepth  int
	batch     Batcher
	observers []Observer
}

// NewStack creates an empty stack.
func NewStack(opts ...StackOption) *Stack {
	s := &Stack{
		batch: func(fn func() error) error { return fn() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push executes c and records it. A failing command is not recorded and the
// redo history is kept.
func (s *Stack) Push(c Command) error {
	start := time.Now()
	if err := s.batch(c.Do); err != nil {
		return err
	}
	elapsed := time.Since(start)

	s.redo = nil
	s.undo = append(s.undo, c)
	if s.maxDepth > 0 && len(s.undo) > s.maxDepth {
		s.undo = s.undo[len(s.undo)-s.maxDepth:]
	}
	for _, o := range s.observers {
		o.OnDo(c.Label(), elapsed)
	}
	return nil
}

// Undo reverts the most recent command.
func (s *Stack) Undo() error {
	if len(s.undo) == 0 {
		return errors.Wrap(model.ErrState, "nothing to undo")
	}
	c := s.undo[len(s.undo)-1]

	start := time.Now()
	if err := s.batch(c.Undo); err != nil {
		return errors.Wrapf(err, "unable to undo %s", c.Label())
	}
	elapsed := time.Since(start)

	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, c)
	for _, o := range s.observers {
		o.OnUndo(c.Label(), elapsed)
	}
	return nil
}

// Redo replays the most recently undone command.
func (s *Stack) Redo() error {
	if len(s.redo) == 0 {
		return errors.Wrap(model.ErrState, "nothing to redo")
	}
	c := s.redo[len(s.redo)-1]

	start := time.Now()
	if err := s.batch(func() error { return redo(c) }); err != nil {
		return errors.Wrapf(err, "unable to redo %s", c.Label())
	}
	elapsed := time.Since(start)

	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, c)
	for _, o := range s.observers {
		o.OnRedo(c.Label(), elapsed)
	}
	return nil
}

// CanUndo reports whether Undo has something to revert.
func (s *Stack) CanUndo() bool {
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has something to replay.
func (s *Stack) CanRedo() bool {
	return len(s.redo) > 0
}

// UndoLabel returns the label of the command Undo would revert.
func (s *Stack) UndoLabel() string {
	if len(s.undo) == 0 {
		return ""
	}
	return s.undo[len(s.undo)-1].Label()
}

// RedoLabel returns the label of the command Redo would replay.
func (s *Stack) RedoLabel() string {
	if len(s.redo) == 0 {
		return ""
	}
	return s.redo[len(s.redo)-1].Label()
}

// Len returns the number of undoable commands.
func (s *Stack) Len() int {
	return len(s.undo)
}

// Clear forgets the whole history.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}
