package command

import "time"

// Observer is told how long each command took.
type Observer interface {
	OnDo(label string, elapsed time.Duration)
	OnUndo(label string, elapsed time.Duration)
	OnRedo(label string, elapsed time.Duration)
}

// Batcher runs fn as one logical change, typically deferring store notifications.
type Batcher func(fn func() error) error

type StackOption func(s *Stack)

// WithMaxDepth caps the number of undoable commands. Zero means unlimited.
func WithMaxDepth(depth int) StackOption {
	return func(s *Stack) {
		s.maxDepth = depth
	}
}

// WithBatcher wraps every do, undo and redo in b.
func WithBatcher(b Batcher) StackOption {
	return func(s *Stack) {
		s.batch = b
	}
}

// WithObserver registers an observer of command durations.
func WithObserver(o Observer) StackOption {
	return func(s *Stack) {
		s.observers = append(s.observers, o)
	}
}
