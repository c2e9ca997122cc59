package command_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-pipeline-flow/pkg/flow/command"
	"github.com/askiada/go-pipeline-flow/pkg/flow/model"
)

type counter struct {
	value int
}

func add(c *counter, n int) command.Command {
	return command.Func(fmt.Sprintf("add %d", n), func() error {
		c.value += n
		return nil
	}, func() error {
		c.value -= n
		return nil
	})
}

func failing(label string) command.Command {
	return command.Func(label, func() error {
		return assert.AnError
	}, func() error {
		return nil
	})
}

func TestStackPushUndoRedo(t *testing.T) {
	t.Parallel()

	c := &counter{}
	s := command.NewStack()
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	require.NoError(t, s.Push(add(c, 1)))
	require.NoError(t, s.Push(add(c, 10)))
	assert.Equal(t, 11, c.value)
	assert.Equal(t, "add 10", s.UndoLabel())

	require.NoError(t, s.Undo())
	assert.Equal(t, 1, c.value)
	assert.True(t, s.CanRedo())
	assert.Equal(t, "add 10", s.RedoLabel())

	require.NoError(t, s.Redo())
	assert.Equal(t, 11, c.value)

	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.Equal(t, 0, c.value)
	assert.ErrorIs(t, s.Undo(), model.ErrState)

	require.NoError(t, s.Push(add(c, 5)))
	assert.False(t, s.CanRedo(), "a push discards the redo tail")
	assert.ErrorIs(t, s.Redo(), model.ErrState)
	assert.Equal(t, "", s.RedoLabel())
}

func TestStackFailingCommandIsNotRecorded(t *testing.T) {
	t.Parallel()

	c := &counter{}
	s := command.NewStack()
	require.NoError(t, s.Push(add(c, 1)))
	require.NoError(t, s.Undo())

	require.ErrorIs(t, s.Push(failing("boom")), assert.AnError)
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())
}

func TestStackMaxDepth(t *testing.T) {
	t.Parallel()

	c := &counter{}
	s := command.NewStack(command.WithMaxDepth(2))
	for i := 1; i <= 4; i++ {
		require.NoError(t, s.Push(add(c, i)))
	}
	assert.Equal(t, 2, s.Len())
	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.ErrorIs(t, s.Undo(), model.ErrState)
	assert.Equal(t, 3, c.value)

	s.Clear()
	assert.False(t, s.CanRedo())
}

func TestMacroRollsBack(t *testing.T) {
	t.Parallel()

	c := &counter{}
	s := command.NewStack()

	ok := command.NewMacro("both", add(c, 1), add(c, 2))
	require.NoError(t, s.Push(ok))
	assert.Equal(t, 3, c.value)
	assert.Len(t, ok.Commands(), 2)
	require.NoError(t, s.Undo())
	assert.Equal(t, 0, c.value)
	require.NoError(t, s.Redo())
	assert.Equal(t, 3, c.value)

	bad := command.NewMacro("partial", add(c, 100), failing("boom"))
	err := s.Push(bad)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, c.value)
	assert.Equal(t, "both", s.UndoLabel())
}

type batchCounter struct {
	batches int
}

func (b *batchCounter) batch(fn func() error) error {
	b.batches++
	return fn()
}

type recorder struct {
	events []string
}

func (r *recorder) OnDo(label string, _ time.Duration)   { r.events = append(r.events, "do "+label) }
func (r *recorder) OnUndo(label string, _ time.Duration) { r.events = append(r.events, "undo "+label) }
func (r *recorder) OnRedo(label string, _ time.Duration) { r.events = append(r.events, "redo "+label) }

func TestStackBatcherAndObserver(t *testing.T) {
	t.Parallel()

	c := &counter{}
	b := &batchCounter{}
	r := &recorder{}
	s := command.NewStack(command.WithBatcher(b.batch), command.WithObserver(r))

	require.NoError(t, s.Push(command.NewMacro("macro", add(c, 1), add(c, 2), add(c, 3))))
	require.NoError(t, s.Undo())
	require.NoError(t, s.Redo())
	require.Error(t, s.Push(failing("boom")))

	assert.Equal(t, 4, b.batches)
	assert.Equal(t, []string{"do macro", "undo macro", "redo macro"}, r.events)
}
