package command

import "github.com/pkg/errors"

// Command is an invertible edit.
type Command interface {
	// Do applies the edit. It must either apply fully or return an error
	// without changing anything.
	Do() error
	// Undo reverts a successful Do.
	Undo() error
	// Label names the edit, for history menus and metrics.
	Label() string
}

// Redoer is implemented by commands whose redo differs from their first Do.
type Redoer interface {
	Redo() error
}

// Func builds a command from a pair of functions.
func Func(label string, do, undo func() error) Command {
	return &funcCommand{label: label, do: do, undo: undo}
}

type funcCommand struct {
	label    string
	do, undo func() error
}

func (c *funcCommand) Do() error     { return c.do() }
func (c *funcCommand) Undo() error   { return c.undo() }
func (c *funcCommand) Label() string { return c.label }

// Macro is an ordered list of commands undone as a single step.
type Macro struct {
	label    string
	commands []Command
}

// NewMacro groups commands under one label.
func NewMacro(label string, commands ...Command) *Macro {
	return &Macro{label: label, commands: commands}
}

// Label returns the macro label.
func (m *Macro) Label() string {
	return m.label
}

// Commands returns the sub-commands in execution order.
func (m *Macro) Commands() []Command {
	return m.commands
}

// Do runs the sub-commands in order. If one fails, the ones already applied
// are undone and the error is returned.
func (m *Macro) Do() error {
	return m.run(func(c Command) error { return c.Do() })
}

// Redo replays the sub-commands in order.
func (m *Macro) Redo() error {
	return m.run(redo)
}

func (m *Macro) run(apply func(c Command) error) error {
	for i, c := range m.commands {
		if err := apply(c); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := m.commands[j].Undo(); uerr != nil {
					return errors.Wrapf(uerr, "unable to roll back %q after %v", m.commands[j].Label(), err)
				}
			}
			return errors.Wrapf(err, "%s: %s", m.label, c.Label())
		}
	}
	return nil
}

// Undo reverts the sub-commands in reverse order.
func (m *Macro) Undo() error {
	for i := len(m.commands) - 1; i >= 0; i-- {
		if err := m.commands[i].Undo(); err != nil {
			return errors.Wrapf(err, "%s: undo %s", m.label, m.commands[i].Label())
		}
	}
	return nil
}

func redo(c Command) error {
	if r, ok := c.(Redoer); ok {
		return r.Redo()
	}
	return c.Do()
}
