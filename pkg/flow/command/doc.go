// Package command provides the undo/redo history of a pipeline flow editor.
//
// Every structural edit is wrapped in a Command that knows how to apply and
// revert itself. A Stack executes commands, records them, and replays them
// backwards or forwards. Commands capture at construction time whatever they
// need to invert themselves, so redo replays exactly the same change.
package command
