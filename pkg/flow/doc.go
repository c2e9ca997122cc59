// Package flow is the editing engine of a visual pipeline editor.
//
// A Controller owns one pipeline flow store, one command stack and one
// breadcrumb manager. Every structural edit goes through a command so it can
// be undone and redone, and every command notifies the store listeners once.
//
// Supernodes nest pipelines. The controller navigates into them with a
// breadcrumb stack and lazily loads pipelines stored by the host through the
// BeforeEditActionHandler callback.
package flow
