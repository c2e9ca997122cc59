// Package model provides the data structures of a pipeline flow document.
// It defines the document itself, its pipelines and their nodes, links and
// comments, the breadcrumbs used to navigate nested pipelines and the palette
// of reusable node templates, together with the errors shared by every flow package.
package model
