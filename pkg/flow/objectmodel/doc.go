// Package objectmodel holds the canonical in-memory pipeline flow: every
// pipeline of a document, indexed by id, with its nodes, links and comments
// kept in insertion order.
//
// All mutations validate their references before touching anything, so a
// failed call never leaves a partial change behind. Removals hand back what
// they removed together with its position, which lets a caller put it back
// exactly where it was.
//
// Subscribers are notified synchronously once per logical operation. Calls
// grouped with Batch notify once, after the outermost batch returns.
package objectmodel
