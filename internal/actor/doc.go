// Package actor implements the shared slot-machine actor.
//
// The actor owns the game state (loading, ready, idle, spinning, free spin)
// and its context, most importantly the element load-status map that the
// load-completion aggregator writes and the load screen reads.
//
// Thread-safety model:
//   - Send(): safe from any goroutine
//   - Snapshot(): safe from any goroutine
//   - Run() or Drain(): exactly one caller at a time
//
// All state changes happen in the goroutine calling Run (or Drain, in
// tests), one event at a time. Subscribers are notified through the
// configured dispatch function, which the app points at the UI loop so that
// snapshot handlers run on the same thread as the scene.
//
// UPDATE_ELEMENT_STATUS payloads are merged into the current map rather
// than replacing it. Two completions that were built from the same stale
// snapshot therefore both survive, and a loaded entry never reverts.
package actor
