// Package history keeps an optional SQLite journal of runs and per-folder
// decisions. It is diagnostics only: the tracker remains the sole source of
// truth for idempotency, and a disabled or missing journal never changes what
// a run does. All Store methods are safe on a nil receiver so callers can
// wire the journal unconditionally.
package history
