// Package tracker persists the per-folder processing ledger that makes
// repeated runs idempotent.
//
// The ledger is a single flat JSON document mapping relative folder path to
// its last decision ({status, timestamp, ...extra}). It is loaded fully at
// start and rewritten whole on every mark (write-through); a corrupt file is
// a fatal load error by design, since silently starting empty would
// reprocess everything.
package tracker
