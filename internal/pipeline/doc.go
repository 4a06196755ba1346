// Package pipeline orchestrates a run: scan the input root, resolve metadata
// for each audio-bearing folder, gate on confidence, organize accepted
// folders into the library, and record every decision in the tracker.
//
// Folders already tracked are skipped unless a force marker is present; the
// marker also bypasses the confidence gate. Dry runs log intended actions and
// mutate neither the filesystem nor the tracker.
package pipeline
