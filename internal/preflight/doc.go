// Package preflight verifies runtime prerequisites before a run: directory
// access, free space on the output volume, and metadata service reachability.
// Checks report results rather than returning errors so callers can render
// the full list.
package preflight
