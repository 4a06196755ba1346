// Package resolver talks to the external AI metadata-extraction service.
//
// The service is an OpenRouter-compatible chat completions endpoint asked to
// return a single JSON metadata document per folder. The client enforces a
// per-call timeout, retries transient HTTP failures with capped exponential
// backoff, and tolerates the usual model formatting quirks (code fences,
// wrapped prose) when decoding. Callers treat any error as "no metadata";
// the client itself never invents a document.
package resolver
