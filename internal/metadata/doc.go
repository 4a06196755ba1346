// Package metadata models the loosely-structured documents returned by the
// metadata resolver and turns them into deterministic, sanitized library path
// segments.
//
// The wire format is duck-typed (author and title may be plain strings or
// small objects); the types here normalize both variants at the decode
// boundary so the rest of the pipeline works with one explicit shape.
package metadata
