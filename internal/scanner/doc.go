// Package scanner walks an input root and reports folders that directly
// contain audiobook audio files, along with the sentinel observations
// (force marker, metadata hint) the pipeline needs to decide how to treat
// each folder.
package scanner
