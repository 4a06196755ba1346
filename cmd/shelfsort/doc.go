// Command shelfsort organizes audiobook folders into an Author/Series/Title
// library using an AI metadata resolver, tracking processed folders so
// repeated runs are idempotent.
package main
