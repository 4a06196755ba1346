// Package config loads, validates, and normalizes shelfsort configuration.
//
// Configuration comes from a TOML file (default ~/.config/shelfsort/config.toml,
// with a project-local shelfsort.toml fallback). Load applies defaults, expands
// ~ and relative paths to absolute ones, and rejects unusable combinations up
// front so later stages can assume a coherent Config. The embedded sample file
// backs the 'config init' command.
package config
