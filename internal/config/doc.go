// Package config loads, normalizes, and validates sermonbench configuration
// from TOML. Defaults cover a local uploader instance; the remote host and
// user must always be provided.
package config
