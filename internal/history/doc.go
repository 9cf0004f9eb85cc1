// Package history persists finished runs to a local SQLite database so
// results stay comparable across invocations. One row per run plus one row
// per upload attempt.
package history
