// Package report turns aggregated run metrics into the persisted JSON
// artifact and the console summary. The JSON schema is stable across runs so
// reports stay diffable and comparable downstream.
package report
