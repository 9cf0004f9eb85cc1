// Package metrics turns raw upload results into aggregate run statistics.
// Aggregation is pure: no clocks, no I/O, deterministic for a given input.
package metrics
