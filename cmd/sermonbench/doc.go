// Command sermonbench stress-tests the sermon upload API with real WAV files
// pulled from the recording host, reporting throughput, percentiles, and
// failures per scenario.
package main
