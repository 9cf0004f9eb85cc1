// Package uploadapi is the HTTP client for the sermon upload API. Every
// operation returns an Outcome instead of an error: a failed upload is data
// for the run report, not a reason to stop the run. Retries for 429/5xx and
// transport errors are handled inside the client.
package uploadapi
