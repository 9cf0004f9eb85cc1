// Package progress maintains a live Discord message per upload batch. One
// message lists every file; each stage change re-renders the whole embed and
// edits the message in place. Delivery is best effort: a failed edit is
// logged and dropped, never surfaced to the upload path.
package progress
