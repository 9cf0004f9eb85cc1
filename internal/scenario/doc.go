// Package scenario runs stress scenarios against the upload API: a bounded
// worker pool pushes files through the presigned upload flow under a chosen
// temporal pattern, collecting one result per attempt. A single slow or
// failing file never stops the run; the wall-clock budget does.
package scenario
