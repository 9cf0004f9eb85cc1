// Package catalog discovers and reads the test WAV library on the recording
// host over SSH. Discovery runs a single find command on a control
// connection; bulk reads fan out over a pool of independent SFTP connections
// so concurrent upload workers never share a stream.
package catalog
