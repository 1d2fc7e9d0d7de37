// Package instance keeps a single controller process per host.
//
// Two controllers reading the same serial port would split the line stream
// between them and reconfigure the card concurrently.
package instance
