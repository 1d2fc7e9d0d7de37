// Package input frames the recognition module's byte stream into lines.
//
// A single reader goroutine owns the underlying stream and hands complete
// lines to the controller through a buffered channel, giving it a
// non-blocking Poll for the main loop and a blocking Next for the
// reconfiguration sequence.
package input
