// Package classifier turns one line of the recognition module's output into a
// device.Event.
//
// Lines are tokenized instead of searched for substrings, so the identity tag
// face1 never matches inside face10 and a marker embedded in another word is
// rejected as malformed.
package classifier
