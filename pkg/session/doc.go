// Package session runs the interactive labeling loop.
//
// An Engine owns the position and the in-memory label store. Each iteration it
// shows the current image through a Display, reads one key code with a short
// timeout and dispatches it against the resolved bindings:
//
//	quit   -> stop
//	back   -> position - 1
//	next   -> position + 1
//	delete -> clear the current image's label
//	label  -> assign, then position + 1
//
// Anything else, including keys.None, re-renders the same image. The position
// is reduced modulo the sequence length after every key so navigation wraps in
// both directions. A Display that stops being visible ends the loop even when a
// quit key arrived in the same tick.
//
// A Session wraps the engine with the load and flush steps. Session.Run always
// flushes the record file and the checkpoint before returning, including when
// the display returns an error or panics.
package session
