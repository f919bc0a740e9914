// Package checkpoint persists the session position so a later run resumes where
// the previous one stopped.
//
// The checkpoint lives beside the record file, with the record's extension
// replaced by .sav. Only the stamp field is required; updated_at and
// sequence_digest are written for diagnostics and tolerated when missing.
//
// Loading never fails: an absent, unreadable or malformed checkpoint yields the
// zero checkpoint and the session starts from the first image. Saving is atomic.
package checkpoint
