// Package retry re-runs an operation with backoff while its error looks
// transient.
//
// Sessions use it for the final flush, where a momentary failure such as a
// busy file on a network share would otherwise cost every label of the run:
//
//	err := retry.Do(func() error {
//	    _, err := store.Save(path)
//	    return err
//	}, retry.DefaultConfig())
//
// Only I/O errors are retried by default. Missing paths, permission errors and
// context cancellation fail at once.
package retry
