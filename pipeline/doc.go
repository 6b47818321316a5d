// Package pipeline runs one document through open, extract, chunk, validate
// and save.
//
// A Pipeline is shared by all workers of a run. Each call to Run is
// independent: it never panics and never returns an error, reporting the
// terminal State and the cause of a failure in its Result instead. When the
// context carries a deadline, Run gives up as soon as the deadline passes and
// reports core.ErrTimeout.
//
// With a checkpoint repository configured, a source whose size, modification
// time and chunking settings match its last successful run, and whose
// artifact still exists, is reported as Skipped without being opened.
package pipeline
