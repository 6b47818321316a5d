// Package batch runs document pipelines over a large file set.
//
// The Orchestrator partitions the input round-robin into sub-batches and
// processes them one at a time. Within a sub-batch every file is submitted to
// a shared worker pool and results are drained from a channel until each job
// has reported. Counting happens on the orchestrator goroutine only. A failed
// file is logged and counted, never fatal to the run.
package batch
