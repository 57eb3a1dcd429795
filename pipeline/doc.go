// Package pipeline sequences one full zstow run.
//
// Control flow is a single pass: enumerate source subfolders, measure each
// with the external sizer, classify sizes into buckets, archive the folders
// whose buckets fall inside the configured range, and flush the accumulated
// report at the end. Execution is single-threaded and per-folder failures
// never abort the run; only a missing source directory or a report write
// failure is fatal.
package pipeline
