// Package main provides the zstow command-line interface.
//
// zstow is a bulk folder archiver: it measures the immediate subfolders of a
// source directory with an external dry-run size tool, classifies them into
// named size buckets, archives each folder as a .tar.zst via an external
// tar+zstd pipeline, and writes timestamped CSV, JSON, and text reports.
//
// The main binary supports multiple subcommands:
//   - run: scan, bucket, and archive every subfolder, then write reports
//   - scan: measure and report only, without archiving
//   - buckets: print the size bucket table
//   - history: list previous runs recorded in the history database
package main
