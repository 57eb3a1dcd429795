// Package archive produces one .tar.zst file per source folder.
//
// Compression is delegated entirely to external tools: tar serializes the
// folder contents to a stream and zstd compresses it, so the package's own
// job is sequencing the two processes and committing the output safely. An
// archive appears under its final name only after both tools exit cleanly;
// until then it lives under a unique temp name that is removed on failure.
package archive
