// Package version provides version information and build metadata for zstow.
//
// Version information is sourced from compile-time variables (Version, Commit,
// Date) set via -ldflags, falling back to Go's debug.ReadBuildInfo() for
// development builds. The Makefile injects release values with:
//
//	-ldflags "-X github.com/zstow/zstow/version.Version=v1.0.0 ..."
package version
