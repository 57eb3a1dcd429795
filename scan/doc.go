// Package scan enumerates source subfolders and measures their sizes.
//
// Enumeration lists the immediate children of the source directory only;
// recursion is left to the external size tools. Size measurement is a
// dry-run: it delegates to du or robocopy in list-only mode, which walk the
// tree and report an aggregate byte count without copying data.
package scan
