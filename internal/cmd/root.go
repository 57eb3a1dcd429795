package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zstow/zstow/version"
)

// NewRootCmd creates and returns the root cobra command for the zstow CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zstow",
		Short: "zstow - bucket and archive folders as .tar.zst",
		Long: `zstow measures the immediate subfolders of a source directory, classifies
them into size buckets, and archives each one as a compressed .tar.zst file.

Size measurement and compression are delegated to external tools (du or
robocopy for dry-run sizing, tar piped into zstd for archiving); zstow
sequences the calls, classifies the results, and writes timestamped CSV,
JSON, and text reports into the output directory.

Use subcommands to perform different operations:
  - run: scan, bucket, and archive every subfolder, then write reports
  - scan: measure and report only, without archiving
  - buckets: print the size bucket table
  - history: list previous runs recorded in the history database`,
		Version: version.GetFullVersion(),
	}

	groupPipeline := "pipeline"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupPipeline,
		Title: "Pipeline Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	runCmd := NewRunCmd()
	scanCmd := NewScanCmd()
	bucketsCmd := NewBucketsCmd()
	historyCmd := NewHistoryCmd()

	runCmd.GroupID = groupPipeline
	scanCmd.GroupID = groupPipeline
	bucketsCmd.GroupID = groupUtilities
	historyCmd.GroupID = groupUtilities

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(historyCmd)

	return rootCmd
}
