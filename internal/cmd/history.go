package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zstow/zstow/history"
)

// NewHistoryCmd creates and returns the history subcommand for the zstow CLI.
// It lists previous runs recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history OUT",
		Short: "List previous runs recorded in the history database",
		Long: `List runs recorded in OUT/` + history.DefaultFileName + `, newest first.

Runs appear here only when they were executed with --history.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runHistory(args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to list")

	return cmd
}

func runHistory(outDir string, limit int) {
	store, err := history.Open(filepath.Join(outDir, history.DefaultFileName))
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer store.Close()

	runs, err := store.LastRuns(limit)
	if err != nil {
		log.Fatalf("Failed to read history: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded. Run with --history to start collecting.")
		return
	}

	fmt.Printf("%-17s %-30s %8s %7s %12s %12s\n",
		"Stamp", "Source", "Folders", "Failed", "Input", "Output")
	for _, r := range runs {
		fmt.Printf("%-17s %-30s %8d %7d %12s %12s\n",
			r.Stamp, r.Source, r.FolderCount, r.FailedCount,
			humanize.IBytes(uint64(r.TotalInputBytes)),
			humanize.IBytes(uint64(r.TotalOutputBytes)))
	}
}
