package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zstow/zstow/bucket"
)

// NewBucketsCmd creates and returns the buckets subcommand for the zstow CLI.
// It prints the size classification table.
func NewBucketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buckets",
		Short: "Print the size bucket table",
		Long: `Print the named size buckets and their byte thresholds.

Bucket upper bounds are exclusive: a folder of exactly 1 GiB lands in the
"1-10 GB" bucket. These labels are valid values for --start-bucket and
--max-bucket.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range bucket.Thresholds() {
				if t.UpperBytes < 0 {
					fmt.Printf("%-14s no upper bound\n", t.Label)
					continue
				}
				fmt.Printf("%-14s under %s\n", t.Label, humanize.IBytes(uint64(t.UpperBytes)))
			}
			fmt.Printf("%-14s size scan failed\n", bucket.Unknown)
		},
	}
}
