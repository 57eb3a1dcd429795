package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zstow/zstow/config"
	"github.com/zstow/zstow/logging"
	"github.com/zstow/zstow/pipeline"
	"github.com/zstow/zstow/scan"
	"github.com/zstow/zstow/version"
)

// NewScanCmd creates and returns the scan subcommand for the zstow CLI.
// It measures and reports folder sizes without archiving anything.
func NewScanCmd() *cobra.Command {
	var (
		cfgPath     string
		sizeTool    string
		writeTotals bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "scan SOURCE OUT",
		Short: "Measure and bucket subfolders without archiving",
		Long: `Measure every immediate subfolder of SOURCE with the external size tool,
classify each into a size bucket, and write the scan reports into OUT.

No archives are created. Useful for sizing a migration before committing to
the archive pass.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runScan(cmd, args[0], args[1], cfgPath, sizeTool, writeTotals, verbose)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a zstow.yaml config file")
	cmd.Flags().StringVar(&sizeTool, "size-tool", "", "Size tool: du or robocopy (default by platform)")
	cmd.Flags().BoolVar(&writeTotals, "totals", false, "Write the input-vs-output size report")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

func runScan(cmd *cobra.Command, source, outDir, cfgPath, sizeTool string, writeTotals, verbose bool) {
	logging.Setup(verbose)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cmd.Flags().Changed("size-tool") {
		cfg.SizeTool = sizeTool
	}

	sizer, err := scan.NewSizer(cfg.SizeTool)
	if err != nil {
		log.Fatalf("Invalid size tool: %v", err)
	}

	fmt.Printf("zstow %s starting (scan only)...\n\n", version.GetFullVersion())

	p := pipeline.New(pipeline.Options{
		Source:      source,
		OutDir:      outDir,
		ScanOnly:    true,
		WriteTotals: writeTotals,
	}, sizer, nil)

	rep, err := p.Run(time.Now())
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	if _, failed := rep.Counts(); failed > 0 {
		os.Exit(1)
	}
}
