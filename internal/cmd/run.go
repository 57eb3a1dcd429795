package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zstow/zstow/archive"
	"github.com/zstow/zstow/config"
	"github.com/zstow/zstow/history"
	"github.com/zstow/zstow/logging"
	"github.com/zstow/zstow/pipeline"
	"github.com/zstow/zstow/report"
	"github.com/zstow/zstow/scan"
	"github.com/zstow/zstow/version"
)

// NewRunCmd creates and returns the run subcommand for the zstow CLI.
// It performs the full scan-bucket-archive-report pipeline.
func NewRunCmd() *cobra.Command {
	var (
		cfgPath      string
		level        int
		threads      int
		retries      int
		startBucket  string
		maxBucket    string
		sizeTool     string
		skipExisting bool
		deleteAfter  bool
		writeTotals  bool
		useHistory   bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "run SOURCE OUT",
		Short: "Scan, bucket, and archive every subfolder of SOURCE",
		Long: `Run the full pipeline: measure every immediate subfolder of SOURCE,
classify it into a size bucket, archive folders inside the configured bucket
range as OUT/<name>.tar.zst, and write timestamped reports into OUT.

Folders whose size scan or archive fails are recorded and skipped; the run
continues to the next folder. The exit code is non-zero when any folder
failed.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			runRun(cmd, args[0], args[1], runFlags{
				cfgPath:      cfgPath,
				level:        level,
				threads:      threads,
				retries:      retries,
				startBucket:  startBucket,
				maxBucket:    maxBucket,
				sizeTool:     sizeTool,
				skipExisting: skipExisting,
				deleteAfter:  deleteAfter,
				writeTotals:  writeTotals,
				useHistory:   useHistory,
				verbose:      verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a zstow.yaml config file")
	cmd.Flags().IntVarP(&level, "level", "l", 6, "zstd compression level (1-19)")
	cmd.Flags().IntVarP(&threads, "threads", "T", 0, "zstd worker threads (0 = all cores)")
	cmd.Flags().IntVarP(&retries, "retries", "r", 2, "Archive attempts per folder")
	cmd.Flags().StringVar(&startBucket, "start-bucket", "<1 GB", "Smallest bucket to archive")
	cmd.Flags().StringVar(&maxBucket, "max-bucket", "10 TB+", "Largest bucket to archive")
	cmd.Flags().StringVar(&sizeTool, "size-tool", "", "Size tool: du or robocopy (default by platform)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", true, "Skip folders whose archive already exists")
	cmd.Flags().BoolVar(&deleteAfter, "delete-after", false, "Delete source folders after successful archive")
	cmd.Flags().BoolVar(&writeTotals, "totals", false, "Write the input-vs-output size report")
	cmd.Flags().BoolVar(&useHistory, "history", false, "Record the run in OUT/"+history.DefaultFileName)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

type runFlags struct {
	cfgPath      string
	level        int
	threads      int
	retries      int
	startBucket  string
	maxBucket    string
	sizeTool     string
	skipExisting bool
	deleteAfter  bool
	writeTotals  bool
	useHistory   bool
	verbose      bool
}

func runRun(cmd *cobra.Command, source, outDir string, f runFlags) {
	logging.Setup(f.verbose)

	cfg := loadConfig(cmd, f)

	if err := archive.CheckTools(); err != nil {
		log.Fatalf("Toolchain check failed: %v", err)
	}

	sizer, err := scan.NewSizer(cfg.SizeTool)
	if err != nil {
		log.Fatalf("Invalid size tool: %v", err)
	}

	fmt.Printf("zstow %s starting...\n", version.GetFullVersion())
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Out:    %s\n", outDir)
	fmt.Printf("Buckets: %s -> %s  |  zstd level %d, threads %d\n\n",
		cfg.StartBucket, cfg.MaxBucket, cfg.Level, cfg.Threads)

	p := pipeline.New(pipeline.Options{
		Source:       source,
		OutDir:       outDir,
		StartBucket:  cfg.StartBucket,
		MaxBucket:    cfg.MaxBucket,
		SkipExisting: cfg.SkipExisting,
		DeleteAfter:  cfg.DeleteAfter,
		Retries:      cfg.Retries,
		RetrySleep:   cfg.RetrySleep,
		WriteTotals:  f.writeTotals,
	}, sizer, archive.New(archive.Options{Level: cfg.Level, Threads: cfg.Threads}))

	rep, err := p.Run(time.Now())
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	if f.useHistory {
		recordHistory(rep)
	}

	if _, failed := rep.Counts(); failed > 0 {
		os.Exit(1)
	}
}

// loadConfig merges the config file under explicitly set flags. A flag the
// user touched always wins over the file.
func loadConfig(cmd *cobra.Command, f runFlags) config.Config {
	cfg, err := config.Load(f.cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("level") {
		cfg.Level = f.level
	}
	if flags.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flags.Changed("retries") {
		cfg.Retries = f.retries
	}
	if flags.Changed("start-bucket") {
		cfg.StartBucket = f.startBucket
	}
	if flags.Changed("max-bucket") {
		cfg.MaxBucket = f.maxBucket
	}
	if flags.Changed("size-tool") {
		cfg.SizeTool = f.sizeTool
	}
	if flags.Changed("skip-existing") {
		cfg.SkipExisting = f.skipExisting
	}
	if flags.Changed("delete-after") {
		cfg.DeleteAfter = f.deleteAfter
	}
	return cfg
}

// recordHistory appends the run to the history database. History is
// best-effort: a failure here warns but never fails the run, since the
// report files are the durable output.
func recordHistory(rep *report.RunReport) {
	store, err := history.Open(filepath.Join(rep.OutDir, history.DefaultFileName))
	if err != nil {
		slog.Warn("history database unavailable", "error", err)
		return
	}
	defer store.Close()

	if err := store.RecordRun(rep); err != nil {
		slog.Warn("failed to record run history", "error", err)
	}
}
