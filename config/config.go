// Package config loads run defaults from an optional zstow.yaml file.
//
// The file sets defaults only; command-line flags always win. A missing
// config file is not an error unless the user named one explicitly.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunable run defaults.
type Config struct {
	// Level is the zstd compression level, 1-19.
	Level int
	// Threads is the zstd worker count; 0 means all cores.
	Threads int
	// Retries is the attempt count per folder archive.
	Retries int
	// RetrySleep is the pause between archive attempts.
	RetrySleep time.Duration
	// SkipExisting skips folders whose final archive already exists.
	SkipExisting bool
	// DeleteAfter removes a source folder after a successful archive.
	DeleteAfter bool
	// StartBucket and MaxBucket bound which buckets get archived.
	StartBucket string
	MaxBucket   string
	// SizeTool selects the external sizer: "du", "robocopy", or "" for the
	// platform default.
	SizeTool string
}

// Defaults returns the built-in configuration, matching a plain run with no
// config file present.
func Defaults() Config {
	return Config{
		Level:        6,
		Threads:      0,
		Retries:      2,
		RetrySleep:   2 * time.Second,
		SkipExisting: true,
		DeleteAfter:  false,
		StartBucket:  "<1 GB",
		MaxBucket:    "10 TB+",
		SizeTool:     "",
	}
}

// Load reads configuration from path. An empty path searches the working
// directory for zstow.yaml and silently falls back to Defaults when none
// exists; an explicit path that cannot be read is an error.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Defaults()
	v.SetDefault("zstd.level", def.Level)
	v.SetDefault("zstd.threads", def.Threads)
	v.SetDefault("archive.retries", def.Retries)
	v.SetDefault("archive.retry_sleep", def.RetrySleep.String())
	v.SetDefault("archive.skip_existing", def.SkipExisting)
	v.SetDefault("archive.delete_after", def.DeleteAfter)
	v.SetDefault("buckets.start", def.StartBucket)
	v.SetDefault("buckets.max", def.MaxBucket)
	v.SetDefault("scan.tool", def.SizeTool)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("zstow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	sleep, err := time.ParseDuration(v.GetString("archive.retry_sleep"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid archive.retry_sleep: %w", err)
	}

	return Config{
		Level:        v.GetInt("zstd.level"),
		Threads:      v.GetInt("zstd.threads"),
		Retries:      v.GetInt("archive.retries"),
		RetrySleep:   sleep,
		SkipExisting: v.GetBool("archive.skip_existing"),
		DeleteAfter:  v.GetBool("archive.delete_after"),
		StartBucket:  v.GetString("buckets.start"),
		MaxBucket:    v.GetString("buckets.max"),
		SizeTool:     v.GetString("scan.tool"),
	}, nil
}
