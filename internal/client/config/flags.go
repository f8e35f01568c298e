package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/medbook/internal/flagx"
)

// parseFlags overlays cfg with the flags this package owns. Other flags on
// the command line (-c, -env) are filtered out beforehand.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-a", "-s", "-e", "-t", "-l"})

	fs := flag.NewFlagSet("medbook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "path of the local store file")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "directory for exported backups")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
