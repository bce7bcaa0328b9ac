package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophkeeper-session/internal/flagx"
)

// Flags lists the global flags owned by this package, config file included.
var Flags = append([]string{"-s", "-d", "-l", "-t"}, flagx.ConfigFileFlags...)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string     server base URL (default from Config)
//	-d string     relative data directory (default from Config)
//	-l string     log level (default from Config)
//	-t duration   request timeout (default from Config)
//
// Note: The function filters args to only include the flags it knows about,
// using flagx.FilterArgs, so subcommands and their flags pass through.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-s", "-d", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory relative to the working directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
