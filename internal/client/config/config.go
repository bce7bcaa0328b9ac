package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophkeeper-session/internal/common"
	"github.com/dmitrijs2005/gophkeeper-session/internal/filex"
)

// Config holds runtime settings for the GophKeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the identity server.
//   - DataDir: data directory relative to the working directory; empty
//     means the platform default.
//   - AppDataDir: absolute data directory from GOPHKEEPER_APPDATA_DIR; wins
//     over DataDir.
//   - LogLevel: minimum level written to stderr.
//   - RequestTimeout: per-request timeout for server calls.
type Config struct {
	ServerURL      string
	DataDir        string
	AppDataDir     string
	LogLevel       string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DataDir = ""
	c.AppDataDir = ""
	c.LogLevel = "warn"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags found in args.
// Later sources take precedence over earlier ones.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg, args)
	return cfg
}

// DataFilePath returns the path of the data file, creating its directory
// (mode 0700) when needed.
func (c *Config) DataFilePath() (string, error) {
	var dir string
	switch {
	case c.AppDataDir != "":
		dir = c.AppDataDir
		if err := filex.EnsureDir(dir); err != nil {
			return "", err
		}
	case c.DataDir != "":
		var err error
		if dir, err = filex.EnsureSubdDir(c.DataDir); err != nil {
			return "", err
		}
	default:
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate user config dir: %w", err)
		}
		dir = filepath.Join(base, common.AppName)
		if err := filex.EnsureDir(dir); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, common.DataFileName), nil
}
