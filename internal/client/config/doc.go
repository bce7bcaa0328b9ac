// Package config loads runtime configuration for the GophKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment (see parseEnv): GOPHKEEPER_SERVER_URL and
//     GOPHKEEPER_APPDATA_DIR.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string     base URL of the identity server
//	-d string     data directory relative to the working directory
//	-l string     log level (debug, info, warn, error)
//	-t duration   request timeout for server calls (e.g. 30s)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_url": "https://vault.example.com",
//	  "data_dir": ".gophkeeper",
//	  "log_level": "info",
//	  "request_timeout": "30s"
//	}
//
// # Data file
//
// DataFilePath resolves where the data file lives: GOPHKEEPER_APPDATA_DIR
// when set, else the relative data directory under the working directory,
// else the user config directory (e.g. ~/.config/gophkeeper).
package config
