package config

const (
	EnvServerURL  = "GOPHKEEPER_SERVER_URL"
	EnvAppDataDir = "GOPHKEEPER_APPDATA_DIR"
)

// parseEnv overlays Config with non-empty environment variables. lookup is
// os.LookupEnv outside tests.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup(EnvAppDataDir); ok && v != "" {
		cfg.AppDataDir = v
	}
}
