package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	env := map[string]string{
		EnvServerURL:  "https://vault.example.com",
		EnvAppDataDir: "/var/lib/gk",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := &Config{ServerURL: "default"}
	parseEnv(cfg, lookup)
	assert.Equal(t, "https://vault.example.com", cfg.ServerURL)
	assert.Equal(t, "/var/lib/gk", cfg.AppDataDir)

	env[EnvServerURL] = ""
	cfg = &Config{ServerURL: "default"}
	parseEnv(cfg, lookup)
	assert.Equal(t, "default", cfg.ServerURL, "empty variable is ignored")
}
