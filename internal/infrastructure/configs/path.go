package configs

import (
	"os"

	"github.com/hilthontt/relay/internal/infrastructure/env"
	"github.com/spf13/pflag"
)

// DetermineConfigPath resolves the config file from --config, RELAY_CONFIG or
// a list of well-known locations. An empty result means defaults only.
func DetermineConfigPath(args []string) string {
	fs := pflag.NewFlagSet("relay", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "path to config file")
	_ = fs.Parse(args)

	if *configPath != "" {
		return *configPath
	}

	if p := env.GetString("RELAY_CONFIG", ""); p != "" {
		return p
	}

	candidates := []string{
		"./config.yaml",
		"./config.yml",
		"../../config.yaml", // keep for local dev
		"/etc/relay/config.yaml",
		"/app/config.yaml", // common in Docker
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
