package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads base.yaml from configDir (default "config"), then applies
// environment-variable overrides on top. Environment always wins so
// deployments can reconfigure without editing files.
func Load(configDir string) (*Config, error) {
	configDir = firstNonEmpty(configDir, os.Getenv("CONFIG_DIR"), "config")

	cfg := &Config{}
	path := filepath.Join(configDir, "base.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	OverrideDBFromEnv(&cfg.DB)
	OverrideMQFromEnv(&cfg.MQ)
	OverrideRedisFromEnv(&cfg.Redis)
	OverrideServerFromEnv(&cfg.Server)

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8084"
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = 300
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
