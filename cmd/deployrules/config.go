package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the vendor CLI and how to deploy with it
type Config struct {
	CLI        string   `yaml:"cli"`
	Install    []string `yaml:"install"`
	AuthCheck  []string `yaml:"auth_check"`
	ConfigFile string   `yaml:"config_file"`
	Deploy     []string `yaml:"deploy"`
	LoginHint  string   `yaml:"login_hint"`
}

// DefaultConfig deploys the App Platform spec with doctl
func DefaultConfig() *Config {
	return &Config{
		CLI:        "doctl",
		Install:    []string{"go", "install", "github.com/digitalocean/doctl/cmd/doctl@latest"},
		AuthCheck:  []string{"account", "get"},
		ConfigFile: ".do/app.yaml",
		Deploy:     []string{"apps", "create", "--spec", ".do/app.yaml", "--upsert"},
		LoginHint:  "doctl auth init",
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults; fields absent from the file keep their default values.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.CLI == "" {
		return nil, fmt.Errorf("config file %s: cli is required", filepath)
	}
	if len(config.Deploy) == 0 {
		return nil, fmt.Errorf("config file %s: deploy arguments are required", filepath)
	}

	return config, nil
}
