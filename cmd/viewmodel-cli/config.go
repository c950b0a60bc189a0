package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the CLI defaults read from the environment. Flags override it.
type Config struct {
	Templates    string `env:"VIEWMODEL_TEMPLATES"     envDefault:"."`
	Extension    string `env:"VIEWMODEL_EXTENSION"     envDefault:".tpl"`
	TemplatePath string `env:"VIEWMODEL_TEMPLATE_PATH"`
	Sanitize     bool   `env:"VIEWMODEL_SANITIZE"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := parseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
