package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultWorkers  = 4
	defaultPageSize = 100
)

// Load lê o arquivo YAML, aplica os defaults e valida a configuração.
func Load(path string) (*CheckerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
	}

	var cfg CheckerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("erro ao interpretar YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := NewValidator().Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *CheckerConfig) {
	if cfg.Checker.Workers == 0 {
		cfg.Checker.Workers = defaultWorkers
	}
	if cfg.Checker.PageSize == 0 {
		cfg.Checker.PageSize = defaultPageSize
	}
	if cfg.Checker.Table.KeyAttribute == "" {
		cfg.Checker.Table.KeyAttribute = "_id"
	}
	if cfg.Checker.Logging.Level == "" {
		cfg.Checker.Logging.Level = "info"
	}
	if cfg.Checker.Logging.Format == "" {
		cfg.Checker.Logging.Format = "json"
	}
}
