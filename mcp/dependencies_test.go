package mcp

import (
	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
)

func NewTestDependencies(collector domain.DocumentCollector, cfg *config.Config, path string) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Dependencies{
		collector:  collector,
		config:     cfg,
		configPath: path,
	}
}
