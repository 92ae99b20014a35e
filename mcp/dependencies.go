package mcp

import (
	"github.com/ludo-technologies/treerate/app"
	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
	"github.com/ludo-technologies/treerate/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	collector  domain.DocumentCollector
	config     *config.Config
	configPath string
}

// NewDependencies constructs the dependency set with sane defaults.
func NewDependencies(cfg *config.Config, configPath string) *Dependencies {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Dependencies{
		collector:  service.NewDocumentReader(),
		config:     cfg,
		configPath: configPath,
	}
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// ConfigPath returns the path the configuration was loaded from (empty for defaults).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// Collector returns the document collector shared by the file tools.
func (d *Dependencies) Collector() domain.DocumentCollector {
	return d.collector
}

// BaseRequest converts the configuration into the request tool arguments refine.
func (d *Dependencies) BaseRequest() domain.TreeErrorRateRequest {
	return *service.ConfigToRequest(d.config)
}

// BuildUseCase assembles a fresh use case. The configuration is already folded
// into BaseRequest, so no loader is attached and tool arguments always win.
func (d *Dependencies) BuildUseCase() (*app.TreeErrorRateUseCase, error) {
	return app.NewTreeErrorRateUseCaseBuilder().
		WithService(service.NewTreeErrorRateServiceWithDeps(d.collector, nil)).
		WithCollector(d.collector).
		WithFormatter(service.NewTreeErrorRateFormatter()).
		Build()
}
