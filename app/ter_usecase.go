package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/service"
)

// DefaultReportName is the file name used when reports go to an output directory
const DefaultReportName = "treerate-report"

// configFinder is implemented by loaders that can discover a config file near the inputs
type configFinder interface {
	FindConfigFor(target string) string
}

// TreeErrorRateUseCase orchestrates collect, score and report
type TreeErrorRateUseCase struct {
	service      domain.TreeErrorRateService
	collector    domain.DocumentCollector
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	reportWriter domain.ReportWriter
}

// NewTreeErrorRateUseCase creates a new tree error rate use case
func NewTreeErrorRateUseCase(
	service domain.TreeErrorRateService,
	collector domain.DocumentCollector,
	formatter domain.OutputFormatter,
	configLoader domain.ConfigurationLoader,
	reportWriter domain.ReportWriter,
) *TreeErrorRateUseCase {
	return &TreeErrorRateUseCase{
		service:      service,
		collector:    collector,
		formatter:    formatter,
		configLoader: configLoader,
		reportWriter: reportWriter,
	}
}

// Execute scores the request and writes the report
func (uc *TreeErrorRateUseCase) Execute(ctx context.Context, req domain.TreeErrorRateRequest) (*domain.TreeErrorRateResponse, error) {
	finalReq, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	response, err := uc.score(ctx, finalReq)
	if err != nil {
		return nil, err
	}

	if err := uc.writeReport(response, finalReq); err != nil {
		return response, err
	}
	return response, nil
}

// ScoreAndReturn scores the request without writing a report
func (uc *TreeErrorRateUseCase) ScoreAndReturn(ctx context.Context, req domain.TreeErrorRateRequest) (*domain.TreeErrorRateResponse, error) {
	finalReq, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}
	return uc.score(ctx, finalReq)
}

func (uc *TreeErrorRateUseCase) prepare(req domain.TreeErrorRateRequest) (domain.TreeErrorRateRequest, error) {
	if err := uc.validatePaths(req); err != nil {
		return req, domain.NewInvalidInputError("invalid request", err)
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return req, domain.NewConfigError("failed to load configuration", err)
	}

	if err := uc.validateRequest(finalReq); err != nil {
		return req, domain.NewInvalidInputError("invalid request", err)
	}
	return finalReq, nil
}

func (uc *TreeErrorRateUseCase) score(ctx context.Context, req domain.TreeErrorRateRequest) (*domain.TreeErrorRateResponse, error) {
	pairs, err := uc.collector.CollectPairs(
		req.ReferencePath,
		req.HypothesisPath,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("no documents found in %s", req.ReferencePath), nil)
	}

	response, err := uc.service.Score(ctx, pairs, req)
	if err != nil {
		// Keep the service's own classification, such as a bad cost model setting
		var domainErr domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, domain.NewAnalysisError("tree error rate scoring failed", err)
	}
	return response, nil
}

func (uc *TreeErrorRateUseCase) writeReport(response *domain.TreeErrorRateResponse, req domain.TreeErrorRateRequest) error {
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = service.ReportPath(req.OutputDir, DefaultReportName, req.OutputFormat)
	}

	write := func(w io.Writer) error {
		return uc.formatter.Write(response, req.OutputFormat, w)
	}

	if uc.reportWriter == nil {
		if outputPath != "" {
			return domain.NewOutputError("no report writer configured for file output", nil)
		}
		if err := write(req.OutputWriter); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	}
	return uc.reportWriter.Write(req.OutputWriter, outputPath, req.OutputFormat, write)
}

func (uc *TreeErrorRateUseCase) validatePaths(req domain.TreeErrorRateRequest) error {
	if req.ReferencePath == "" {
		return fmt.Errorf("no reference path specified")
	}
	if req.HypothesisPath == "" {
		return fmt.Errorf("no hypothesis path specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer is required")
	}
	return nil
}

// validateRequest checks the merged request
func (uc *TreeErrorRateUseCase) validateRequest(req domain.TreeErrorRateRequest) error {
	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatCSV:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}

	switch req.SortBy {
	case "", domain.SortByName, domain.SortByRate:
	default:
		return fmt.Errorf("unsupported sort criteria: %s", req.SortBy)
	}

	switch req.MissingHypothesis {
	case "", domain.MissingHypothesisEmpty, domain.MissingHypothesisSkip:
	default:
		return fmt.Errorf("unsupported missing hypothesis policy: %s", req.MissingHypothesis)
	}

	if req.MaxGoroutines < 0 {
		return fmt.Errorf("max goroutines cannot be negative")
	}
	if req.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// loadAndMergeConfig loads the configuration file and lets explicit request values win
func (uc *TreeErrorRateUseCase) loadAndMergeConfig(req domain.TreeErrorRateRequest) (domain.TreeErrorRateRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	path := req.ConfigPath
	if path == "" {
		if finder, ok := uc.configLoader.(configFinder); ok {
			path = finder.FindConfigFor(req.ReferencePath)
		}
	}

	var configReq *domain.TreeErrorRateRequest
	if path != "" {
		loaded, err := uc.configLoader.LoadConfig(path)
		if err != nil {
			return req, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		configReq = loaded
	} else {
		configReq = uc.configLoader.LoadDefaultConfig()
	}

	if configReq == nil {
		return req, nil
	}
	return *uc.configLoader.MergeConfig(configReq, &req), nil
}

// TreeErrorRateUseCaseBuilder provides a builder pattern for creating TreeErrorRateUseCase
type TreeErrorRateUseCaseBuilder struct {
	service      domain.TreeErrorRateService
	collector    domain.DocumentCollector
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	reportWriter domain.ReportWriter
}

// NewTreeErrorRateUseCaseBuilder creates a new builder
func NewTreeErrorRateUseCaseBuilder() *TreeErrorRateUseCaseBuilder {
	return &TreeErrorRateUseCaseBuilder{}
}

// WithService sets the scoring service
func (b *TreeErrorRateUseCaseBuilder) WithService(service domain.TreeErrorRateService) *TreeErrorRateUseCaseBuilder {
	b.service = service
	return b
}

// WithCollector sets the document pair collector
func (b *TreeErrorRateUseCaseBuilder) WithCollector(collector domain.DocumentCollector) *TreeErrorRateUseCaseBuilder {
	b.collector = collector
	return b
}

// WithFormatter sets the output formatter
func (b *TreeErrorRateUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *TreeErrorRateUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *TreeErrorRateUseCaseBuilder) WithConfigLoader(configLoader domain.ConfigurationLoader) *TreeErrorRateUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithReportWriter sets the report writer
func (b *TreeErrorRateUseCaseBuilder) WithReportWriter(reportWriter domain.ReportWriter) *TreeErrorRateUseCaseBuilder {
	b.reportWriter = reportWriter
	return b
}

// Build creates the TreeErrorRateUseCase; the config loader and report writer are optional
func (b *TreeErrorRateUseCaseBuilder) Build() (*TreeErrorRateUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("tree error rate service is required")
	}
	if b.collector == nil {
		return nil, fmt.Errorf("document collector is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	return NewTreeErrorRateUseCase(
		b.service,
		b.collector,
		b.formatter,
		b.configLoader,
		b.reportWriter,
	), nil
}
