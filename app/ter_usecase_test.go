package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
	"github.com/ludo-technologies/treerate/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTreeErrorRateService struct {
	mock.Mock
}

func (m *mockTreeErrorRateService) Score(ctx context.Context, pairs []domain.DocumentPair, req domain.TreeErrorRateRequest) (*domain.TreeErrorRateResponse, error) {
	args := m.Called(ctx, pairs, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreeErrorRateResponse), args.Error(1)
}

func (m *mockTreeErrorRateService) ScorePair(ctx context.Context, pair domain.DocumentPair, req domain.TreeErrorRateRequest) (*domain.PairResult, error) {
	args := m.Called(ctx, pair, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PairResult), args.Error(1)
}

func (m *mockTreeErrorRateService) ScoreInline(ctx context.Context, pair domain.InlinePair, req domain.TreeErrorRateRequest) (*domain.PairResult, error) {
	args := m.Called(ctx, pair, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PairResult), args.Error(1)
}

type mockDocumentCollector struct {
	mock.Mock
}

func (m *mockDocumentCollector) CollectPairs(referencePath, hypothesisPath string, recursive bool, includePatterns, excludePatterns []string) ([]domain.DocumentPair, error) {
	args := m.Called(referencePath, hypothesisPath, recursive, includePatterns, excludePatterns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentPair), args.Error(1)
}

func (m *mockDocumentCollector) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockDocumentCollector) FileExists(path string) (bool, error) {
	args := m.Called(path)
	return args.Bool(0), args.Error(1)
}

type mockOutputFormatter struct {
	mock.Mock
}

func (m *mockOutputFormatter) Format(response *domain.TreeErrorRateResponse, format domain.OutputFormat) (string, error) {
	args := m.Called(response, format)
	return args.String(0), args.Error(1)
}

func (m *mockOutputFormatter) Write(response *domain.TreeErrorRateResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

func baseRequest(out io.Writer) domain.TreeErrorRateRequest {
	return domain.TreeErrorRateRequest{
		ReferencePath:  "ref",
		HypothesisPath: "hyp",
		OutputFormat:   domain.OutputFormatText,
		OutputWriter:   out,
		SortBy:         domain.SortByName,
	}
}

func TestTreeErrorRateUseCase_Execute(t *testing.T) {
	var out bytes.Buffer
	req := baseRequest(&out)
	pairs := []domain.DocumentPair{{Name: "a.json", ReferencePath: "ref/a.json", HypothesisPath: "hyp/a.json"}}
	response := &domain.TreeErrorRateResponse{Pairs: []domain.PairResult{{Name: "a.json"}}}

	svc := &mockTreeErrorRateService{}
	collector := &mockDocumentCollector{}
	formatter := &mockOutputFormatter{}

	collector.On("CollectPairs", "ref", "hyp", false, []string(nil), []string(nil)).Return(pairs, nil)
	svc.On("Score", mock.Anything, pairs, req).Return(response, nil)
	formatter.On("Write", response, domain.OutputFormatText, &out).Return(nil)

	uc, err := NewTreeErrorRateUseCaseBuilder().
		WithService(svc).
		WithCollector(collector).
		WithFormatter(formatter).
		Build()
	require.NoError(t, err)

	got, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, response, got)

	svc.AssertExpectations(t)
	collector.AssertExpectations(t)
	formatter.AssertExpectations(t)
}

func TestTreeErrorRateUseCase_Errors(t *testing.T) {
	var out bytes.Buffer

	tests := []struct {
		name     string
		modify   func(*domain.TreeErrorRateRequest)
		setup    func(*mockTreeErrorRateService, *mockDocumentCollector)
		code     string
		contains string
	}{
		{
			name:     "missing reference",
			modify:   func(r *domain.TreeErrorRateRequest) { r.ReferencePath = "" },
			code:     domain.ErrCodeInvalidInput,
			contains: "no reference path",
		},
		{
			name:     "missing writer",
			modify:   func(r *domain.TreeErrorRateRequest) { r.OutputWriter = nil },
			code:     domain.ErrCodeInvalidInput,
			contains: "output writer",
		},
		{
			name:     "bad format",
			modify:   func(r *domain.TreeErrorRateRequest) { r.OutputFormat = "html" },
			code:     domain.ErrCodeInvalidInput,
			contains: "unsupported output format",
		},
		{
			name:     "bad missing policy",
			modify:   func(r *domain.TreeErrorRateRequest) { r.MissingHypothesis = "guess" },
			code:     domain.ErrCodeInvalidInput,
			contains: "missing hypothesis policy",
		},
		{
			name: "no documents",
			setup: func(_ *mockTreeErrorRateService, c *mockDocumentCollector) {
				c.On("CollectPairs", "ref", "hyp", false, []string(nil), []string(nil)).Return([]domain.DocumentPair{}, nil)
			},
			code:     domain.ErrCodeInvalidInput,
			contains: "no documents found",
		},
		{
			name: "collector failure",
			setup: func(_ *mockTreeErrorRateService, c *mockDocumentCollector) {
				c.On("CollectPairs", "ref", "hyp", false, []string(nil), []string(nil)).
					Return(nil, domain.NewFileNotFoundError("ref", nil))
			},
			code: domain.ErrCodeFileNotFound,
		},
		{
			name: "scoring failure",
			setup: func(s *mockTreeErrorRateService, c *mockDocumentCollector) {
				c.On("CollectPairs", "ref", "hyp", false, []string(nil), []string(nil)).
					Return([]domain.DocumentPair{{Name: "a"}}, nil)
				s.On("Score", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
			},
			code:     domain.ErrCodeAnalysisError,
			contains: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTreeErrorRateService{}
			collector := &mockDocumentCollector{}
			if tt.setup != nil {
				tt.setup(svc, collector)
			}

			req := baseRequest(&out)
			if tt.modify != nil {
				tt.modify(&req)
			}

			uc := NewTreeErrorRateUseCase(svc, collector, &mockOutputFormatter{}, nil, nil)
			_, err := uc.Execute(context.Background(), req)
			require.Error(t, err)

			var domainErr domain.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.code, domainErr.Code)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestTreeErrorRateUseCaseBuilder_RequiresDependencies(t *testing.T) {
	_, err := NewTreeErrorRateUseCaseBuilder().Build()
	assert.Error(t, err)

	_, err = NewTreeErrorRateUseCaseBuilder().WithService(&mockTreeErrorRateService{}).Build()
	assert.Error(t, err)

	_, err = NewTreeErrorRateUseCaseBuilder().
		WithService(&mockTreeErrorRateService{}).
		WithCollector(&mockDocumentCollector{}).
		Build()
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newRealUseCase(t *testing.T, flags map[string]bool) *TreeErrorRateUseCase {
	t.Helper()
	uc, err := NewTreeErrorRateUseCaseBuilder().
		WithService(service.NewTreeErrorRateService()).
		WithCollector(service.NewDocumentReader()).
		WithFormatter(service.NewTreeErrorRateFormatter()).
		WithConfigLoader(service.NewTreeErrorRateConfigurationLoader(config.NewFlagTrackerWithFlags(flags))).
		WithReportWriter(service.NewFileOutputWriter(io.Discard)).
		Build()
	require.NoError(t, err)
	return uc
}

func TestTreeErrorRateUseCase_EndToEnd(t *testing.T) {
	root := t.TempDir()
	refDir := filepath.Join(root, "ref")
	hypDir := filepath.Join(root, "hyp")
	writeFile(t, filepath.Join(refDir, "a.json"), `{"a": ["b", "c"]}`)
	writeFile(t, filepath.Join(hypDir, "a.json"), `{"a": ["b", "d"]}`)
	writeFile(t, filepath.Join(root, ".treerate.toml"), "[output]\nformat = \"json\"\n")

	var out bytes.Buffer
	req := domain.TreeErrorRateRequest{
		ReferencePath:  refDir,
		HypothesisPath: hypDir,
		OutputWriter:   &out,
	}

	response, err := newRealUseCase(t, nil).Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, response.Pairs, 1)
	assert.InDelta(t, 1.0/3.0, response.Pairs[0].ErrorRate, 1e-9)

	// The config file next to the inputs switched the report to JSON
	assert.Contains(t, out.String(), `"error_rate"`)
}

func TestTreeErrorRateUseCase_OutputDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ref.yaml"), "a: [b]\n")
	writeFile(t, filepath.Join(root, "hyp.yaml"), "a: [b]\n")
	reports := filepath.Join(root, "reports")

	req := domain.TreeErrorRateRequest{
		ReferencePath:  filepath.Join(root, "ref.yaml"),
		HypothesisPath: filepath.Join(root, "hyp.yaml"),
		OutputWriter:   io.Discard,
		OutputFormat:   domain.OutputFormatCSV,
		OutputDir:      reports,
	}

	_, err := newRealUseCase(t, map[string]bool{"csv": true}).Execute(context.Background(), req)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(reports, DefaultReportName+".csv"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "ref.yaml")
}
