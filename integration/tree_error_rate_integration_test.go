package integration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/treerate/app"
	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/config"
	"github.com/ludo-technologies/treerate/service"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func newUseCase(t *testing.T, flags map[string]bool) *app.TreeErrorRateUseCase {
	t.Helper()
	reader := service.NewDocumentReader()
	useCase, err := app.NewTreeErrorRateUseCaseBuilder().
		WithService(service.NewTreeErrorRateServiceWithDeps(reader, nil)).
		WithCollector(reader).
		WithFormatter(service.NewTreeErrorRateFormatter()).
		WithConfigLoader(service.NewTreeErrorRateConfigurationLoader(config.NewFlagTrackerWithFlags(flags))).
		WithReportWriter(service.NewFileOutputWriter(&bytes.Buffer{})).
		Build()
	if err != nil {
		t.Fatalf("Failed to build use case: %v", err)
	}
	return useCase
}

// TestTreeErrorRateCancellation tests that a cancelled context stops a batch
func TestTreeErrorRateCancellation(t *testing.T) {
	refDir := t.TempDir()
	hypDir := t.TempDir()
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("doc%02d.json", i)
		writeFile(t, refDir, name, `{"a": ["b", "c", "d"]}`)
		writeFile(t, hypDir, name, `{"a": ["b", "x", "d"]}`)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var output bytes.Buffer
	_, err := newUseCase(t, nil).Execute(ctx, domain.TreeErrorRateRequest{
		ReferencePath:  refDir,
		HypothesisPath: hypDir,
		OutputFormat:   domain.OutputFormatJSON,
		OutputWriter:   &output,
		Recursive:      true,
	})
	if err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in the chain, got %v", err)
	}
	if output.Len() != 0 {
		t.Errorf("No report should be written after cancellation, got %q", output.String())
	}
}

// TestTreeErrorRateMixedFormats tests that JSON and YAML documents with the
// same content score as identical
func TestTreeErrorRateMixedFormats(t *testing.T) {
	refDir := t.TempDir()
	hypDir := t.TempDir()
	writeFile(t, refDir, "invoice.json", `{"invoice": {"number": "A-17", "lines": [{"item": "bolt"}, {"item": "nut"}], "paid": true}}`)
	writeFile(t, hypDir, "invoice.json", "invoice:\n  number: A-17\n  lines:\n    - item: bolt\n    - item: nut\n  paid: true\n")

	var output bytes.Buffer
	response, err := newUseCase(t, nil).Execute(context.Background(), domain.TreeErrorRateRequest{
		ReferencePath:  refDir,
		HypothesisPath: hypDir,
		OutputFormat:   domain.OutputFormatText,
		OutputWriter:   &output,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(response.Pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(response.Pairs))
	}
	pair := response.Pairs[0]
	if pair.Distance != 0 {
		t.Errorf("Expected distance 0, got %v", pair.Distance)
	}
	// invoice, number, A-17, lines, item, bolt, item, nut, paid, true
	if pair.ReferenceNodes != 10 {
		t.Errorf("Expected 10 reference nodes, got %d", pair.ReferenceNodes)
	}
	if !strings.Contains(output.String(), "invoice.json") {
		t.Errorf("Text report should list the pair\n%s", output.String())
	}
}

// TestTreeErrorRateConfigRootPolicy tests that the root policy from a config
// file changes which top-level keys are scored
func TestTreeErrorRateConfigRootPolicy(t *testing.T) {
	baseDir := t.TempDir()
	refDir := filepath.Join(baseDir, "ref")
	hypDir := filepath.Join(baseDir, "hyp")
	writeFile(t, refDir, "doc.yaml", "first:\n  - x\nsecond:\n  - y\n")
	writeFile(t, hypDir, "doc.yaml", "first:\n  - x\nsecond:\n  - z\n")

	request := func() domain.TreeErrorRateRequest {
		return domain.TreeErrorRateRequest{
			ReferencePath:  refDir,
			HypothesisPath: hypDir,
			OutputFormat:   domain.OutputFormatJSON,
			OutputWriter:   &bytes.Buffer{},
		}
	}

	// Only "first" is scored by default, so the change under "second" is invisible
	response, err := newUseCase(t, nil).ScoreAndReturn(context.Background(), request())
	if err != nil {
		t.Fatalf("ScoreAndReturn failed: %v", err)
	}
	if got := response.Pairs[0].ErrorRate; got != 0 {
		t.Errorf("Expected rate 0 with the first-key root, got %v", got)
	}

	writeFile(t, baseDir, config.ConfigFileName, "[tree]\nroot_policy = \"synthetic_root\"\n")

	response, err = newUseCase(t, nil).ScoreAndReturn(context.Background(), request())
	if err != nil {
		t.Fatalf("ScoreAndReturn failed: %v", err)
	}
	// root, first, x, second, y
	pair := response.Pairs[0]
	if pair.ReferenceNodes != 5 || pair.Distance != 1 {
		t.Errorf("Expected 5 nodes and distance 1, got %d and %v", pair.ReferenceNodes, pair.Distance)
	}

	// An explicit request value wins over the file
	req := request()
	req.RootPolicy = domain.RootPolicyFirstKey
	response, err = newUseCase(t, map[string]bool{"root-policy": true}).ScoreAndReturn(context.Background(), req)
	if err != nil {
		t.Fatalf("ScoreAndReturn failed: %v", err)
	}
	if got := response.Pairs[0].ErrorRate; got != 0 {
		t.Errorf("Expected the flag to restore the first-key root, got rate %v", got)
	}
}
