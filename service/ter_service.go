package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/internal/analyzer"
	"github.com/ludo-technologies/treerate/internal/parser"
	"github.com/ludo-technologies/treerate/internal/version"
)

// TreeErrorRateServiceImpl implements the TreeErrorRateService interface
type TreeErrorRateServiceImpl struct {
	reader   domain.DocumentCollector
	progress domain.ProgressManager
}

// NewTreeErrorRateService creates a new scoring service reading documents from disk
func NewTreeErrorRateService() *TreeErrorRateServiceImpl {
	return &TreeErrorRateServiceImpl{
		reader: NewDocumentReader(),
	}
}

// NewTreeErrorRateServiceWithDeps creates a scoring service with custom collaborators.
// A nil progress manager disables progress reporting.
func NewTreeErrorRateServiceWithDeps(reader domain.DocumentCollector, progress domain.ProgressManager) *TreeErrorRateServiceImpl {
	if reader == nil {
		reader = NewDocumentReader()
	}
	return &TreeErrorRateServiceImpl{
		reader:   reader,
		progress: progress,
	}
}

// scoringSettings is the effective configuration echoed in the response
type scoringSettings struct {
	CostModel         string  `json:"cost_model" yaml:"cost_model"`
	CERWeighted       bool    `json:"cer_weighted" yaml:"cer_weighted"`
	InsertWeight      float64 `json:"insert_weight" yaml:"insert_weight"`
	RemoveWeight      float64 `json:"remove_weight" yaml:"remove_weight"`
	UpdateWeight      float64 `json:"update_weight" yaml:"update_weight"`
	RootPolicy        string  `json:"root_policy" yaml:"root_policy"`
	InputFormat       string  `json:"input_format" yaml:"input_format"`
	MissingHypothesis string  `json:"missing_hypothesis" yaml:"missing_hypothesis"`
}

// Score scores every pair concurrently. A pair that cannot be scored is recorded in its
// result and in Response.Errors; only cancellation and invalid settings fail the call.
func (s *TreeErrorRateServiceImpl) Score(ctx context.Context, pairs []domain.DocumentPair, req domain.TreeErrorRateRequest) (*domain.TreeErrorRateResponse, error) {
	scorer, err := newPairScorer(req)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PairResult, len(pairs))
	tasks := make([]domain.ExecutableTask, len(pairs))
	for i := range pairs {
		tasks[i] = NewSimpleTask(pairs[i].Name, true, func(ctx context.Context) (interface{}, error) {
			results[i] = s.scoreDocumentPair(ctx, scorer, pairs[i], req)
			if req.Verbose {
				logPairResult(results[i])
			}
			return nil, nil
		})
	}

	executor := NewParallelExecutor()
	if req.MaxGoroutines > 0 {
		executor.SetMaxConcurrency(req.MaxGoroutines)
	}
	executor.SetTimeout(req.Timeout)

	if s.progress != nil && len(pairs) > 0 {
		s.progress.Initialize(len(pairs))
		s.progress.Start()
		executor.OnTaskDone(s.progress.Update)
	}

	execErr := executor.Execute(ctx, tasks)
	if s.progress != nil && len(pairs) > 0 {
		s.progress.Complete(execErr == nil)
	}
	if execErr != nil {
		if errors.Is(execErr, context.DeadlineExceeded) || errors.Is(execErr, context.Canceled) {
			return nil, domain.NewAnalysisError("scoring did not finish", execErr)
		}
		return nil, domain.NewAnalysisError("scoring failed", execErr)
	}

	response := &domain.TreeErrorRateResponse{
		Pairs:       results,
		CostModel:   scorer.name,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
		Config:      scorer.settings,
	}
	for _, result := range results {
		switch {
		case result.Failed():
			response.Errors = append(response.Errors, fmt.Sprintf("%s: %s", result.Name, result.Error))
		case result.Skipped:
			response.Warnings = append(response.Warnings, fmt.Sprintf("%s: no hypothesis document, skipped", result.Name))
		case result.HypothesisMissing:
			response.Warnings = append(response.Warnings, fmt.Sprintf("%s: no hypothesis document, scored against the empty tree", result.Name))
		}
	}
	response.Summary = Summarize(results)
	SortPairResults(response.Pairs, req.SortBy)

	return response, nil
}

// ScorePair scores a single pair and returns document errors instead of recording them
func (s *TreeErrorRateServiceImpl) ScorePair(ctx context.Context, pair domain.DocumentPair, req domain.TreeErrorRateRequest) (*domain.PairResult, error) {
	scorer, err := newPairScorer(req)
	if err != nil {
		return nil, err
	}

	result, err := s.scorePairFiles(ctx, scorer, pair, req)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScoreInline scores a reference and hypothesis given as document text or decoded values.
// An empty hypothesis is the empty tree.
func (s *TreeErrorRateServiceImpl) ScoreInline(ctx context.Context, pair domain.InlinePair, req domain.TreeErrorRateRequest) (*domain.PairResult, error) {
	scorer, err := newPairScorer(req)
	if err != nil {
		return nil, err
	}

	name := pair.Name
	if name == "" {
		name = "inline"
	}

	reference, err := scorer.inlineTree(ctx, pair.Reference, pair.ReferenceValue, name+" (reference)")
	if err != nil {
		return nil, err
	}

	var hypothesis *analyzer.TreeNode
	missing := pair.HypothesisValue == nil && strings.TrimSpace(pair.Hypothesis) == ""
	if !missing {
		hypothesis, err = scorer.inlineTree(ctx, pair.Hypothesis, pair.HypothesisValue, name+" (hypothesis)")
		if err != nil {
			return nil, err
		}
	}

	result, err := scorer.score(name, reference, hypothesis)
	if err != nil {
		return nil, err
	}
	result.HypothesisMissing = missing
	return result, nil
}

// scoreDocumentPair scores one pair for a batch, turning errors into the result
func (s *TreeErrorRateServiceImpl) scoreDocumentPair(ctx context.Context, scorer *pairScorer, pair domain.DocumentPair, req domain.TreeErrorRateRequest) domain.PairResult {
	result, err := s.scorePairFiles(ctx, scorer, pair, req)
	if err != nil {
		return domain.PairResult{
			Name:              pair.Name,
			ReferencePath:     pair.ReferencePath,
			HypothesisPath:    pair.HypothesisPath,
			HypothesisMissing: pair.HypothesisMissing,
			Error:             err.Error(),
		}
	}
	return *result
}

func (s *TreeErrorRateServiceImpl) scorePairFiles(ctx context.Context, scorer *pairScorer, pair domain.DocumentPair, req domain.TreeErrorRateRequest) (*domain.PairResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if pair.HypothesisMissing && req.MissingHypothesis == domain.MissingHypothesisSkip {
		return &domain.PairResult{
			Name:              pair.Name,
			ReferencePath:     pair.ReferencePath,
			HypothesisPath:    pair.HypothesisPath,
			HypothesisMissing: true,
			Skipped:           true,
		}, nil
	}

	refContent, err := s.reader.ReadFile(pair.ReferencePath)
	if err != nil {
		return nil, err
	}
	reference, err := scorer.buildTree(ctx, refContent, pair.ReferencePath, pair.ReferencePath)
	if err != nil {
		return nil, err
	}

	var hypothesis *analyzer.TreeNode
	if !pair.HypothesisMissing {
		hypContent, err := s.reader.ReadFile(pair.HypothesisPath)
		if err != nil {
			return nil, err
		}
		hypothesis, err = scorer.buildTree(ctx, hypContent, pair.HypothesisPath, pair.HypothesisPath)
		if err != nil {
			return nil, err
		}
	}

	result, err := scorer.score(pair.Name, reference, hypothesis)
	if err != nil {
		return nil, err
	}
	result.ReferencePath = pair.ReferencePath
	result.HypothesisPath = pair.HypothesisPath
	result.HypothesisMissing = pair.HypothesisMissing
	return result, nil
}

// pairScorer holds everything derived from a request that is shared by all pairs
type pairScorer struct {
	parser    *parser.Parser
	builder   *analyzer.TreeBuilder
	model     analyzer.CostModel
	name      string
	format    parser.Format
	trace     bool
	showTrees bool
	settings  scoringSettings
}

func newPairScorer(req domain.TreeErrorRateRequest) (*pairScorer, error) {
	model, name, err := CostModelFor(req)
	if err != nil {
		return nil, err
	}

	policy, err := analyzer.ParseRootPolicy(string(req.RootPolicy))
	if err != nil {
		return nil, domain.NewConfigError("invalid tree settings", err)
	}
	builder := analyzer.NewTreeBuilder()
	builder.RootPolicy = policy
	if req.SyntheticRootLabel != "" {
		builder.SyntheticRootLabel = req.SyntheticRootLabel
	}

	format, err := parser.ParseFormat(string(req.InputFormat))
	if err != nil {
		return nil, domain.NewConfigError("invalid input settings", err)
	}

	missing := req.MissingHypothesis
	if missing == "" {
		missing = domain.MissingHypothesisEmpty
	}

	return &pairScorer{
		parser:    parser.NewWithMaxDepth(req.MaxDepth),
		builder:   builder,
		model:     model,
		name:      name,
		format:    format,
		trace:     req.ShowOperations,
		showTrees: req.ShowTrees,
		settings: scoringSettings{
			CostModel:         string(costModelType(req)),
			CERWeighted:       req.CERWeighted,
			InsertWeight:      normalizeWeight(req.InsertWeight),
			RemoveWeight:      normalizeWeight(req.RemoveWeight),
			UpdateWeight:      normalizeWeight(req.UpdateWeight),
			RootPolicy:        string(policy),
			InputFormat:       string(format),
			MissingHypothesis: string(missing),
		},
	}, nil
}

// buildTree parses content and converts it into a tree; path picks the format when
// the request leaves it on auto, label names the document in errors.
// A file whose extension disagrees with its content is retried with the sniffed format.
func (p *pairScorer) buildTree(ctx context.Context, content []byte, path, label string) (*analyzer.TreeNode, error) {
	format := p.format
	if format == parser.FormatAuto && path != "" {
		format = parser.FormatForPath(path)
	}

	result, err := p.parser.Parse(ctx, content, format)
	if err != nil && ctx.Err() == nil && p.format == parser.FormatAuto {
		if sniffed := parser.SniffFormat(content); sniffed != format {
			if retry, retryErr := p.parser.Parse(ctx, content, sniffed); retryErr == nil {
				result, err = retry, nil
			}
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, domain.NewParseError(label, err)
	}
	return p.builder.Build(result.Value), nil
}

// inlineTree builds a tree from an already decoded value when one is given, else from text
func (p *pairScorer) inlineTree(ctx context.Context, text string, value any, label string) (*analyzer.TreeNode, error) {
	if value == nil {
		return p.buildTree(ctx, []byte(text), "", label)
	}
	decoded, err := parser.FromInterface(value)
	if err != nil {
		return nil, domain.NewParseError(label, err)
	}
	return p.builder.Build(decoded), nil
}

// score computes the error rate of one tree pair
func (p *pairScorer) score(name string, reference, hypothesis *analyzer.TreeNode) (*domain.PairResult, error) {
	rate, err := analyzer.TreeErrorRateWithModel(reference, hypothesis, p.model, p.trace)
	if err != nil {
		return nil, translateAnalyzerError(name, err)
	}

	result := &domain.PairResult{
		Name:            name,
		ReferenceNodes:  rate.Tree1Size,
		HypothesisNodes: rate.Tree2Size,
		Distance:        rate.Distance,
		ErrorRate:       rate.ErrorRate,
	}
	if p.trace {
		result.Operations = convertOperations(rate.Operations)
	}
	if p.showTrees {
		result.ReferenceTree = analyzer.FormatTree(reference)
		result.HypothesisTree = analyzer.FormatTree(hypothesis)
	}
	return result, nil
}

// translateAnalyzerError maps core errors onto domain error codes
func translateAnalyzerError(name string, err error) error {
	switch {
	case errors.Is(err, analyzer.ErrEmptyReference):
		return domain.NewEmptyReferenceError(name, err)
	case errors.Is(err, analyzer.ErrStructural):
		return domain.NewStructuralError(fmt.Sprintf("cannot score %s", name), err)
	case errors.Is(err, analyzer.ErrCostModel):
		return domain.NewCostModelError(fmt.Sprintf("cannot score %s", name), err)
	default:
		return domain.NewAnalysisError(fmt.Sprintf("cannot score %s", name), err)
	}
}

func convertOperations(ops []analyzer.Operation) []domain.EditOperation {
	out := make([]domain.EditOperation, 0, len(ops))
	for _, op := range ops {
		edit := domain.EditOperation{Kind: op.Kind.String(), Cost: op.Cost}
		if op.Node1 != nil {
			edit.Reference = op.Node1.Label
		}
		if op.Node2 != nil {
			edit.Hypothesis = op.Node2.Label
		}
		out = append(out, edit)
	}
	return out
}

func costModelType(req domain.TreeErrorRateRequest) domain.CostModelType {
	if req.CostModel == "" {
		return domain.CostModelUnit
	}
	return req.CostModel
}

// normalizeWeight treats an unset weight as 1
func normalizeWeight(w float64) float64 {
	if w == 0 {
		return 1
	}
	return w
}

// CostModelFor assembles the cost model a request asks for: the base model, then
// per-operation weights when any differs from 1, then CER weighting of relabels.
// The returned name describes the assembled model.
func CostModelFor(req domain.TreeErrorRateRequest) (analyzer.CostModel, string, error) {
	var (
		model analyzer.CostModel
		name  string
	)
	switch costModelType(req) {
	case domain.CostModelUnit:
		model, name = analyzer.NewUnitCostModel(), string(domain.CostModelUnit)
	case domain.CostModelLabelDistance:
		model, name = analyzer.NewLabelDistanceCostModel(), string(domain.CostModelLabelDistance)
	default:
		return nil, "", domain.NewConfigError(fmt.Sprintf("unknown cost model %q", req.CostModel), nil)
	}

	insert, remove, update := normalizeWeight(req.InsertWeight), normalizeWeight(req.RemoveWeight), normalizeWeight(req.UpdateWeight)
	for _, w := range []float64{insert, remove, update} {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, "", domain.NewCostModelError(fmt.Sprintf("invalid cost weight %v", w), nil)
		}
	}
	if insert != 1 || remove != 1 || update != 1 {
		model = analyzer.NewWeightedCostModel(insert, remove, update, model)
		name = fmt.Sprintf("%s (weights insert=%g remove=%g update=%g)", name, insert, remove, update)
	}

	if req.CERWeighted {
		model = analyzer.NewCERWeightedCostModel(model)
		name = "cer-weighted " + name
	}
	return model, name, nil
}

// Summarize aggregates pair results; failed and skipped pairs are counted but not scored
func Summarize(results []domain.PairResult) domain.TreeErrorRateSummary {
	summary := domain.TreeErrorRateSummary{TotalPairs: len(results)}

	rateSum := 0.0
	for _, result := range results {
		switch {
		case result.Failed():
			summary.FailedPairs++
			continue
		case result.Skipped:
			summary.SkippedPairs++
			continue
		}

		if summary.ScoredPairs == 0 || result.ErrorRate < summary.MinErrorRate {
			summary.MinErrorRate = result.ErrorRate
		}
		if summary.ScoredPairs == 0 || result.ErrorRate > summary.MaxErrorRate {
			summary.MaxErrorRate = result.ErrorRate
		}
		summary.ScoredPairs++
		if result.Distance == 0 {
			summary.PerfectPairs++
		}
		rateSum += result.ErrorRate
		summary.TotalDistance += result.Distance
		summary.TotalReferenceNodes += result.ReferenceNodes
	}

	if summary.ScoredPairs > 0 {
		summary.MacroErrorRate = rateSum / float64(summary.ScoredPairs)
	}
	if summary.TotalReferenceNodes > 0 {
		summary.MicroErrorRate = summary.TotalDistance / float64(summary.TotalReferenceNodes)
	}
	return summary
}

// SortPairResults orders results by name, or by descending error rate with failed
// and skipped pairs last; ties keep name order
func SortPairResults(results []domain.PairResult, sortBy domain.SortCriteria) {
	switch sortBy {
	case domain.SortByRate:
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i], results[j]
			if a.Scored() != b.Scored() {
				return a.Scored()
			}
			if a.ErrorRate != b.ErrorRate {
				return a.ErrorRate > b.ErrorRate
			}
			return a.Name < b.Name
		})
	default:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Name < results[j].Name
		})
	}
}

func logPairResult(result domain.PairResult) {
	switch {
	case result.Failed():
		log.Printf("%s: %s", result.Name, result.Error)
	case result.Skipped:
		log.Printf("%s: skipped", result.Name)
	default:
		log.Printf("%s: distance %g over %d nodes, error rate %.4f", result.Name, result.Distance, result.ReferenceNodes, result.ErrorRate)
	}
}
