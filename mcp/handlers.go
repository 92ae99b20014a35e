package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/treerate/domain"
	"github.com/ludo-technologies/treerate/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultMaxResults bounds the pairs listed in summary mode
const defaultMaxResults = 20

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleTreeErrorRate handles the tree_error_rate tool
func (h *HandlerSet) HandleTreeErrorRate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	pair := domain.InlinePair{}
	switch reference := args["reference"].(type) {
	case string:
		pair.Reference = reference
	case map[string]interface{}, []interface{}:
		pair.ReferenceValue = reference
	default:
		return mcp.NewToolResultError("reference parameter is required and must be a document string or object"), nil
	}
	switch hypothesis := args["hypothesis"].(type) {
	case nil:
	case string:
		pair.Hypothesis = hypothesis
	case map[string]interface{}, []interface{}:
		pair.HypothesisValue = hypothesis
	default:
		return mcp.NewToolResultError("hypothesis parameter must be a document string or object"), nil
	}

	req, err := h.buildRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc := service.NewTreeErrorRateService()
	result, err := svc.ScoreInline(ctx, pair, req)
	if err != nil {
		return scoringError(err), nil
	}

	var responseData interface{} = result
	if outputMode(args) != "full" {
		responseData = pairSummary(*result, req.ShowOperations)
	}
	return jsonResult(responseData)
}

// HandleTreeErrorRateFiles handles the tree_error_rate_files tool
func (h *HandlerSet) HandleTreeErrorRateFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	referencePath, ok := args["reference_path"].(string)
	if !ok {
		return mcp.NewToolResultError("reference_path parameter is required and must be a string"), nil
	}
	hypothesisPath, ok := args["hypothesis_path"].(string)
	if !ok {
		return mcp.NewToolResultError("hypothesis_path parameter is required and must be a string"), nil
	}

	if _, err := os.Stat(referencePath); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", referencePath)), nil
	}

	req, err := h.buildRequest(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req.ReferencePath = referencePath
	req.HypothesisPath = hypothesisPath

	if recursive, ok := args["recursive"].(bool); ok {
		req.Recursive = recursive
	}
	if missing, ok := args["missing"].(string); ok {
		req.MissingHypothesis = domain.MissingHypothesisPolicy(missing)
	}
	if sortBy, ok := args["sort"].(string); ok {
		req.SortBy = domain.SortCriteria(sortBy)
	}

	maxResults := defaultMaxResults
	if mr, ok := args["max_results"].(float64); ok {
		maxResults = int(mr)
	}

	useCase, err := h.deps.BuildUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create scorer: %v", err)), nil
	}

	response, err := useCase.ScoreAndReturn(ctx, req)
	if err != nil {
		return scoringError(err), nil
	}

	var responseData interface{} = response
	if outputMode(args) != "full" {
		responseData = formatResponseSummary(response, maxResults, req.ShowOperations)
	}
	return jsonResult(responseData)
}

// buildRequest starts from the configuration and applies the shared tool arguments
func (h *HandlerSet) buildRequest(args map[string]interface{}) (domain.TreeErrorRateRequest, error) {
	req := h.deps.BaseRequest()
	req.OutputWriter = io.Discard
	req.OutputFormat = domain.OutputFormatJSON

	if model, ok := args["cost_model"].(string); ok {
		req.CostModel = domain.CostModelType(model)
	}
	if cer, ok := args["cer"].(bool); ok {
		req.CERWeighted = cer
	}
	if w, ok := args["insert_weight"].(float64); ok {
		req.InsertWeight = w
	}
	if w, ok := args["remove_weight"].(float64); ok {
		req.RemoveWeight = w
	}
	if w, ok := args["update_weight"].(float64); ok {
		req.UpdateWeight = w
	}
	if policy, ok := args["root_policy"].(string); ok {
		req.RootPolicy = domain.RootPolicy(policy)
	}
	if format, ok := args["input_format"].(string); ok {
		req.InputFormat = domain.InputFormat(format)
	}
	if ops, ok := args["operations"].(bool); ok {
		req.ShowOperations = ops
	}

	// Reject bad cost settings before any document is read
	if _, _, err := service.CostModelFor(req); err != nil {
		return req, err
	}
	return req, nil
}

// scoringError prefixes the error with its category so clients can tell bad input from bad settings
func scoringError(err error) *mcp.CallToolResult {
	categorized := service.NewErrorCategorizer().Categorize(err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", categorized.Category, err))
}

func outputMode(args map[string]interface{}) string {
	if mode, ok := args["output_mode"].(string); ok {
		return mode
	}
	return "summary"
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func pairSummary(pair domain.PairResult, withOperations bool) map[string]interface{} {
	summary := map[string]interface{}{
		"name":             pair.Name,
		"error_rate":       pair.ErrorRate,
		"distance":         pair.Distance,
		"reference_nodes":  pair.ReferenceNodes,
		"hypothesis_nodes": pair.HypothesisNodes,
	}
	if pair.HypothesisMissing {
		summary["hypothesis_missing"] = true
	}
	if pair.Skipped {
		summary["skipped"] = true
	}
	if pair.Error != "" {
		summary["error"] = pair.Error
	}
	if withOperations && len(pair.Operations) > 0 {
		summary["operations"] = pair.Operations
	}
	return summary
}

func formatResponseSummary(response *domain.TreeErrorRateResponse, maxResults int, withOperations bool) map[string]interface{} {
	pairs := make([]map[string]interface{}, 0, len(response.Pairs))
	for i, pair := range response.Pairs {
		if maxResults > 0 && i >= maxResults {
			break
		}
		pairs = append(pairs, pairSummary(pair, withOperations))
	}

	return map[string]interface{}{
		"cost_model": response.CostModel,
		"pairs":      pairs,
		"truncated":  len(pairs) < len(response.Pairs),
		"errors":     response.Errors,
		"summary": map[string]interface{}{
			"total_pairs":      response.Summary.TotalPairs,
			"scored_pairs":     response.Summary.ScoredPairs,
			"failed_pairs":     response.Summary.FailedPairs,
			"skipped_pairs":    response.Summary.SkippedPairs,
			"perfect_pairs":    response.Summary.PerfectPairs,
			"macro_error_rate": response.Summary.MacroErrorRate,
			"micro_error_rate": response.Summary.MicroErrorRate,
		},
	}
}
