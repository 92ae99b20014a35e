package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scoringOptions are the cost and tree options shared by both tools
func scoringOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("cost_model",
			mcp.Enum("unit", "label_distance"),
			mcp.Description("Edit cost model: unit costs 1 per operation, label_distance costs the Levenshtein distance between labels (default: unit)")),
		mcp.WithBoolean("cer",
			mcp.Description("Scale relabel costs by the character error rate between labels (default: false)")),
		mcp.WithNumber("insert_weight",
			mcp.Description("Multiplier for insert costs (default: 1)")),
		mcp.WithNumber("remove_weight",
			mcp.Description("Multiplier for remove costs (default: 1)")),
		mcp.WithNumber("update_weight",
			mcp.Description("Multiplier for relabel costs (default: 1)")),
		mcp.WithString("root_policy",
			mcp.Enum("first_key", "synthetic_root"),
			mcp.Description("first_key builds the tree from the first top-level key only, synthetic_root keeps the whole document (default: first_key)")),
		mcp.WithString("input_format",
			mcp.Enum("auto", "json", "yaml"),
			mcp.Description("Document format (default: auto)")),
		mcp.WithBoolean("operations",
			mcp.Description("Include the minimal edit script of every pair (default: false)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "full"),
			mcp.Description("summary returns rates and counts, full returns the complete report (default: summary)")),
	}
}

// RegisterTools registers all treerate MCP tools with the server
func RegisterTools(s *server.MCPServer, handlers *HandlerSet) {
	if handlers == nil {
		handlers = NewHandlerSet(nil)
	}

	// Tool 1: tree_error_rate - score documents given as text
	inline := []mcp.ToolOption{
		mcp.WithDescription("Compute the tree error rate of a hypothesis JSON/YAML document against a reference document: the Zhang-Shasha tree edit distance divided by the number of reference nodes"),
		mcp.WithString("reference",
			mcp.Required(),
			mcp.Description("Reference document text (JSON or YAML). A JSON object is accepted too; its keys are then taken in sorted order")),
		mcp.WithString("hypothesis",
			mcp.Description("Hypothesis document text or JSON object; empty scores against the empty tree")),
	}
	s.AddTool(mcp.NewTool("tree_error_rate", append(inline, scoringOptions()...)...), handlers.HandleTreeErrorRate)

	// Tool 2: tree_error_rate_files - score files or directories
	files := []mcp.ToolOption{
		mcp.WithDescription("Compute tree error rates for reference and hypothesis files, or for two directories whose documents are paired by relative path"),
		mcp.WithString("reference_path",
			mcp.Required(),
			mcp.Description("Reference file or directory")),
		mcp.WithString("hypothesis_path",
			mcp.Required(),
			mcp.Description("Hypothesis file or directory")),
		mcp.WithBoolean("recursive",
			mcp.Description("Descend into subdirectories (default: true)")),
		mcp.WithString("missing",
			mcp.Enum("empty", "skip"),
			mcp.Description("What to do with a reference that has no hypothesis (default: empty)")),
		mcp.WithString("sort",
			mcp.Enum("name", "rate"),
			mcp.Description("Sort pairs by name or by error rate, highest first (default: name)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum pairs listed in summary mode, 0 = all (default: 20)")),
	}
	s.AddTool(mcp.NewTool("tree_error_rate_files", append(files, scoringOptions()...)...), handlers.HandleTreeErrorRateFiles)
}
