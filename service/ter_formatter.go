package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ludo-technologies/treerate/domain"
)

// TreeErrorRateFormatterImpl implements the OutputFormatter interface
type TreeErrorRateFormatterImpl struct {
	utils *FormatUtils
}

// NewTreeErrorRateFormatter creates a formatter with plain text output
func NewTreeErrorRateFormatter() *TreeErrorRateFormatterImpl {
	return &TreeErrorRateFormatterImpl{utils: NewFormatUtils()}
}

// NewColorTreeErrorRateFormatter creates a formatter that colors error rates in text output
func NewColorTreeErrorRateFormatter() *TreeErrorRateFormatterImpl {
	return &TreeErrorRateFormatterImpl{utils: NewColorFormatUtils()}
}

// Format formats the response according to the specified format
func (f *TreeErrorRateFormatterImpl) Format(response *domain.TreeErrorRateResponse, format domain.OutputFormat) (string, error) {
	if response == nil {
		return "", domain.NewOutputError("nothing to format", nil)
	}

	switch format {
	case domain.OutputFormatText, "":
		return f.formatText(response), nil
	case domain.OutputFormatJSON:
		return EncodeJSON(response)
	case domain.OutputFormatYAML:
		return EncodeYAML(response)
	case domain.OutputFormatCSV:
		return f.formatCSV(response)
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer
func (f *TreeErrorRateFormatterImpl) Write(response *domain.TreeErrorRateResponse, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(response, format)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(writer, output); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

func (f *TreeErrorRateFormatterImpl) formatText(response *domain.TreeErrorRateResponse) string {
	var builder strings.Builder
	utils := f.utils

	builder.WriteString(utils.FormatMainHeader("Tree Error Rate Report"))

	summary := response.Summary
	builder.WriteString(utils.FormatSectionHeader("Summary"))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Cost model", response.CostModel))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Pairs", summary.TotalPairs))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Scored", summary.ScoredPairs))
	if summary.SkippedPairs > 0 {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Skipped", summary.SkippedPairs))
	}
	if summary.FailedPairs > 0 {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Failed", summary.FailedPairs))
	}
	if summary.ScoredPairs > 0 {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Perfect", summary.PerfectPairs))
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Macro error rate", utils.FormatRate(summary.MacroErrorRate)))
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Micro error rate", utils.FormatRate(summary.MicroErrorRate)))
		if summary.ScoredPairs > 1 {
			builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Min error rate", utils.FormatRate(summary.MinErrorRate)))
			builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Max error rate", utils.FormatRate(summary.MaxErrorRate)))
		}
	}
	builder.WriteString(utils.FormatSectionSeparator())

	if len(response.Pairs) > 0 {
		builder.WriteString(utils.FormatSectionHeader("Pairs"))
		builder.WriteString(utils.FormatTableHeader(
			fmt.Sprintf("%-30s", "Name"), fmt.Sprintf("%10s", "Rate"), fmt.Sprintf("%10s", "Distance"),
			fmt.Sprintf("%9s", "Ref"), fmt.Sprintf("%9s", "Hyp")))
		for _, pair := range response.Pairs {
			builder.WriteString(f.formatPairRow(pair))
		}
		builder.WriteString(utils.FormatSectionSeparator())

		for _, pair := range response.Pairs {
			builder.WriteString(f.formatPairDetails(pair))
		}
	}

	builder.WriteString(utils.FormatListSection("Warnings", response.Warnings))
	builder.WriteString(utils.FormatListSection("Errors", response.Errors))

	if generated, err := time.Parse(time.RFC3339, response.GeneratedAt); err == nil {
		builder.WriteString(utils.FormatSectionHeader("Metadata"))
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Generated at", generated.Format(time.RFC3339)))
		if response.Version != "" {
			builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Version", response.Version))
		}
	}

	return builder.String()
}

func (f *TreeErrorRateFormatterImpl) formatPairRow(pair domain.PairResult) string {
	name := fmt.Sprintf("%-30s", pair.Name)
	switch {
	case pair.Failed():
		return fmt.Sprintf("%s  %10s\n", name, "error")
	case pair.Skipped:
		return fmt.Sprintf("%s  %10s\n", name, "skipped")
	}

	// Pad before coloring so escape codes do not break the columns
	rate := fmt.Sprintf("%10.4f", pair.ErrorRate)
	if f.utils.color {
		rate = f.utils.RateColor(pair.ErrorRate) + rate + ColorReset
	}
	return fmt.Sprintf("%s  %s  %10s  %9d  %9d\n",
		name, rate, strconv.FormatFloat(pair.Distance, 'g', 6, 64), pair.ReferenceNodes, pair.HypothesisNodes)
}

// formatPairDetails renders the edit script and trees of a pair when they were requested
func (f *TreeErrorRateFormatterImpl) formatPairDetails(pair domain.PairResult) string {
	if len(pair.Operations) == 0 && pair.ReferenceTree == "" && pair.HypothesisTree == "" {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.utils.FormatSectionHeader(pair.Name))

	if len(pair.Operations) > 0 {
		builder.WriteString(strings.Repeat(" ", SectionPadding) + "Operations:\n")
		for _, op := range pair.Operations {
			builder.WriteString(strings.Repeat(" ", ItemPadding))
			builder.WriteString(FormatEditOperation(op))
			builder.WriteString("\n")
		}
	}
	if pair.ReferenceTree != "" {
		builder.WriteString(strings.Repeat(" ", SectionPadding) + "Reference tree:\n")
		builder.WriteString(indentBlock(pair.ReferenceTree, ItemPadding))
	}
	if pair.HypothesisTree != "" || pair.ReferenceTree != "" {
		builder.WriteString(strings.Repeat(" ", SectionPadding) + "Hypothesis tree:\n")
		if pair.HypothesisTree == "" {
			builder.WriteString(strings.Repeat(" ", ItemPadding) + "(empty)\n")
		} else {
			builder.WriteString(indentBlock(pair.HypothesisTree, ItemPadding))
		}
	}
	builder.WriteString(f.utils.FormatSectionSeparator())
	return builder.String()
}

// FormatEditOperation renders one edit step, e.g. "update(dog -> cat) cost 1"
func FormatEditOperation(op domain.EditOperation) string {
	var step string
	switch op.Kind {
	case "remove":
		step = fmt.Sprintf("remove(%s)", op.Reference)
	case "insert":
		step = fmt.Sprintf("insert(%s)", op.Hypothesis)
	default:
		step = fmt.Sprintf("%s(%s -> %s)", op.Kind, op.Reference, op.Hypothesis)
	}
	if op.Cost == 0 {
		return step
	}
	return step + " cost " + strconv.FormatFloat(op.Cost, 'g', 4, 64)
}

func indentBlock(text string, indent int) string {
	pad := strings.Repeat(" ", indent)
	var builder strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		builder.WriteString(pad)
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String()
}

func (f *TreeErrorRateFormatterImpl) formatCSV(response *domain.TreeErrorRateResponse) (string, error) {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	header := []string{"name", "reference_path", "hypothesis_path", "reference_nodes", "hypothesis_nodes", "distance", "error_rate", "status", "error"}
	if err := writer.Write(header); err != nil {
		return "", domain.NewOutputError("failed to write CSV header", err)
	}

	for _, pair := range response.Pairs {
		status := "scored"
		switch {
		case pair.Failed():
			status = "failed"
		case pair.Skipped:
			status = "skipped"
		case pair.HypothesisMissing:
			status = "missing_hypothesis"
		}

		row := []string{
			pair.Name,
			pair.ReferencePath,
			pair.HypothesisPath,
			strconv.Itoa(pair.ReferenceNodes),
			strconv.Itoa(pair.HypothesisNodes),
			strconv.FormatFloat(pair.Distance, 'g', -1, 64),
			strconv.FormatFloat(pair.ErrorRate, 'f', 6, 64),
			status,
			pair.Error,
		}
		if err := writer.Write(row); err != nil {
			return "", domain.NewOutputError("failed to write CSV row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", domain.NewOutputError("CSV writer error", err)
	}
	return builder.String(), nil
}
