package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/treerate/domain"
	"gopkg.in/yaml.v3"
)

// EncodeJSON returns an indented JSON string for the given value.
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", domain.NewOutputError("failed to marshal JSON", err)
	}
	return string(data), nil
}

// WriteJSON writes indented JSON for the given value to the writer.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode JSON", err)
	}
	return nil
}

// EncodeYAML returns a YAML string for the given value.
func EncodeYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", domain.NewOutputError("failed to marshal YAML", err)
	}
	return string(data), nil
}

// WriteYAML writes YAML for the given value to the writer.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return domain.NewOutputError("failed to encode YAML", err)
	}
	return nil
}

// Standard formatting constants
const (
	HeaderWidth    = 40
	LabelWidth     = 25
	SectionPadding = 2
	ItemPadding    = 4
)

// ANSI color codes
const (
	ColorReset  = "\x1b[0m"
	ColorRed    = "\x1b[31m"
	ColorYellow = "\x1b[33m"
	ColorGreen  = "\x1b[32m"
	ColorCyan   = "\x1b[36m"
	ColorBold   = "\x1b[1m"
)

// Error rate bands used for coloring
const (
	HighErrorRate   = 0.5
	MediumErrorRate = 0.2
)

// FormatUtils provides shared text formatting helpers
type FormatUtils struct {
	color bool
}

// NewFormatUtils creates formatting helpers without color
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// NewColorFormatUtils creates formatting helpers that color error rates
func NewColorFormatUtils() *FormatUtils {
	return &FormatUtils{color: true}
}

// FormatMainHeader creates a standardized main header
func (f *FormatUtils) FormatMainHeader(title string) string {
	return title + "\n" + strings.Repeat("=", HeaderWidth) + "\n\n"
}

// FormatSectionHeader creates a standardized section header
func (f *FormatUtils) FormatSectionHeader(title string) string {
	return strings.ToUpper(title) + "\n" + strings.Repeat("-", len(title)) + "\n"
}

// FormatSectionSeparator creates a section separator
func (f *FormatUtils) FormatSectionSeparator() string {
	return "\n"
}

// FormatLabelWithIndent creates a formatted label with specific indentation
func (f *FormatUtils) FormatLabelWithIndent(indent int, label string, value interface{}) string {
	return fmt.Sprintf("%s%s: %v\n", strings.Repeat(" ", indent), label, value)
}

// FormatRate formats an error rate as a fraction with four decimals
func (f *FormatUtils) FormatRate(rate float64) string {
	text := fmt.Sprintf("%.4f", rate)
	if !f.color {
		return text
	}
	return f.RateColor(rate) + text + ColorReset
}

// FormatPercentage formats a fraction as a percentage
func (f *FormatUtils) FormatPercentage(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// RateColor returns the color band for an error rate
func (f *FormatUtils) RateColor(rate float64) string {
	switch {
	case rate >= HighErrorRate:
		return ColorRed
	case rate >= MediumErrorRate:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// FormatTableHeader creates a table header with consistent formatting
func (f *FormatUtils) FormatTableHeader(columns ...string) string {
	header := strings.Join(columns, "  ")
	return header + "\n" + strings.Repeat("-", len(header)) + "\n"
}

// FormatListSection renders a titled list, or nothing for an empty list
func (f *FormatUtils) FormatListSection(title string, items []string) string {
	if len(items) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(f.FormatSectionHeader(title))
	for _, item := range items {
		builder.WriteString(strings.Repeat(" ", SectionPadding))
		builder.WriteString("- ")
		builder.WriteString(item)
		builder.WriteString("\n")
	}
	builder.WriteString(f.FormatSectionSeparator())
	return builder.String()
}
