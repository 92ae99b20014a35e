package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultMaxDepth bounds document nesting while decoding
const DefaultMaxDepth = 1000

// Format is a supported document format
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Parser decodes JSON and YAML documents into generic values
type Parser struct {
	maxDepth int
}

// New creates a new Parser with the default depth limit
func New() *Parser {
	return &Parser{maxDepth: DefaultMaxDepth}
}

// NewWithMaxDepth creates a Parser that rejects documents nested deeper than maxDepth
func NewWithMaxDepth(maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{maxDepth: maxDepth}
}

// ParseResult represents the result of decoding a document
type ParseResult struct {
	Value  *Value
	Format Format
	Source []byte
}

// Parse decodes source in the given format; FormatAuto sniffs the content
func (p *Parser) Parse(ctx context.Context, source []byte, format Format) (*ParseResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(bytes.TrimSpace(source)) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if format == "" || format == FormatAuto {
		format = SniffFormat(source)
	}

	var (
		value *Value
		err   error
	)
	switch format {
	case FormatJSON:
		value, err = decodeJSON(source, p.maxDepth)
	case FormatYAML:
		value, err = decodeYAML(source, p.maxDepth)
	default:
		return nil, fmt.Errorf("unsupported document format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s document: %w", format, err)
	}

	return &ParseResult{
		Value:  value,
		Format: format,
		Source: source,
	}, nil
}

// ParseFile decodes a document from a reader
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, format Format) (*ParseResult, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return p.Parse(ctx, source, format)
}

// FormatForPath picks the format from a file extension, FormatAuto when unknown
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// SniffFormat treats documents starting with '{' or '[' as JSON and anything else as YAML
func SniffFormat(source []byte) Format {
	trimmed := bytes.TrimLeft(source, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// ParseFormat converts a user-supplied format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document format: %s", name)
	}
}
