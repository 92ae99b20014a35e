// Package parser decodes structured documents into ordered generic values.
//
// A Value is a mapping, a sequence or a scalar. Mapping entries keep the key
// order of the source document, which the tree builder relies on: child order
// is significant for tree edit distance.
//
// JSON is read with github.com/buger/jsonparser and YAML with gopkg.in/yaml.v3.
// Values already held in memory can be converted with FromInterface.
//
// Basic usage:
//
//	p := parser.New()
//	result, err := p.Parse(ctx, []byte(`{"a": ["b", "c"]}`), parser.FormatJSON)
//	if err != nil {
//	    // Handle parse error
//	}
//	// Use result.Value to build a tree
package parser
