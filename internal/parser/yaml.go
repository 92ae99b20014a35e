package parser

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// decodeYAML reads the first document of a YAML stream keeping mapping key order
func decodeYAML(data []byte, maxDepth int) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return yamlValue(&doc, 0, maxDepth)
}

func yamlValue(node *yaml.Node, depth, maxDepth int) (*Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("document nesting exceeds %d levels", maxDepth)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NewScalar("null"), nil
		}
		return yamlValue(node.Content[0], depth, maxDepth)

	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias %q", node.Line, node.Value)
		}
		return yamlValue(node.Alias, depth+1, maxDepth)

	case yaml.MappingNode:
		mapping := NewMapping()
		index := make(map[string]int)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			child, err := yamlValue(valueNode, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			if pos, ok := index[keyNode.Value]; ok {
				mapping.Entries[pos].Value = child
				continue
			}
			index[keyNode.Value] = len(mapping.Entries)
			mapping.Entries = append(mapping.Entries, Entry{Key: keyNode.Value, Value: child})
		}
		return mapping, nil

	case yaml.SequenceNode:
		sequence := NewSequence()
		for _, itemNode := range node.Content {
			item, err := yamlValue(itemNode, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			sequence.Items = append(sequence.Items, item)
		}
		return sequence, nil

	case yaml.ScalarNode:
		return NewScalar(yamlScalarText(node)), nil

	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}

// yamlScalarText renders null and booleans the way JSON spells them
func yamlScalarText(node *yaml.Node) string {
	switch node.ShortTag() {
	case "!!null":
		return "null"
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			if b {
				return "true"
			}
			return "false"
		}
	}
	return node.Value
}
