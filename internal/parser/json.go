package parser

import (
	"fmt"

	"github.com/buger/jsonparser"
)

// decodeJSON reads a JSON document keeping object key order
func decodeJSON(data []byte, maxDepth int) (*Value, error) {
	raw, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}
	return jsonValue(raw, dataType, 0, maxDepth)
}

func jsonValue(raw []byte, dataType jsonparser.ValueType, depth, maxDepth int) (*Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("document nesting exceeds %d levels", maxDepth)
	}

	switch dataType {
	case jsonparser.Object:
		return jsonObject(raw, depth, maxDepth)
	case jsonparser.Array:
		return jsonArray(raw, depth, maxDepth)
	case jsonparser.String:
		text, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, err
		}
		return NewScalar(text), nil
	case jsonparser.Number, jsonparser.Boolean:
		return NewScalar(string(raw)), nil
	case jsonparser.Null:
		return NewScalar("null"), nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %q", string(raw))
	}
}

func jsonObject(raw []byte, depth, maxDepth int) (*Value, error) {
	mapping := NewMapping()
	index := make(map[string]int)

	err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		child, err := jsonValue(value, dataType, depth+1, maxDepth)
		if err != nil {
			return err
		}

		k := string(key)
		// A repeated key keeps its first position and its last value
		if pos, ok := index[k]; ok {
			mapping.Entries[pos].Value = child
			return nil
		}
		index[k] = len(mapping.Entries)
		mapping.Entries = append(mapping.Entries, Entry{Key: k, Value: child})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

func jsonArray(raw []byte, depth, maxDepth int) (*Value, error) {
	sequence := NewSequence()
	var firstErr error

	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		item, err := jsonValue(value, dataType, depth+1, maxDepth)
		if err != nil {
			firstErr = err
			return
		}
		sequence.Items = append(sequence.Items, item)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, err
	}
	return sequence, nil
}
