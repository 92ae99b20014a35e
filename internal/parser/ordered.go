package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedMap is the ordered mapping type accepted by FromInterface
type OrderedMap = orderedmap.OrderedMap[string, any]

// NewOrderedMap creates an empty ordered mapping for building inputs in code
func NewOrderedMap() *OrderedMap {
	return orderedmap.New[string, any]()
}

// FromInterface converts an in-memory value into a Value.
// Ordered maps keep insertion order; plain Go maps have no order, so their keys are sorted.
func FromInterface(v any) (*Value, error) {
	return fromInterface(v, 0, DefaultMaxDepth)
}

func fromInterface(v any, depth, maxDepth int) (*Value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("value nesting exceeds %d levels", maxDepth)
	}

	switch t := v.(type) {
	case nil:
		return NewScalar("null"), nil
	case *Value:
		return t, nil
	case string:
		return NewScalar(t), nil
	case bool:
		return NewScalar(strconv.FormatBool(t)), nil
	case json.Number:
		return NewScalar(t.String()), nil
	case int:
		return NewScalar(strconv.Itoa(t)), nil
	case int64:
		return NewScalar(strconv.FormatInt(t, 10)), nil
	case int32:
		return NewScalar(strconv.FormatInt(int64(t), 10)), nil
	case uint:
		return NewScalar(strconv.FormatUint(uint64(t), 10)), nil
	case uint64:
		return NewScalar(strconv.FormatUint(t, 10)), nil
	case float64:
		return NewScalar(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case float32:
		return NewScalar(strconv.FormatFloat(float64(t), 'f', -1, 32)), nil

	case *OrderedMap:
		mapping := NewMapping()
		if t == nil {
			return mapping, nil
		}
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			child, err := fromInterface(pair.Value, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			mapping.Entries = append(mapping.Entries, Entry{Key: pair.Key, Value: child})
		}
		return mapping, nil

	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		mapping := NewMapping()
		for _, k := range keys {
			child, err := fromInterface(t[k], depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			mapping.Entries = append(mapping.Entries, Entry{Key: k, Value: child})
		}
		return mapping, nil

	case []any:
		sequence := NewSequence()
		for _, item := range t {
			child, err := fromInterface(item, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			sequence.Items = append(sequence.Items, child)
		}
		return sequence, nil

	case []string:
		sequence := NewSequence()
		for _, item := range t {
			sequence.Items = append(sequence.Items, NewScalar(item))
		}
		return sequence, nil

	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
