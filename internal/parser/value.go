package parser

import "fmt"

// Kind is the shape of a generic value
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is one key/value pair of a mapping
type Entry struct {
	Key   string
	Value *Value
}

// Value is a generic nested value: a mapping with ordered entries, a sequence or a scalar.
// Scalars are kept as text; null is "null" and booleans are "true" / "false".
type Value struct {
	Kind    Kind
	Scalar  string
	Entries []Entry
	Items   []*Value
}

// NewScalar creates a scalar value
func NewScalar(text string) *Value {
	return &Value{Kind: KindScalar, Scalar: text}
}

// NewMapping creates a mapping value with entries in the given order
func NewMapping(entries ...Entry) *Value {
	return &Value{Kind: KindMapping, Entries: append([]Entry{}, entries...)}
}

// NewSequence creates a sequence value
func NewSequence(items ...*Value) *Value {
	return &Value{Kind: KindSequence, Items: append([]*Value{}, items...)}
}

// IsMapping returns true for mapping values
func (v *Value) IsMapping() bool {
	return v != nil && v.Kind == KindMapping
}

// IsSequence returns true for sequence values
func (v *Value) IsSequence() bool {
	return v != nil && v.Kind == KindSequence
}

// Keys returns the mapping keys in source order
func (v *Value) Keys() []string {
	if !v.IsMapping() {
		return nil
	}
	keys := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value stored under key in a mapping
func (v *Value) Get(key string) (*Value, bool) {
	if !v.IsMapping() {
		return nil, false
	}
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries, items, or 1 for a scalar
func (v *Value) Len() int {
	switch {
	case v == nil:
		return 0
	case v.Kind == KindMapping:
		return len(v.Entries)
	case v.Kind == KindSequence:
		return len(v.Items)
	default:
		return 1
	}
}
