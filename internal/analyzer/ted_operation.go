package analyzer

import "fmt"

// OperationKind identifies one edit step
type OperationKind int

const (
	OperationRemove OperationKind = iota
	OperationInsert
	OperationUpdate
	OperationMatch
)

// String returns the lower-case name of the operation kind
func (k OperationKind) String() string {
	switch k {
	case OperationRemove:
		return "remove"
	case OperationInsert:
		return "insert"
	case OperationUpdate:
		return "update"
	case OperationMatch:
		return "match"
	default:
		return fmt.Sprintf("operation(%d)", int(k))
	}
}

// Operation is one step of an edit script. Remove carries only Node1,
// Insert carries only Node2, Update and Match carry both.
type Operation struct {
	Kind  OperationKind
	Node1 *TreeNode
	Node2 *TreeNode
	Cost  float64
}

// String returns a compact description such as "update(dog -> cat)"
func (o Operation) String() string {
	switch o.Kind {
	case OperationRemove:
		return fmt.Sprintf("remove(%s)", labelOf(o.Node1))
	case OperationInsert:
		return fmt.Sprintf("insert(%s)", labelOf(o.Node2))
	default:
		return fmt.Sprintf("%s(%s -> %s)", o.Kind, labelOf(o.Node1), labelOf(o.Node2))
	}
}

func labelOf(node *TreeNode) string {
	if node == nil {
		return ""
	}
	return node.Label
}

// concatOps returns a fresh slice holding prefix followed by ops; prefix is never aliased
func concatOps(prefix []Operation, ops ...Operation) []Operation {
	out := make([]Operation, 0, len(prefix)+len(ops))
	out = append(out, prefix...)
	return append(out, ops...)
}
