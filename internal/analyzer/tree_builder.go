package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/treerate/internal/parser"
)

// RootPolicy decides how the top level of a document becomes the tree root
type RootPolicy string

const (
	// RootPolicyFirstKey uses the first top-level key as the root and drops the other
	// top-level keys. Documents whose top level is not a non-empty mapping give the empty tree.
	RootPolicyFirstKey RootPolicy = "first_key"

	// RootPolicySyntheticRoot hangs the whole document below a synthetic root node
	RootPolicySyntheticRoot RootPolicy = "synthetic_root"
)

// DefaultSyntheticRootLabel is the label of the synthetic root node
const DefaultSyntheticRootLabel = "root"

// ParseRootPolicy converts a user-supplied policy name
func ParseRootPolicy(name string) (RootPolicy, error) {
	switch RootPolicy(name) {
	case "", RootPolicyFirstKey:
		return RootPolicyFirstKey, nil
	case RootPolicySyntheticRoot:
		return RootPolicySyntheticRoot, nil
	default:
		return "", fmt.Errorf("unknown root policy %q (expected %s or %s)", name, RootPolicyFirstKey, RootPolicySyntheticRoot)
	}
}

// TreeBuilder converts generic document values into labeled ordered trees
type TreeBuilder struct {
	RootPolicy         RootPolicy
	SyntheticRootLabel string
}

// NewTreeBuilder creates a tree builder with the first-key root policy
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		RootPolicy:         RootPolicyFirstKey,
		SyntheticRootLabel: DefaultSyntheticRootLabel,
	}
}

// buildTask attaches the nodes produced from value below parent
type buildTask struct {
	parent *TreeNode
	value  *parser.Value
}

// Build converts value into a tree. Mapping keys become nodes holding their value;
// sequence elements are attached directly to the enclosing node, a mapping element
// contributing one node per key; scalars become leaves. Input order is kept.
// A sequence nested directly in another sequence is flattened the same way, so
// [["a", "b"], "c"] gives the leaves a, b and c rather than one leaf for the inner list.
func (b *TreeBuilder) Build(value *parser.Value) *TreeNode {
	if value == nil {
		return nil
	}

	var root *TreeNode
	var stack []buildTask

	switch b.RootPolicy {
	case RootPolicySyntheticRoot:
		label := b.SyntheticRootLabel
		if label == "" {
			label = DefaultSyntheticRootLabel
		}
		root = NewTreeNode(label)
		stack = append(stack, buildTask{parent: root, value: value})
	default:
		if !value.IsMapping() || len(value.Entries) == 0 {
			return nil
		}
		first := value.Entries[0]
		root = NewTreeNode(first.Key)
		stack = append(stack, buildTask{parent: root, value: first.Value})
	}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = b.expand(task, stack)
	}

	return root
}

// expand attaches the direct children for task and pushes the work for their values.
// Children are attached immediately, so the order in which pending tasks run does not
// affect sibling order.
func (b *TreeBuilder) expand(task buildTask, stack []buildTask) []buildTask {
	value := task.value
	if value == nil {
		return stack
	}

	switch value.Kind {
	case parser.KindMapping:
		for _, entry := range value.Entries {
			child := NewTreeNode(entry.Key)
			task.parent.AddChild(child)
			stack = append(stack, buildTask{parent: child, value: entry.Value})
		}

	case parser.KindSequence:
		// Walk nested sequences in place so their elements flatten into the same parent
		pending := []*parser.Value{value}
		cursors := []int{0}
		for len(pending) > 0 {
			top := len(pending) - 1
			if cursors[top] >= len(pending[top].Items) {
				pending = pending[:top]
				cursors = cursors[:top]
				continue
			}
			item := pending[top].Items[cursors[top]]
			cursors[top]++

			switch {
			case item == nil:
				continue
			case item.IsSequence():
				pending = append(pending, item)
				cursors = append(cursors, 0)
			case item.IsMapping():
				stack = b.expand(buildTask{parent: task.parent, value: item}, stack)
			default:
				task.parent.AddChild(NewTreeNode(item.Scalar))
			}
		}

	default:
		task.parent.AddChild(NewTreeNode(value.Scalar))
	}

	return stack
}

// BuildTree converts value into a tree using the first-key root policy
func BuildTree(value *parser.Value) *TreeNode {
	return NewTreeBuilder().Build(value)
}
