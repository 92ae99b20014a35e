package analyzer

import (
	"fmt"
	"strings"
)

// TreeNode represents a node in an ordered labeled tree.
// A node owns its children outright; there are no parent pointers.
type TreeNode struct {
	// Label for the node (a mapping key or a scalar value)
	Label string

	// Ordered children; order encodes document order
	Children []*TreeNode
}

// NewTreeNode creates a new tree node with the given label
func NewTreeNode(label string) *TreeNode {
	return &TreeNode{
		Label:    label,
		Children: []*TreeNode{},
	}
}

// AddChild appends a child node to this node
func (t *TreeNode) AddChild(child *TreeNode) *TreeNode {
	if child != nil {
		t.Children = append(t.Children, child)
	}
	return t
}

// IsLeaf returns true if this node has no children
func (t *TreeNode) IsLeaf() bool {
	return len(t.Children) == 0
}

// Size returns the number of nodes in the subtree rooted at this node
func (t *TreeNode) Size() int {
	if t == nil {
		return 0
	}

	size := 0
	stack := []*TreeNode{t}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		stack = append(stack, node.Children...)
	}
	return size
}

// Height returns the height of the subtree rooted at this node (a leaf has height 0)
func (t *TreeNode) Height() int {
	if t == nil {
		return 0
	}

	type frame struct {
		node  *TreeNode
		depth int
	}

	maxHeight := 0
	stack := []frame{{node: t}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxHeight {
			maxHeight = f.depth
		}
		for _, child := range f.node.Children {
			stack = append(stack, frame{node: child, depth: f.depth + 1})
		}
	}
	return maxHeight
}

// String returns a string representation of the node
func (t *TreeNode) String() string {
	return fmt.Sprintf("Node{Label: %s, Children: %d}", t.Label, len(t.Children))
}

// CountNodes returns the number of nodes in the tree; a nil tree has zero nodes
func CountNodes(tree *TreeNode) int {
	return tree.Size()
}

// FormatTree renders the tree as an indented outline, one "- label" line per node
func FormatTree(tree *TreeNode) string {
	if tree == nil {
		return ""
	}

	type frame struct {
		node  *TreeNode
		level int
	}

	var b strings.Builder
	stack := []frame{{node: tree}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b.WriteString(strings.Repeat("    ", f.level))
		b.WriteString("- ")
		b.WriteString(f.node.Label)
		b.WriteString("\n")

		// Push in reverse so the first child is printed first
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: f.node.Children[i], level: f.level + 1})
		}
	}
	return b.String()
}
