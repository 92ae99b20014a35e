package analyzer

// ChildrenFunc returns the ordered children of a node
type ChildrenFunc func(node *TreeNode) []*TreeNode

// DefaultChildren returns node.Children
func DefaultChildren(node *TreeNode) []*TreeNode {
	return node.Children
}

// AnnotatedTree is the read-only post-order view of a tree used by the Zhang-Shasha program.
// All slices are 1-based: index 0 holds a sentinel.
type AnnotatedTree struct {
	Root *TreeNode

	// Nodes in post-order; Nodes[0] is nil
	Nodes []*TreeNode

	// LMDs[i] is the post-order index of the left-most leaf descendant of Nodes[i]
	LMDs []int

	// KeyRoots in ascending order; the last one is always the root
	KeyRoots []int
}

// Size returns the number of nodes in the annotated tree
func (t *AnnotatedTree) Size() int {
	return len(t.Nodes) - 1
}

// annotateFrame is one pending node on the post-order work-list
type annotateFrame struct {
	node     *TreeNode
	children []*TreeNode
	next     int // index of the next child to descend into
	firstLMD int // left-most descendant reported by the first child
}

// AnnotateTree numbers the tree in post-order and computes left-most descendants and keyroots.
// A node reachable twice (a cycle or a shared child) yields a *StructuralError.
func AnnotateTree(root *TreeNode, children ChildrenFunc) (*AnnotatedTree, error) {
	if children == nil {
		children = DefaultChildren
	}

	tree := &AnnotatedTree{
		Root:  root,
		Nodes: []*TreeNode{nil},
		LMDs:  []int{0},
	}
	if root == nil {
		return tree, nil
	}

	visited := map[*TreeNode]struct{}{root: {}}
	stack := []*annotateFrame{{node: root, children: children(root)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			if child == nil {
				return nil, &StructuralError{Label: top.node.Label, Reason: "nil child"}
			}
			if _, seen := visited[child]; seen {
				return nil, &StructuralError{Label: child.Label, Reason: "node reachable more than once (cycle or shared child)"}
			}
			visited[child] = struct{}{}
			stack = append(stack, &annotateFrame{node: child, children: children(child)})
			continue
		}

		// All children numbered: number this node
		stack = stack[:len(stack)-1]
		index := len(tree.Nodes)
		lmd := index
		if len(top.children) > 0 {
			lmd = top.firstLMD
		}
		tree.Nodes = append(tree.Nodes, top.node)
		tree.LMDs = append(tree.LMDs, lmd)

		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			if parent.next == 1 {
				parent.firstLMD = lmd
			}
		}
	}

	tree.KeyRoots = computeKeyRoots(tree.LMDs)
	return tree, nil
}

// computeKeyRoots keeps, for every distinct left-most descendant, the highest post-order index
// that has it. The result is ascending.
func computeKeyRoots(lmds []int) []int {
	size := len(lmds) - 1
	highest := make([]int, size+1)
	for i := 1; i <= size; i++ {
		highest[lmds[i]] = i
	}

	keyRoots := make([]int, 0, size)
	for i := 1; i <= size; i++ {
		if highest[lmds[i]] == i {
			keyRoots = append(keyRoots, i)
		}
	}
	return keyRoots
}
