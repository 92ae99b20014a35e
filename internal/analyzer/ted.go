package analyzer

// ZhangShashaAnalyzer computes the ordered tree edit distance with the Zhang-Shasha
// keyroot decomposition, using a pluggable cost model
type ZhangShashaAnalyzer struct {
	costModel CostModel
	children  ChildrenFunc
}

// AnalyzerOption configures a ZhangShashaAnalyzer
type AnalyzerOption func(*ZhangShashaAnalyzer)

// WithChildren sets the children accessor used while annotating trees
func WithChildren(children ChildrenFunc) AnalyzerOption {
	return func(a *ZhangShashaAnalyzer) {
		if children != nil {
			a.children = children
		}
	}
}

// NewZhangShashaAnalyzer creates an analyzer with the given cost model (unit costs when nil)
func NewZhangShashaAnalyzer(costModel CostModel, opts ...AnalyzerOption) *ZhangShashaAnalyzer {
	if costModel == nil {
		costModel = NewUnitCostModel()
	}
	a := &ZhangShashaAnalyzer{
		costModel: costModel,
		children:  DefaultChildren,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CostModel returns the cost model used by the analyzer
func (a *ZhangShashaAnalyzer) CostModel() CostModel {
	return a.costModel
}

// TreeEditResult holds the result of a tree edit distance computation
type TreeEditResult struct {
	Distance   float64
	Operations []Operation // nil unless tracing was requested
	Tree1Size  int
	Tree2Size  int
}

// Distance computes the edit distance from tree1 to tree2. With trace set, the
// minimal edit script is returned as well. A nil tree is the empty tree.
func (a *ZhangShashaAnalyzer) Distance(tree1, tree2 *TreeNode, trace bool) (*TreeEditResult, error) {
	annotated1, err := AnnotateTree(tree1, a.children)
	if err != nil {
		return nil, err
	}
	annotated2, err := AnnotateTree(tree2, a.children)
	if err != nil {
		return nil, err
	}
	return a.DistanceAnnotated(annotated1, annotated2, trace)
}

// DistanceAnnotated computes the edit distance between two already annotated trees
func (a *ZhangShashaAnalyzer) DistanceAnnotated(tree1, tree2 *AnnotatedTree, trace bool) (*TreeEditResult, error) {
	size1, size2 := tree1.Size(), tree2.Size()
	if size1 == 0 || size2 == 0 {
		return a.emptyDistance(tree1, tree2, trace)
	}

	program, err := newForestProgram(a.costModel, tree1, tree2, trace)
	if err != nil {
		return nil, err
	}

	for _, i := range tree1.KeyRoots {
		for _, j := range tree2.KeyRoots {
			if err := program.treeDist(i, j); err != nil {
				return nil, err
			}
		}
	}

	result := &TreeEditResult{
		Distance:  program.treeDists[size1][size2],
		Tree1Size: size1,
		Tree2Size: size2,
	}
	if trace {
		result.Operations = program.operations[size1][size2]
	}
	return result, nil
}

// emptyDistance handles the explicit base case where at least one tree is empty:
// every node of the other tree is inserted or removed
func (a *ZhangShashaAnalyzer) emptyDistance(tree1, tree2 *AnnotatedTree, trace bool) (*TreeEditResult, error) {
	result := &TreeEditResult{Tree1Size: tree1.Size(), Tree2Size: tree2.Size()}
	if trace {
		result.Operations = []Operation{}
	}

	for x := 1; x <= tree1.Size(); x++ {
		cost, err := checkedRemove(a.costModel, tree1.Nodes[x])
		if err != nil {
			return nil, err
		}
		result.Distance += cost
		if trace {
			result.Operations = append(result.Operations, Operation{Kind: OperationRemove, Node1: tree1.Nodes[x], Cost: cost})
		}
	}

	for y := 1; y <= tree2.Size(); y++ {
		cost, err := checkedInsert(a.costModel, tree2.Nodes[y])
		if err != nil {
			return nil, err
		}
		result.Distance += cost
		if trace {
			result.Operations = append(result.Operations, Operation{Kind: OperationInsert, Node2: tree2.Nodes[y], Cost: cost})
		}
	}

	return result, nil
}

// forestProgram holds the whole-tree tables shared across keyroot pairs
type forestProgram struct {
	costModel CostModel
	a, b      *AnnotatedTree
	trace     bool

	removeCosts []float64 // by post-order index of tree a
	insertCosts []float64 // by post-order index of tree b

	treeDists  [][]float64
	operations [][][]Operation
}

func newForestProgram(costModel CostModel, a, b *AnnotatedTree, trace bool) (*forestProgram, error) {
	size1, size2 := a.Size(), b.Size()

	p := &forestProgram{
		costModel:   costModel,
		a:           a,
		b:           b,
		trace:       trace,
		removeCosts: make([]float64, size1+1),
		insertCosts: make([]float64, size2+1),
		treeDists:   newFloatMatrix(size1+1, size2+1),
	}

	var err error
	for x := 1; x <= size1; x++ {
		if p.removeCosts[x], err = checkedRemove(costModel, a.Nodes[x]); err != nil {
			return nil, err
		}
	}
	for y := 1; y <= size2; y++ {
		if p.insertCosts[y], err = checkedInsert(costModel, b.Nodes[y]); err != nil {
			return nil, err
		}
	}

	if trace {
		p.operations = newOpsMatrix(size1+1, size2+1)
	}
	return p, nil
}

// sameLineage reports whether x (in a) and y (in b) share the left-most descendants of
// the current keyroots i and j, i.e. the cell is a tree distance rather than a forest distance
func (p *forestProgram) sameLineage(i, j, x, y int) bool {
	return p.a.LMDs[i] == p.a.LMDs[x] && p.b.LMDs[j] == p.b.LMDs[y]
}

// treeDist fills the forest distance table for keyroots i and j. Table indices are
// offsets into the spans [lmd(i)..i] and [lmd(j)..j]; row and column 0 are the empty forest.
func (p *forestProgram) treeDist(i, j int) error {
	al, bl := p.a.LMDs, p.b.LMDs
	an, bn := p.a.Nodes, p.b.Nodes

	m := i - al[i] + 2
	n := j - bl[j] + 2
	ioff := al[i] - 1
	joff := bl[j] - 1

	fd := newFloatMatrix(m, n)
	var partial [][][]Operation
	if p.trace {
		partial = newOpsMatrix(m, n)
	}

	for x := 1; x < m; x++ {
		cost := p.removeCosts[x+ioff]
		fd[x][0] = fd[x-1][0] + cost
		if p.trace {
			partial[x][0] = concatOps(partial[x-1][0], Operation{Kind: OperationRemove, Node1: an[x+ioff], Cost: cost})
		}
	}
	for y := 1; y < n; y++ {
		cost := p.insertCosts[y+joff]
		fd[0][y] = fd[0][y-1] + cost
		if p.trace {
			partial[0][y] = concatOps(partial[0][y-1], Operation{Kind: OperationInsert, Node2: bn[y+joff], Cost: cost})
		}
	}

	for x := 1; x < m; x++ {
		for y := 1; y < n; y++ {
			node1 := an[x+ioff]
			node2 := bn[y+joff]
			removeCost := p.removeCosts[x+ioff]
			insertCost := p.insertCosts[y+joff]

			if p.sameLineage(i, j, x+ioff, y+joff) {
				updateCost, err := checkedUpdate(p.costModel, node1, node2)
				if err != nil {
					return err
				}

				best, choice := pickMin(
					fd[x-1][y]+removeCost,
					fd[x][y-1]+insertCost,
					fd[x-1][y-1]+updateCost,
				)
				fd[x][y] = best
				p.treeDists[x+ioff][y+joff] = best

				if p.trace {
					switch choice {
					case choiceRemove:
						partial[x][y] = concatOps(partial[x-1][y], Operation{Kind: OperationRemove, Node1: node1, Cost: removeCost})
					case choiceInsert:
						partial[x][y] = concatOps(partial[x][y-1], Operation{Kind: OperationInsert, Node2: node2, Cost: insertCost})
					default:
						kind := OperationUpdate
						if updateCost == 0 {
							kind = OperationMatch
						}
						partial[x][y] = concatOps(partial[x-1][y-1], Operation{Kind: kind, Node1: node1, Node2: node2, Cost: updateCost})
					}
					p.operations[x+ioff][y+joff] = partial[x][y]
				}
				continue
			}

			// x or y roots a smaller subtree whose tree distance is already known
			px := al[x+ioff] - 1 - ioff
			qy := bl[y+joff] - 1 - joff

			best, choice := pickMin(
				fd[x-1][y]+removeCost,
				fd[x][y-1]+insertCost,
				fd[px][qy]+p.treeDists[x+ioff][y+joff],
			)
			fd[x][y] = best

			if p.trace {
				switch choice {
				case choiceRemove:
					partial[x][y] = concatOps(partial[x-1][y], Operation{Kind: OperationRemove, Node1: node1, Cost: removeCost})
				case choiceInsert:
					partial[x][y] = concatOps(partial[x][y-1], Operation{Kind: OperationInsert, Node2: node2, Cost: insertCost})
				default:
					partial[x][y] = concatOps(partial[px][qy], p.operations[x+ioff][y+joff]...)
				}
			}
		}
	}

	return nil
}

const (
	choiceRemove = iota
	choiceInsert
	choiceRelabel
)

// pickMin returns the smallest cost and which branch produced it.
// Ties go to remove, then insert, then relabel.
func pickMin(remove, insert, relabel float64) (float64, int) {
	best, choice := remove, choiceRemove
	if insert < best {
		best, choice = insert, choiceInsert
	}
	if relabel < best {
		best, choice = relabel, choiceRelabel
	}
	return best, choice
}

func newFloatMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	matrix := make([][]float64, rows)
	for r := range matrix {
		matrix[r] = backing[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return matrix
}

func newOpsMatrix(rows, cols int) [][][]Operation {
	matrix := make([][][]Operation, rows)
	for r := range matrix {
		matrix[r] = make([][]Operation, cols)
	}
	return matrix
}

// SimpleDistance returns the unit-cost tree edit distance between two trees
func SimpleDistance(tree1, tree2 *TreeNode) (float64, error) {
	result, err := NewZhangShashaAnalyzer(NewUnitCostModel()).Distance(tree1, tree2, false)
	if err != nil {
		return 0, err
	}
	return result.Distance, nil
}

// DistanceWithCustomCosts returns the tree edit distance under the given cost model and,
// when trace is set, the minimal edit script
func DistanceWithCustomCosts(tree1, tree2 *TreeNode, costModel CostModel, trace bool) (*TreeEditResult, error) {
	return NewZhangShashaAnalyzer(costModel).Distance(tree1, tree2, trace)
}
