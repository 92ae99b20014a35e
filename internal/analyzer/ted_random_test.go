package analyzer

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forestDistance is the textbook recursion over ordered forests, memoized on the
// identity of the remaining nodes. It is exponential in the worst case and only
// meant for small trees.
type forestDistance struct {
	model CostModel
	ids   map[*TreeNode]int
	memo  map[string]float64
}

func newForestDistance(model CostModel, trees ...*TreeNode) *forestDistance {
	f := &forestDistance{
		model: model,
		ids:   make(map[*TreeNode]int),
		memo:  make(map[string]float64),
	}
	var visit func(*TreeNode)
	visit = func(n *TreeNode) {
		f.ids[n] = len(f.ids)
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, tree := range trees {
		visit(tree)
	}
	return f
}

func (f *forestDistance) key(a, b []*TreeNode) string {
	var sb strings.Builder
	for _, n := range a {
		fmt.Fprintf(&sb, "%d,", f.ids[n])
	}
	sb.WriteByte('|')
	for _, n := range b {
		fmt.Fprintf(&sb, "%d,", f.ids[n])
	}
	return sb.String()
}

func (f *forestDistance) distance(a, b []*TreeNode) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	k := f.key(a, b)
	if d, ok := f.memo[k]; ok {
		return d
	}

	best := math.Inf(1)
	if len(a) > 0 {
		v := a[len(a)-1]
		rest := append(append([]*TreeNode{}, a[:len(a)-1]...), v.Children...)
		best = min(best, f.distance(rest, b)+f.model.Remove(v))
	}
	if len(b) > 0 {
		w := b[len(b)-1]
		rest := append(append([]*TreeNode{}, b[:len(b)-1]...), w.Children...)
		best = min(best, f.distance(a, rest)+f.model.Insert(w))
	}
	if len(a) > 0 && len(b) > 0 {
		v, w := a[len(a)-1], b[len(b)-1]
		best = min(best, f.distance(v.Children, w.Children)+
			f.model.Update(v, w)+
			f.distance(a[:len(a)-1], b[:len(b)-1]))
	}

	f.memo[k] = best
	return best
}

var randomLabels = []string{"a", "b", "ab", "ba", "abc", "cab", "dog", "dot"}

func randomTree(rng *rand.Rand, maxNodes int) *TreeNode {
	n := 1 + rng.Intn(maxNodes)
	nodes := make([]*TreeNode, 0, n)
	for i := 0; i < n; i++ {
		node := NewTreeNode(randomLabels[rng.Intn(len(randomLabels))])
		if i > 0 {
			nodes[rng.Intn(len(nodes))].AddChild(node)
		}
		nodes = append(nodes, node)
	}
	return nodes[0]
}

func TestDistance_RandomTreesAgreeWithForestRecursion(t *testing.T) {
	models := []struct {
		name  string
		model CostModel
	}{
		{"unit", NewUnitCostModel()},
		{"cer unit", NewCERWeightedCostModel(NewUnitCostModel())},
		{"label distance", NewLabelDistanceCostModel()},
		{"cer label distance", NewCERWeightedCostModel(NewLabelDistanceCostModel())},
	}

	for _, m := range models {
		t.Run(m.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(20261019))
			for i := 0; i < 400; i++ {
				a := randomTree(rng, 9)
				b := randomTree(rng, 9)

				result, err := DistanceWithCustomCosts(a, b, m.model, true)
				require.NoError(t, err)

				want := newForestDistance(m.model, a, b).distance([]*TreeNode{a}, []*TreeNode{b})
				require.InDelta(t, want, result.Distance, 1e-9, "pair %d\n%s\n%s", i, FormatTree(a), FormatTree(b))

				total := 0.0
				fromA, fromB := 0, 0
				for _, op := range result.Operations {
					total += op.Cost
					if op.Node1 != nil {
						fromA++
					}
					if op.Node2 != nil {
						fromB++
					}
				}
				assert.InDelta(t, result.Distance, total, 1e-9, "pair %d trace cost", i)
				assert.Equal(t, a.Size(), fromA, "pair %d: every reference node appears once", i)
				assert.Equal(t, b.Size(), fromB, "pair %d: every hypothesis node appears once", i)
			}
		})
	}
}
