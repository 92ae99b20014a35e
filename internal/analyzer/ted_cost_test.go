package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitCostModel(t *testing.T) {
	model := NewUnitCostModel()
	a, b := NewTreeNode("a"), NewTreeNode("b")

	assert.Equal(t, 1.0, model.Insert(a))
	assert.Equal(t, 1.0, model.Remove(a))
	assert.Equal(t, 0.0, model.Update(a, NewTreeNode("a")))
	assert.Equal(t, 1.0, model.Update(a, b))
	assert.Equal(t, 1.0, model.Update(nil, b))
}

func TestCERWeightedCostModel(t *testing.T) {
	model := NewCERWeightedCostModel(nil)

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "dog", "dog", 0},
		{"partial overlap", "dɔɡ", "doɡ", 1.0 / 3.0},
		{"completely different", "dog", "cat", 1},
		{"clamped above one", "hola", "buenos días", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Update(NewTreeNode(tt.a), NewTreeNode(tt.b))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	assert.Equal(t, 1.0, model.Insert(NewTreeNode("x")))
	assert.Equal(t, 1.0, model.Remove(NewTreeNode("x")))
}

func TestCERWeightedCostModel_ScalesBase(t *testing.T) {
	base := NewWeightedCostModel(1, 1, 3, nil)
	model := NewCERWeightedCostModel(base)

	got := model.Update(NewTreeNode("dɔɡ"), NewTreeNode("doɡ"))
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestCERWeightedCostModel_ZeroBaseSkipsWeighting(t *testing.T) {
	calls := 0
	dissimilarity := func(string, string) float64 {
		calls++
		return 0.5
	}
	model := NewCERWeightedCostModelWithDissimilarity(nil, dissimilarity)

	assert.Equal(t, 0.0, model.Update(NewTreeNode("same"), NewTreeNode("same")))
	assert.Equal(t, 0, calls)

	assert.Equal(t, 0.5, model.Update(NewTreeNode("a"), NewTreeNode("b")))
	assert.Equal(t, 1, calls)
}

func TestCERWeightedCostModel_ClampsNegativeDissimilarity(t *testing.T) {
	model := NewCERWeightedCostModelWithDissimilarity(nil, func(string, string) float64 { return -3 })
	assert.Equal(t, 0.0, model.Update(NewTreeNode("a"), NewTreeNode("b")))
}

func TestLabelDistanceCostModel(t *testing.T) {
	model := NewLabelDistanceCostModel()

	assert.Equal(t, 3.0, model.Insert(NewTreeNode("dɔɡ")))
	assert.Equal(t, 5.0, model.Remove(NewTreeNode("perro")))
	assert.Equal(t, 1.0, model.Update(NewTreeNode("perro"), NewTreeNode("perra")))
	assert.Equal(t, 0.0, model.Update(NewTreeNode("x"), NewTreeNode("x")))
	assert.Equal(t, 0.0, model.Insert(nil))
}

func TestWeightedCostModel(t *testing.T) {
	model := NewWeightedCostModel(2.0, 3.0, 0.5, nil)
	a, b := NewTreeNode("a"), NewTreeNode("b")

	assert.Equal(t, 2.0, model.Insert(a))
	assert.Equal(t, 3.0, model.Remove(a))
	assert.Equal(t, 0.5, model.Update(a, b))
	assert.Equal(t, 0.0, model.Update(a, NewTreeNode("a")))
}

func TestCostFuncs(t *testing.T) {
	var empty CostFuncs
	a, b := NewTreeNode("a"), NewTreeNode("b")

	assert.Equal(t, 1.0, empty.Insert(a))
	assert.Equal(t, 1.0, empty.Remove(a))
	assert.Equal(t, 1.0, empty.Update(a, b))

	custom := CostFuncs{
		InsertFunc: func(n *TreeNode) float64 { return float64(len(n.Label)) },
		RemoveFunc: func(*TreeNode) float64 { return 4 },
		UpdateFunc: func(*TreeNode, *TreeNode) float64 { return 0.25 },
	}
	assert.Equal(t, 3.0, custom.Insert(NewTreeNode("abc")))
	assert.Equal(t, 4.0, custom.Remove(a))
	assert.Equal(t, 0.25, custom.Update(a, b))
}

func TestValidCost(t *testing.T) {
	assert.True(t, validCost(0))
	assert.True(t, validCost(2.5))
	assert.False(t, validCost(-0.1))
	assert.False(t, validCost(math.Inf(1)))
	assert.False(t, validCost(math.NaN()))
}

func TestCostModelError(t *testing.T) {
	err := &CostModelError{Operation: OperationUpdate, Labels: []string{"a", "b"}, Cost: -1}
	assert.Contains(t, err.Error(), "update")
	assert.ErrorIs(t, err, ErrCostModel)
}
