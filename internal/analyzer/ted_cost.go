package analyzer

import (
	"math"
	"unicode/utf8"
)

// CostModel defines the interface for calculating edit operation costs.
// Implementations must be pure and return finite, non-negative values.
type CostModel interface {
	// Insert returns the cost of inserting a node
	Insert(node *TreeNode) float64

	// Remove returns the cost of removing a node
	Remove(node *TreeNode) float64

	// Update returns the cost of relabeling node1 to node2
	Update(node1, node2 *TreeNode) float64
}

// UnitCostModel implements the uniform cost model: structural edits cost 1.0,
// relabeling costs 0.0 for equal labels and 1.0 otherwise
type UnitCostModel struct{}

// NewUnitCostModel creates a new unit cost model
func NewUnitCostModel() *UnitCostModel {
	return &UnitCostModel{}
}

// Insert returns the cost of inserting a node (always 1.0)
func (c *UnitCostModel) Insert(node *TreeNode) float64 {
	return 1.0
}

// Remove returns the cost of removing a node (always 1.0)
func (c *UnitCostModel) Remove(node *TreeNode) float64 {
	return 1.0
}

// Update returns the cost of relabeling node1 to node2
func (c *UnitCostModel) Update(node1, node2 *TreeNode) float64 {
	if node1 == nil || node2 == nil {
		return 1.0
	}

	if node1.Label == node2.Label {
		return 0.0
	}

	return 1.0
}

// CERWeightedCostModel scales the relabel cost of a base model by the character
// error rate between the two labels, clamped to at most 1
type CERWeightedCostModel struct {
	Base          CostModel
	Dissimilarity LabelDissimilarity
}

// NewCERWeightedCostModel wraps base with CharacterErrorRate weighting.
// A nil base means unit costs.
func NewCERWeightedCostModel(base CostModel) *CERWeightedCostModel {
	return NewCERWeightedCostModelWithDissimilarity(base, CharacterErrorRate)
}

// NewCERWeightedCostModelWithDissimilarity wraps base with a custom dissimilarity function
func NewCERWeightedCostModelWithDissimilarity(base CostModel, dissimilarity LabelDissimilarity) *CERWeightedCostModel {
	if base == nil {
		base = NewUnitCostModel()
	}
	if dissimilarity == nil {
		dissimilarity = CharacterErrorRate
	}
	return &CERWeightedCostModel{
		Base:          base,
		Dissimilarity: dissimilarity,
	}
}

// Insert delegates to the base model
func (c *CERWeightedCostModel) Insert(node *TreeNode) float64 {
	return c.Base.Insert(node)
}

// Remove delegates to the base model
func (c *CERWeightedCostModel) Remove(node *TreeNode) float64 {
	return c.Base.Remove(node)
}

// Update returns base * min(dissimilarity, 1); a zero base cost is never weighted
func (c *CERWeightedCostModel) Update(node1, node2 *TreeNode) float64 {
	base := c.Base.Update(node1, node2)
	if base == 0 || node1 == nil || node2 == nil {
		return base
	}

	weight := c.Dissimilarity(node1.Label, node2.Label)
	if math.IsNaN(weight) {
		// Let cost validation reject it
		return weight
	}
	return base * clampUnit(weight)
}

// LabelDistanceCostModel charges by characters: inserting or removing a node costs
// its label length and relabeling costs the edit distance between the labels
type LabelDistanceCostModel struct{}

// NewLabelDistanceCostModel creates a new label distance cost model
func NewLabelDistanceCostModel() *LabelDistanceCostModel {
	return &LabelDistanceCostModel{}
}

// Insert returns the label length of the inserted node
func (c *LabelDistanceCostModel) Insert(node *TreeNode) float64 {
	if node == nil {
		return 0.0
	}
	return float64(utf8.RuneCountInString(node.Label))
}

// Remove returns the label length of the removed node
func (c *LabelDistanceCostModel) Remove(node *TreeNode) float64 {
	if node == nil {
		return 0.0
	}
	return float64(utf8.RuneCountInString(node.Label))
}

// Update returns the edit distance between the two labels
func (c *LabelDistanceCostModel) Update(node1, node2 *TreeNode) float64 {
	if node1 == nil || node2 == nil {
		return c.Insert(node1) + c.Insert(node2)
	}
	return float64(LabelEditDistance(node1.Label, node2.Label))
}

// WeightedCostModel allows custom weights for different operation types
type WeightedCostModel struct {
	InsertWeight  float64
	RemoveWeight  float64
	UpdateWeight  float64
	BaseCostModel CostModel
}

// NewWeightedCostModel creates a new weighted cost model
func NewWeightedCostModel(insertWeight, removeWeight, updateWeight float64, baseCostModel CostModel) *WeightedCostModel {
	if baseCostModel == nil {
		baseCostModel = NewUnitCostModel()
	}
	return &WeightedCostModel{
		InsertWeight:  insertWeight,
		RemoveWeight:  removeWeight,
		UpdateWeight:  updateWeight,
		BaseCostModel: baseCostModel,
	}
}

// Insert returns the weighted cost of inserting a node
func (c *WeightedCostModel) Insert(node *TreeNode) float64 {
	return c.InsertWeight * c.BaseCostModel.Insert(node)
}

// Remove returns the weighted cost of removing a node
func (c *WeightedCostModel) Remove(node *TreeNode) float64 {
	return c.RemoveWeight * c.BaseCostModel.Remove(node)
}

// Update returns the weighted cost of relabeling node1 to node2
func (c *WeightedCostModel) Update(node1, node2 *TreeNode) float64 {
	return c.UpdateWeight * c.BaseCostModel.Update(node1, node2)
}

// CostFuncs adapts three plain functions to the CostModel interface.
// A nil function falls back to the unit cost for that operation.
type CostFuncs struct {
	InsertFunc func(node *TreeNode) float64
	RemoveFunc func(node *TreeNode) float64
	UpdateFunc func(node1, node2 *TreeNode) float64
}

// Insert calls InsertFunc
func (c CostFuncs) Insert(node *TreeNode) float64 {
	if c.InsertFunc == nil {
		return 1.0
	}
	return c.InsertFunc(node)
}

// Remove calls RemoveFunc
func (c CostFuncs) Remove(node *TreeNode) float64 {
	if c.RemoveFunc == nil {
		return 1.0
	}
	return c.RemoveFunc(node)
}

// Update calls UpdateFunc
func (c CostFuncs) Update(node1, node2 *TreeNode) float64 {
	if c.UpdateFunc == nil {
		return (&UnitCostModel{}).Update(node1, node2)
	}
	return c.UpdateFunc(node1, node2)
}

// validCost reports whether a cost may enter the dynamic program
func validCost(cost float64) bool {
	return cost >= 0 && !math.IsInf(cost, 0) && !math.IsNaN(cost)
}

// checkedInsert evaluates and validates an insert cost
func checkedInsert(model CostModel, node *TreeNode) (float64, error) {
	cost := model.Insert(node)
	if !validCost(cost) {
		return 0, &CostModelError{Operation: OperationInsert, Labels: []string{node.Label}, Cost: cost}
	}
	return cost, nil
}

// checkedRemove evaluates and validates a remove cost
func checkedRemove(model CostModel, node *TreeNode) (float64, error) {
	cost := model.Remove(node)
	if !validCost(cost) {
		return 0, &CostModelError{Operation: OperationRemove, Labels: []string{node.Label}, Cost: cost}
	}
	return cost, nil
}

// checkedUpdate evaluates and validates a relabel cost
func checkedUpdate(model CostModel, node1, node2 *TreeNode) (float64, error) {
	cost := model.Update(node1, node2)
	if !validCost(cost) {
		return 0, &CostModelError{Operation: OperationUpdate, Labels: []string{node1.Label, node2.Label}, Cost: cost}
	}
	return cost, nil
}
