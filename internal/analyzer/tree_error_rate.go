package analyzer

// ErrorRateResult holds a tree error rate together with the distance it was derived from
type ErrorRateResult struct {
	*TreeEditResult
	ErrorRate float64
}

// TreeErrorRate returns the edit distance from reference to hypothesis divided by the
// number of reference nodes. With cerWeighted, relabel costs are scaled by the
// character error rate between the labels.
func TreeErrorRate(reference, hypothesis *TreeNode, cerWeighted bool) (float64, error) {
	var costModel CostModel = NewUnitCostModel()
	if cerWeighted {
		costModel = NewCERWeightedCostModel(costModel)
	}

	result, err := TreeErrorRateWithModel(reference, hypothesis, costModel, false)
	if err != nil {
		return 0, err
	}
	return result.ErrorRate, nil
}

// TreeErrorRateWithModel computes the tree error rate under an arbitrary cost model.
// The reference size is the one the annotator counted; the tree is not walked again.
func TreeErrorRateWithModel(reference, hypothesis *TreeNode, costModel CostModel, trace bool) (*ErrorRateResult, error) {
	if reference == nil {
		return nil, &EmptyReferenceError{}
	}

	result, err := NewZhangShashaAnalyzer(costModel).Distance(reference, hypothesis, trace)
	if err != nil {
		return nil, err
	}
	if result.Tree1Size == 0 {
		return nil, &EmptyReferenceError{}
	}

	return &ErrorRateResult{
		TreeEditResult: result,
		ErrorRate:      result.Distance / float64(result.Tree1Size),
	}, nil
}
