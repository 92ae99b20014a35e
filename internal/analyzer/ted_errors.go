package analyzer

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks
var (
	ErrStructural     = errors.New("malformed tree")
	ErrEmptyReference = errors.New("reference tree has no nodes")
	ErrCostModel      = errors.New("invalid cost")
)

// StructuralError reports a cyclic or otherwise malformed tree handed to the annotator
type StructuralError struct {
	Label  string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed tree at node %q: %s", e.Label, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// EmptyReferenceError is returned when the error rate is requested for an empty reference tree
type EmptyReferenceError struct{}

func (e *EmptyReferenceError) Error() string {
	return "cannot compute tree error rate: reference tree has no nodes"
}

func (e *EmptyReferenceError) Unwrap() error {
	return ErrEmptyReference
}

// CostModelError reports a negative or non-finite cost returned by a cost model
type CostModelError struct {
	Operation OperationKind
	Labels    []string
	Cost      float64
}

func (e *CostModelError) Error() string {
	return fmt.Sprintf("cost model returned invalid %s cost %v for %q", e.Operation, e.Cost, e.Labels)
}

func (e *CostModelError) Unwrap() error {
	return ErrCostModel
}
