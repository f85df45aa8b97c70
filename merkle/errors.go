package merkle

import "fmt"

// IndexOutOfRangeError represents an error when a proof is requested for a
// leaf index that does not exist in the tree.
type IndexOutOfRangeError int

// Error returns the error message for IndexOutOfRangeError.
func (e IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("merkle: index %d out of range", int(e))
}

// TargetExistsInTreeError indicates that AbsenceProof was called with a
// value that is itself a leaf of the tree.
type TargetExistsInTreeError struct{}

// Error returns the error message for TargetExistsInTreeError.
func (TargetExistsInTreeError) Error() string {
	return "merkle: target exists in tree"
}
