// Package merkle implements an RFC 6962-style Merkle tree over a caller-
// sorted leaf set: a complete binary tree stored as a flat array, with both
// inclusion proofs (prove a leaf at a known index belongs to the tree) and
// absence proofs (prove a value is not among the leaves, by bracketing the
// position it would occupy with its would-be neighbours' inclusion proofs).
//
// Node i has children 2i and 2i+1 and the root lives at index 1; this
// layout lets every proof walk be pure index arithmetic with no pointers.
package merkle

import (
	"bytes"

	"github.com/gmsuite/smcore/sm3"
	"github.com/gmsuite/smcore/utils"
)

// Tree is a complete binary hash tree built over a sorted sequence of
// leaves. The zero value is not usable; construct one with Build.
type Tree struct {
	n         int        // number of real leaves
	size      int        // N, the smallest power of two >= n
	nodes     [][32]byte // flat array, index 1..2N-1; index 0 unused
	leafBytes [][]byte   // raw leaf bytes, parallel to leaves, caller-sorted
}

func sum(data []byte) [32]byte {
	d := sm3.New()
	_, _ = d.Write(data)
	return d.Digest()
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Build constructs a tree over leaves, which the caller must have already
// sorted lexicographically by raw bytes; Build does not sort or validate
// order, since absence proofs rely on the caller's ordering being the
// intended total order.
func Build(leaves [][]byte) *Tree {
	n := len(leaves)
	t := &Tree{n: n}
	if n == 0 {
		return t
	}

	N := nextPowerOfTwo(n)
	t.size = N
	t.nodes = make([][32]byte, 2*N)
	t.leafBytes = make([][]byte, n)

	for i := 0; i < n; i++ {
		t.leafBytes[i] = leaves[i]
		t.nodes[N+i] = sum(leaves[i])
	}
	// Padding slots [n, N) keep the zero-value [32]byte, per spec.

	for i := N - 1; i >= 1; i-- {
		t.nodes[i] = sum(append(append([]byte{}, t.nodes[2*i][:]...), t.nodes[2*i+1][:]...))
	}

	return t
}

// BuildFromStrings is a convenience wrapper over Build for callers holding
// leaves as strings (the common case for log entries and similar
// text-addressed data). It borrows each string's backing array via
// utils.String2Bytes instead of copying, so the caller's strings must not
// be mutated for the lifetime of the returned tree.
func BuildFromStrings(leaves []string) *Tree {
	converted := make([][]byte, len(leaves))
	for i, s := range leaves {
		converted[i] = utils.String2Bytes(s)
	}
	return Build(converted)
}

// Root returns the tree's root digest. An empty tree's root is the all-zero
// digest.
func (t *Tree) Root() [32]byte {
	if t.n == 0 {
		return [32]byte{}
	}
	return t.nodes[1]
}

// Len returns the number of leaves the tree was built over.
func (t *Tree) Len() int {
	return t.n
}

// Proof returns the sibling digests along the path from leaf index to the
// root, in bottom-up order.
func (t *Tree) Proof(index int) ([][32]byte, error) {
	if index < 0 || index >= t.n {
		return nil, IndexOutOfRangeError(index)
	}

	pos := t.size + index
	var proof [][32]byte
	for pos > 1 {
		proof = append(proof, t.nodes[pos^1])
		pos /= 2
	}
	return proof, nil
}

// AbsenceProof binary-searches the sorted leaf set for target. If target is
// already a leaf, it returns TargetExistsInTreeError. Otherwise it returns
// the inclusion proofs for target's predecessor and successor leaves (the
// predecessor proof is nil when target would sort before every leaf, the
// successor proof is nil when it would sort after every leaf) along with
// the index target would occupy.
func (t *Tree) AbsenceProof(target []byte) (predProof, succProof [][32]byte, insertPos int, err error) {
	lo, hi := 0, t.n
	for lo < hi {
		mid := (lo + hi) / 2
		switch bytes.Compare(t.leafBytes[mid], target) {
		case 0:
			return nil, nil, 0, TargetExistsInTreeError{}
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	insertPos = lo

	if insertPos > 0 {
		predProof, err = t.Proof(insertPos - 1)
		if err != nil {
			return nil, nil, 0, err
		}
	}
	if insertPos < t.n {
		succProof, err = t.Proof(insertPos)
		if err != nil {
			return nil, nil, 0, err
		}
	}
	return predProof, succProof, insertPos, nil
}

// Verify recomputes the root from leaf, index, the declared tree size, and
// an inclusion proof, reporting whether it matches root. It derives N from
// treeSize itself so a verifier never needs the tree structure, only the
// public parameters and the proof.
func Verify(leaf []byte, root [32]byte, index, treeSize int, proof [][32]byte) bool {
	if index < 0 || index >= treeSize {
		return false
	}

	N := nextPowerOfTwo(treeSize)
	pos := N + index
	current := sum(leaf)

	for _, sibling := range proof {
		if pos%2 == 1 {
			current = sum(append(append([]byte{}, sibling[:]...), current[:]...))
		} else {
			current = sum(append(append([]byte{}, current[:]...), sibling[:]...))
		}
		pos /= 2
	}

	return pos == 1 && current == root
}
