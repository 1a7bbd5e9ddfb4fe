package analysis

import (
	"math"
	"math/rand/v2"
)

// isolationForest scores points by how quickly random axis-aligned splits
// isolate them. Scores land in (0, 1); values near 1 mean the point separates
// from the rest of the data in very few splits.
type isolationForest struct {
	trees      []*isoNode
	sampleSize int
}

type isoNode struct {
	left       *isoNode
	right      *isoNode
	splitAttr  int
	splitValue float64
	size       int
}

func newIsolationForest(rng *rand.Rand, data [][]float64, trees, sampleSize int) *isolationForest {
	if sampleSize > len(data) {
		sampleSize = len(data)
	}
	f := &isolationForest{
		trees:      make([]*isoNode, 0, trees),
		sampleSize: sampleSize,
	}
	heightLimit := int(math.Ceil(math.Log2(math.Max(2, float64(sampleSize)))))
	for i := 0; i < trees; i++ {
		sample := sampleIndexes(rng, len(data), sampleSize)
		f.trees = append(f.trees, growTree(rng, data, sample, 0, heightLimit))
	}
	return f
}

// score returns the anomaly score for one point, averaged over all trees.
func (f *isolationForest) score(point []float64) float64 {
	if len(f.trees) == 0 || f.sampleSize == 0 {
		return 0
	}
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, point, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/avgPathLength(f.sampleSize))
}

func growTree(rng *rand.Rand, data [][]float64, idx []int, depth, limit int) *isoNode {
	if depth >= limit || len(idx) <= 1 {
		return &isoNode{size: len(idx)}
	}

	// Only attributes that still vary inside this partition can split it.
	attrs := len(data[idx[0]])
	splittable := make([]int, 0, attrs)
	for a := 0; a < attrs; a++ {
		lo, hi := attrRange(data, idx, a)
		if hi > lo {
			splittable = append(splittable, a)
		}
	}
	if len(splittable) == 0 {
		return &isoNode{size: len(idx)}
	}

	attr := splittable[rng.IntN(len(splittable))]
	lo, hi := attrRange(data, idx, attr)
	split := lo + rng.Float64()*(hi-lo)

	var left, right []int
	for _, i := range idx {
		if data[i][attr] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &isoNode{
		splitAttr:  attr,
		splitValue: split,
		left:       growTree(rng, data, left, depth+1, limit),
		right:      growTree(rng, data, right, depth+1, limit),
	}
}

func pathLength(node *isoNode, point []float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if point[node.splitAttr] < node.splitValue {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search in
// a tree of n nodes, the normalization constant from Liu et al.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		const euler = 0.5772156649
		h := math.Log(float64(n-1)) + euler
		return 2*h - 2*float64(n-1)/float64(n)
	}
}

func attrRange(data [][]float64, idx []int, attr int) (lo, hi float64) {
	lo = data[idx[0]][attr]
	hi = lo
	for _, i := range idx[1:] {
		v := data[i][attr]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func sampleIndexes(rng *rand.Rand, n, k int) []int {
	perm := rng.Perm(n)
	return perm[:k]
}
