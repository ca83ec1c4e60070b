package search

import (
	"math"
	"sort"
)

// Entry is one non-zero component of a SparseVector.
type Entry struct {
	Index  int
	Weight float64
}

// SparseVector holds only the non-zero weights of a term vector, sorted by
// vocabulary index so two vectors can be merge-joined.
type SparseVector []Entry

// newSparseVector builds a sorted vector from an index-to-weight map.
// Zero weights are dropped.
func newSparseVector(weights map[int]float64) SparseVector {
	if len(weights) == 0 {
		return nil
	}
	v := make(SparseVector, 0, len(weights))
	for idx, w := range weights {
		if w != 0 {
			v = append(v, Entry{Index: idx, Weight: w})
		}
	}
	sort.Slice(v, func(i, j int) bool {
		return v[i].Index < v[j].Index
	})
	return v
}

// Weight returns the weight stored at vocabulary index idx, or 0.
func (v SparseVector) Weight(idx int) float64 {
	i := sort.Search(len(v), func(i int) bool { return v[i].Index >= idx })
	if i < len(v) && v[i].Index == idx {
		return v[i].Weight
	}
	return 0
}

// Norm is the Euclidean length of the vector.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// Dot computes the inner product of two sorted sparse vectors in O(n+m).
func Dot(a, b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	return dot
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// It is 0 when either vector has zero length.
func CosineSimilarity(a, b SparseVector) float64 {
	return cosine(a, a.Norm(), b, b.Norm())
}

func cosine(a SparseVector, normA float64, b SparseVector, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	// rounding can push parallel vectors a hair past 1
	if sim > 1 {
		sim = 1
	}
	return sim
}
