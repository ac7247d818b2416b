package index

import (
	"fmt"
	"sort"
)

// Flat is an exhaustive nearest-neighbour index over a fixed set of
// vectors. It is built once and never mutated, so it is safe for
// concurrent searches.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Result is a single search hit. Index refers to the position of the
// vector passed to NewFlat.
type Result struct {
	Index    int
	Distance float32
}

// NewFlat builds an index over vectors. All vectors must share the same
// dimension.
func NewFlat(vectors [][]float32) (*Flat, error) {
	f := &Flat{
		vectors: vectors,
	}
	if len(vectors) == 0 {
		return f, nil
	}
	f.dim = len(vectors[0])
	for i, v := range vectors {
		if len(v) != f.dim {
			return nil, fmt.Errorf("index: vector %d has dimension %d, expected %d", i, len(v), f.dim)
		}
	}
	return f, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Search returns the k nearest vectors to query by squared Euclidean
// distance, in ascending distance order. Ties are broken by insertion
// order, so results are deterministic. If k exceeds the index size, all
// vectors are returned.
func (f *Flat) Search(query []float32, k int) ([]Result, error) {
	if len(f.vectors) > 0 && len(query) != f.dim {
		return nil, fmt.Errorf("index: query has dimension %d, expected %d", len(query), f.dim)
	}
	if k < 0 {
		return nil, fmt.Errorf("index: k must be non-negative, got %d", k)
	}
	results := make([]Result, len(f.vectors))
	for i, v := range f.vectors {
		results[i] = Result{
			Index:    i,
			Distance: squaredL2(query, v),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func squaredL2(a, b []float32) (sum float32) {
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
