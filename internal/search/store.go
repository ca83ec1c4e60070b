package search

import "sync/atomic"

// VectorStore owns the index currently serving queries. Rebuilds produce a
// new Index that replaces the old one atomically; queries already running
// finish against the index they started with.
type VectorStore struct {
	current   atomic.Pointer[Index]
	threshold float64
	topK      int
}

// StoreOption configures a VectorStore.
type StoreOption func(*VectorStore)

// WithThreshold sets the minimum similarity used by Search.
func WithThreshold(threshold float64) StoreOption {
	return func(vs *VectorStore) {
		vs.threshold = threshold
	}
}

// WithDefaultTopK sets the result count used when callers pass topK <= 0.
func WithDefaultTopK(topK int) StoreOption {
	return func(vs *VectorStore) {
		if topK > 0 {
			vs.topK = topK
		}
	}
}

func NewVectorStore(opts ...StoreOption) *VectorStore {
	vs := &VectorStore{
		threshold: DefaultThreshold,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(vs)
	}
	vs.current.Store(Build(nil))
	return vs
}

// Rebuild indexes docs and publishes the result.
func (vs *VectorStore) Rebuild(docs []Document) *Index {
	idx := Build(docs)
	vs.current.Store(idx)
	return idx
}

// Swap publishes an already built index. A nil index is ignored.
func (vs *VectorStore) Swap(idx *Index) {
	if idx != nil {
		vs.current.Store(idx)
	}
}

// Current returns the index serving queries right now.
func (vs *VectorStore) Current() *Index {
	return vs.current.Load()
}

// Threshold is the minimum similarity applied by Search.
func (vs *VectorStore) Threshold() float64 {
	return vs.threshold
}

// DefaultTopK is the result count used when callers pass topK <= 0.
func (vs *VectorStore) DefaultTopK() int {
	return vs.topK
}

// Search finds the most similar documents to the query in the current
// index. A topK of zero or less means the store default.
func (vs *VectorStore) Search(query string, topK int) []ScoredDocument {
	if topK <= 0 {
		topK = vs.topK
	}
	// topK is positive here, so the only error Rank can return is impossible
	results, _ := vs.Current().SearchWithThreshold(query, topK, vs.threshold)
	return results
}
