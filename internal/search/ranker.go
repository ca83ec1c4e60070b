package search

import (
	"container/heap"
	"fmt"
)

const (
	// DefaultTopK is how many documents a search returns unless told otherwise.
	DefaultTopK = 3
	// DefaultThreshold is the minimum cosine similarity a document needs to
	// be returned.
	DefaultThreshold = 0.1
)

// InvalidTopKError rejects a negative result count.
type InvalidTopKError struct {
	TopK int
}

func (e *InvalidTopKError) Error() string {
	return fmt.Sprintf("search: top_k must be >= 0, got %d", e.TopK)
}

// Match is a ranked reference into the index corpus.
type Match struct {
	Index int
	Score float64
}

// Rank scores every document against q and returns at most topK matches
// whose similarity is at least threshold, best first. Equal scores keep
// corpus order: the lower document index ranks first.
func Rank(q SparseVector, idx *Index, topK int, threshold float64) ([]Match, error) {
	if topK < 0 {
		return nil, &InvalidTopKError{TopK: topK}
	}
	if topK == 0 || idx.Len() == 0 {
		return []Match{}, nil
	}

	qNorm := q.Norm()
	if qNorm == 0 {
		return []Match{}, nil
	}

	h := make(matchHeap, 0, min(topK, idx.Len()))
	for i, vec := range idx.vectors {
		// a document without tokens matches nothing, even at threshold 0
		if idx.norms[i] == 0 {
			continue
		}
		score := cosine(q, qNorm, vec, idx.norms[i])
		if score < threshold {
			continue
		}
		m := Match{Index: i, Score: score}
		if len(h) < topK {
			heap.Push(&h, m)
		} else if worse(h[0], m) {
			h[0] = m
			heap.Fix(&h, 0)
		}
	}

	out := make([]Match, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Match)
	}
	return out, nil
}

// worse reports whether a ranks below b.
func worse(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index > b.Index
}

// matchHeap keeps the worst retained match at the root so it can be
// evicted when a better one arrives.
type matchHeap []Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) { *h = append(*h, x.(Match)) }

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Search returns up to topK documents relevant to query using
// DefaultThreshold.
func (idx *Index) Search(query string, topK int) ([]ScoredDocument, error) {
	return idx.SearchWithThreshold(query, topK, DefaultThreshold)
}

// SearchWithThreshold is Search with an explicit minimum similarity.
func (idx *Index) SearchWithThreshold(query string, topK int, threshold float64) ([]ScoredDocument, error) {
	if topK < 0 {
		return nil, &InvalidTopKError{TopK: topK}
	}
	matches, err := Rank(idx.VectorizeQuery(query), idx, topK, threshold)
	if err != nil {
		return nil, err
	}
	results := make([]ScoredDocument, len(matches))
	for i, m := range matches {
		results[i] = ScoredDocument{
			Document:        idx.docs[m.Index],
			ConfidenceScore: m.Score,
		}
	}
	return results, nil
}
