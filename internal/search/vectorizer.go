package search

import "math"

// smoothedIDF is ln((1+N)/(1+df)) + 1.
func smoothedIDF(docCount, docFreq int) float64 {
	return math.Log(float64(1+docCount)/float64(1+docFreq)) + 1
}

// termCounts counts raw occurrences of each token.
func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}

// weigh converts raw counts into a tf*idf vector against the vocabulary.
// Tokens outside the vocabulary are skipped.
func (idx *Index) weigh(counts map[string]int) SparseVector {
	weights := make(map[int]float64, len(counts))
	for token, count := range counts {
		i, ok := idx.vocab.Lookup(token)
		if !ok {
			continue
		}
		weights[i] = float64(count) * idx.idf[i]
	}
	return newSparseVector(weights)
}

// VectorizeQuery normalizes text exactly like corpus content and weights
// it with the corpus IDF. The query never becomes part of the corpus, and
// tokens the corpus never contained contribute nothing.
func (idx *Index) VectorizeQuery(text string) SparseVector {
	return idx.weigh(termCounts(Normalize(text)))
}
