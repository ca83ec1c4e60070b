package search

import (
	"errors"
	"time"
)

// ErrEmptyCorpus is reported by Index.Warning when the index was built from
// zero documents. It is informational: the empty index is valid and every
// search against it returns no results.
var ErrEmptyCorpus = errors.New("search: corpus is empty")

// Index is a TF-IDF index over an ordered corpus. It is immutable once
// Build returns and safe for concurrent use without locking.
type Index struct {
	docs    []Document
	vocab   *Vocabulary
	idf     []float64
	vectors []SparseVector
	norms   []float64
	builtAt time.Time
	warning error
}

// Build indexes documents in the order given. Document ids are assumed to
// be unique; Build does not check.
func Build(documents []Document) *Index {
	docs := make([]Document, len(documents))
	copy(docs, documents)

	idx := &Index{
		docs:    docs,
		vectors: make([]SparseVector, len(docs)),
		norms:   make([]float64, len(docs)),
	}
	if len(docs) == 0 {
		idx.warning = ErrEmptyCorpus
	}

	// 1. Count terms per document and collect the vocabulary
	counts := make([]map[string]int, len(docs))
	seen := make(map[string]struct{})
	for i, d := range docs {
		counts[i] = termCounts(Normalize(d.Content))
		for token := range counts[i] {
			seen[token] = struct{}{}
		}
	}
	idx.vocab = newVocabulary(seen)

	// 2. Document frequency and IDF
	docFreq := make([]int, idx.vocab.Len())
	for _, c := range counts {
		for token := range c {
			i, _ := idx.vocab.Lookup(token)
			docFreq[i]++
		}
	}
	idx.idf = make([]float64, len(docFreq))
	for i, df := range docFreq {
		idx.idf[i] = smoothedIDF(len(docs), df)
	}

	// 3. Document vectors
	for i, c := range counts {
		idx.vectors[i] = idx.weigh(c)
		idx.norms[i] = idx.vectors[i].Norm()
	}

	idx.builtAt = time.Now()
	return idx
}

// Warning returns ErrEmptyCorpus for an index built from no documents and
// nil otherwise.
func (idx *Index) Warning() error {
	return idx.warning
}

// Len is the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Document returns the i-th document in corpus order.
func (idx *Index) Document(i int) Document {
	return idx.docs[i]
}

// Documents returns a copy of the corpus in index order.
func (idx *Index) Documents() []Document {
	out := make([]Document, len(idx.docs))
	copy(out, idx.docs)
	return out
}

// Vocabulary exposes the index vocabulary. It must not be modified.
func (idx *Index) Vocabulary() *Vocabulary {
	return idx.vocab
}

// VocabularySize is the number of distinct indexed tokens.
func (idx *Index) VocabularySize() int {
	return idx.vocab.Len()
}

// IDF returns the inverse document frequency of token, if it is indexed.
func (idx *Index) IDF(token string) (float64, bool) {
	i, ok := idx.vocab.Lookup(token)
	if !ok {
		return 0, false
	}
	return idx.idf[i], true
}

// DocumentVector returns the stored term vector of the i-th document.
func (idx *Index) DocumentVector(i int) SparseVector {
	return idx.vectors[i]
}

// BuiltAt is when Build finished.
func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}
