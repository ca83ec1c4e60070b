package search

import "sort"

// Vocabulary maps each distinct corpus token to a stable integer index.
// Indices follow lexicographic token order, so the same corpus always
// produces the same vocabulary.
type Vocabulary struct {
	index map[string]int
	terms []string
}

func newVocabulary(tokens map[string]struct{}) *Vocabulary {
	terms := make([]string, 0, len(tokens))
	for t := range tokens {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, t := range terms {
		index[t] = i
	}
	return &Vocabulary{index: index, terms: terms}
}

// Lookup returns the index of token and whether it is in the vocabulary.
func (v *Vocabulary) Lookup(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Term returns the token stored at index i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Len is the number of distinct tokens.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Terms returns a copy of the tokens in index order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}
