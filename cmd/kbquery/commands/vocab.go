package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/knowledge-engine/academic-assistant/internal/search"
)

func newVocabCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Show index statistics and the most distinctive terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr())
			idx, err := loadIndex(cmd.Context(), corpusPath, logger)
			if err != nil {
				return err
			}
			return runVocab(cmd.OutOrStdout(), idx, top)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "number of highest-IDF terms to list")
	return cmd
}

type termWeight struct {
	term string
	idf  float64
}

func runVocab(w io.Writer, idx *search.Index, top int) error {
	if top < 0 {
		return fmt.Errorf("--top must be non-negative, got %d", top)
	}

	fmt.Fprintf(w, "Documents:  %d\n", idx.Len())
	fmt.Fprintf(w, "Vocabulary: %d\n", idx.VocabularySize())
	if !idx.BuiltAt().IsZero() {
		fmt.Fprintf(w, "Built at:   %s\n", idx.BuiltAt().Format("2006-01-02 15:04:05"))
	}

	terms := idx.Vocabulary().Terms()
	weights := make([]termWeight, 0, len(terms))
	for _, t := range terms {
		v, _ := idx.IDF(t)
		weights = append(weights, termWeight{term: t, idf: v})
	}
	// highest IDF first, alphabetical within ties
	sort.SliceStable(weights, func(i, j int) bool {
		return weights[i].idf > weights[j].idf
	})
	if top < len(weights) {
		weights = weights[:top]
	}

	if len(weights) > 0 {
		fmt.Fprintln(w)
	}
	for _, tw := range weights {
		fmt.Fprintf(w, "%-20s %.4f\n", tw.term, tw.idf)
	}
	return nil
}
