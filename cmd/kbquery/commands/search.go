package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/knowledge-engine/academic-assistant/internal/search"
)

type searchOptions struct {
	topK      int
	threshold float64
	json      bool
}

func newSearchCmd() *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank knowledge base entries against a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr())
			idx, err := loadIndex(cmd.Context(), corpusPath, logger)
			if err != nil {
				return err
			}
			return runSearch(cmd.OutOrStdout(), idx, args[0], opts)
		},
	}
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", search.DefaultTopK, "maximum number of results")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", search.DefaultThreshold, "minimum cosine similarity")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	return cmd
}

func runSearch(w io.Writer, idx *search.Index, query string, opts searchOptions) error {
	results, err := idx.SearchWithThreshold(query, opts.topK, opts.threshold)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No matching entries.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. [%.4f] %s (%s)\n", i+1, r.ConfidenceScore, r.ID, r.Category)
		fmt.Fprintf(w, "   %s\n", r.Content)
		fmt.Fprintf(w, "   Source: %s\n", r.Citation())
	}
	return nil
}
