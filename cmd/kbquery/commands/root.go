// Package commands implements the kbquery CLI for inspecting a knowledge
// base offline.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/knowledge-engine/academic-assistant/internal/corpus"
	"github.com/knowledge-engine/academic-assistant/internal/search"
)

var (
	// Global flags
	corpusPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "kbquery",
	Short: "Query a knowledge base without running the API server",
	Long: `kbquery - build the TF-IDF index for a knowledge base and query it.

Without --corpus the built-in FUUAST knowledge base is used.

Examples:
  kbquery search "admission fees"
  kbquery search -k 5 --threshold 0 "exam schedule"
  kbquery --corpus ./kb.yaml vocab --top 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "knowledge base file or directory (default: built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newVocabCmd())
}

func newLogger(w io.Writer) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("service", "kbquery")
}

// loadIndex opens the corpus at path and builds an index over it.
func loadIndex(ctx context.Context, path string, logger *logrus.Entry) (*search.Index, error) {
	source, err := corpus.Open(path, logger)
	if err != nil {
		return nil, err
	}
	docs, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source.Name(), err)
	}
	for _, err := range corpus.Validate(docs) {
		logger.Warn(err)
	}

	idx := search.Build(docs)
	if err := idx.Warning(); err != nil {
		logger.Warn(err)
	}
	logger.WithFields(logrus.Fields{
		"source":     source.Name(),
		"documents":  idx.Len(),
		"vocabulary": idx.VocabularySize(),
	}).Debug("Index built")
	return idx, nil
}
