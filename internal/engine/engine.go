package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/academic-assistant/internal/config"
	"github.com/knowledge-engine/academic-assistant/internal/corpus"
	"github.com/knowledge-engine/academic-assistant/internal/provider"
	"github.com/knowledge-engine/academic-assistant/internal/search"
)

// Assistant orchestrates corpus loading, retrieval and answer generation
type Assistant struct {
	Config      *config.Config
	Logger      *logrus.Entry
	Source      corpus.Source
	VectorStore *search.VectorStore
	LLM         provider.LLMProvider

	// reloadMu serializes rebuilds; queries never take it
	reloadMu sync.Mutex

	mu      sync.RWMutex
	stats   EngineStats
	history *queryLog
}

// EngineStats is a snapshot of the assistant's counters
type EngineStats struct {
	Documents      int       `json:"documents"`
	VocabularySize int       `json:"vocabulary_size"`
	QueriesServed  int64     `json:"queries_served"`
	Reloads        int64     `json:"reloads"`
	LastBuild      time.Time `json:"last_build"`
	LastError      string    `json:"last_error,omitempty"`
	CorpusSource   string    `json:"corpus_source"`
	StartTime      time.Time `json:"start_time"`
}

// ReloadResult describes a completed rebuild
type ReloadResult struct {
	Documents      int       `json:"documents"`
	VocabularySize int       `json:"vocabulary_size"`
	BuiltAt        time.Time `json:"built_at"`
	Warnings       []string  `json:"warnings,omitempty"`
}

// QueryResult is the retrieval outcome for one query
type QueryResult struct {
	Query       string                  `json:"-"`
	Context     []search.ScoredDocument `json:"context"`
	QueryTokens int                     `json:"query_tokens"`
	Timestamp   time.Time               `json:"timestamp"`
}

// Answer is a generated reply grounded in retrieved records
type Answer struct {
	Text    string                  `json:"answer"`
	Sources []string                `json:"sources"`
	Context []search.ScoredDocument `json:"-"`
}

func NewAssistant(cfg *config.Config, logger *logrus.Entry, source corpus.Source, store *search.VectorStore, llm provider.LLMProvider) *Assistant {
	if logger == nil {
		logger = logrus.WithField("component", "engine")
	}
	if store == nil {
		store = search.NewVectorStore(
			search.WithThreshold(cfg.Retrieval.Threshold),
			search.WithDefaultTopK(cfg.Retrieval.TopK),
		)
	}
	if llm == nil {
		llm = provider.Disabled{}
	}
	a := &Assistant{
		Config:      cfg,
		Logger:      logger,
		Source:      source,
		VectorStore: store,
		LLM:         llm,
		history:     newQueryLog(cfg.Retrieval.QueryLogSize),
	}
	a.stats.StartTime = time.Now()
	if source != nil {
		a.stats.CorpusSource = source.Name()
	}
	return a
}

// Reload loads the corpus and swaps in a freshly built index. On failure
// the previous index keeps serving.
func (a *Assistant) Reload(ctx context.Context) (*ReloadResult, error) {
	if a.Source == nil {
		return nil, errors.New("no corpus source configured")
	}

	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	docs, err := a.Source.Load(ctx)
	if err != nil {
		a.recordError(err)
		return nil, fmt.Errorf("failed to load corpus from %s: %w", a.Source.Name(), err)
	}

	result := &ReloadResult{}
	for _, problem := range corpus.Validate(docs) {
		a.Logger.WithError(problem).Warn("Corpus record problem")
		result.Warnings = append(result.Warnings, problem.Error())
	}

	idx := search.Build(docs)
	if w := idx.Warning(); w != nil {
		a.Logger.WithError(w).Warn("Index built from an empty corpus; searches will return no results")
		result.Warnings = append(result.Warnings, w.Error())
	}
	a.VectorStore.Swap(idx)

	result.Documents = idx.Len()
	result.VocabularySize = idx.VocabularySize()
	result.BuiltAt = idx.BuiltAt()

	a.mu.Lock()
	a.stats.Documents = result.Documents
	a.stats.VocabularySize = result.VocabularySize
	a.stats.LastBuild = result.BuiltAt
	a.stats.LastError = ""
	a.stats.Reloads++
	a.mu.Unlock()

	a.Logger.WithFields(logrus.Fields{
		"documents":  result.Documents,
		"vocabulary": result.VocabularySize,
		"source":     a.Source.Name(),
	}).Info("Search index built")
	return result, nil
}

// DefaultTopK is the result count callers use when a request names none
func (a *Assistant) DefaultTopK() int {
	return a.VectorStore.DefaultTopK()
}

// Query retrieves up to topK supporting records. A topK of zero yields no
// records; negative values are rejected with *search.InvalidTopKError.
func (a *Assistant) Query(query string, topK int) (*QueryResult, error) {
	if topK < 0 {
		return nil, &search.InvalidTopKError{TopK: topK}
	}

	hits := []search.ScoredDocument{}
	if topK > 0 {
		hits = a.VectorStore.Search(query, topK)
	}
	result := &QueryResult{
		Query:       query,
		Context:     hits,
		QueryTokens: len(strings.Fields(query)),
		Timestamp:   time.Now(),
	}

	entry := LogEntry{
		Timestamp:         result.Timestamp,
		Query:             query,
		CategoriesMatched: matchedCategories(hits),
	}
	if len(hits) > 0 {
		entry.ConfidenceScore = hits[0].ConfidenceScore
	}

	a.mu.Lock()
	a.stats.QueriesServed++
	a.history.add(entry)
	a.mu.Unlock()

	a.Logger.WithFields(logrus.Fields{
		"matches":    len(hits),
		"confidence": entry.ConfidenceScore,
	}).Debug("Query served")
	return result, nil
}

// GenerateAnswer performs the full RAG flow: Search -> Build Prompt -> LLM Generation
func (a *Assistant) GenerateAnswer(ctx context.Context, query string) (*Answer, error) {
	// 1. Retrieve Context
	res, err := a.Query(query, a.DefaultTopK())
	if err != nil {
		return nil, err
	}
	if len(res.Context) == 0 {
		return &Answer{Text: provider.NoAnswerMessage, Sources: []string{}}, nil
	}

	// 2. Build Prompt
	prompt := provider.BuildPrompt(query, res.Context)

	// 3. Call LLM
	text, err := a.LLM.Generate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, provider.ErrGenerationDisabled) {
			a.recordError(err)
		}
		return nil, fmt.Errorf("%s generation failed: %w", a.LLM.Name(), err)
	}

	if strings.TrimSpace(text) == "" {
		a.Logger.WithField("provider", a.LLM.Name()).Warn("Model returned an empty reply")
		text = provider.InternalErrorMessage
	}

	sources := make([]string, len(res.Context))
	for i, d := range res.Context {
		sources[i] = d.Citation()
	}
	return &Answer{Text: text, Sources: sources, Context: res.Context}, nil
}

// Stats returns a snapshot of the counters
func (a *Assistant) Stats() EngineStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// RecentQueries returns up to n audit entries, newest first
func (a *Assistant) RecentQueries(n int) []LogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.history.recent(n)
}

func (a *Assistant) recordError(err error) {
	a.mu.Lock()
	a.stats.LastError = err.Error()
	a.mu.Unlock()
}

func matchedCategories(hits []search.ScoredDocument) []string {
	categories := []string{}
	seen := make(map[string]bool)
	for _, h := range hits {
		if h.Category == "" || seen[h.Category] {
			continue
		}
		seen[h.Category] = true
		categories = append(categories, h.Category)
	}
	return categories
}
