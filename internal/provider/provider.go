package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/knowledge-engine/academic-assistant/internal/config"
	"github.com/knowledge-engine/academic-assistant/internal/search"
)

// NoAnswerMessage is the reply when the records hold nothing relevant.
const NoAnswerMessage = "I'm sorry, this information is not available in the official university records I have access to."

// InternalErrorMessage replaces an empty model reply.
const InternalErrorMessage = "I apologize, an internal error occurred while processing the institutional records."

// Sampling holds the decoding settings sent with every generation request.
type Sampling struct {
	Temperature float64
	TopK        int
	TopP        float64
}

// DefaultSampling keeps decoding nearly greedy so answers stay close to the
// retrieved records.
var DefaultSampling = Sampling{Temperature: 0.1, TopK: 1, TopP: 0.1}

// ErrGenerationDisabled is returned by the "none" provider.
var ErrGenerationDisabled = errors.New("answer generation is disabled")

// LLMProvider defines the interface for AI model integration
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// New builds the provider selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (LLMProvider, error) {
	client := &http.Client{Timeout: defaultTimeout(cfg.Timeout)}
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		p := NewOllamaProvider(cfg.BaseURL, cfg.Model)
		p.Client = client
		return p, nil
	case "openai":
		p := NewOpenAIProvider(cfg.BaseURL, cfg.Model, cfg.APIKey)
		p.Client = client
		return p, nil
	case "gemini":
		return NewGeminiProvider(ctx, GeminiOptions{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case "none":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// Disabled is a provider that refuses to generate.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrGenerationDisabled
}

// BuildPrompt grounds the question in the retrieved records and asks for
// citations in "(Source: <Document>, Page <n>)" form.
func BuildPrompt(query string, docs []search.ScoredDocument) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = fmt.Sprintf("[Source: %s, Page %d] Content: %s", d.SourceDocument, d.PageNumber, d.Content)
	}
	contextText := strings.Join(blocks, "\n\n")
	if contextText == "" {
		contextText = "No specific context available."
	}

	return "You are an academic assistant answering questions about the university.\n" +
		"Answer strictly using the provided context. Do not invent information.\n" +
		"Tone: clear, formal, neutral.\n\n" +
		"CITATION REQUIREMENT:\n" +
		"Every factual answer MUST end with a citation in this format: (Source: <Document Name>, Page <Page Number>).\n" +
		"If multiple entries are used, list all sources clearly.\n\n" +
		"CONTEXT PROVIDED:\n" + contextText + "\n\n" +
		"USER QUERY:\n" + query + "\n\n" +
		"If the query cannot be answered by the context, respond ONLY with:\n" +
		NoAnswerMessage + "\n"
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}
