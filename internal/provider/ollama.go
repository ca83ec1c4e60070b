package provider

import (
	"context"
	"net/http"
)

const defaultOllamaURL = "http://localhost:11434/api/generate"

// OllamaProvider calls a local Ollama server's generate endpoint
type OllamaProvider struct {
	BaseURL  string
	Model    string
	Sampling Sampling
	Client   *http.Client
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	return &OllamaProvider{
		BaseURL:  baseURL,
		Model:    model,
		Sampling: DefaultSampling,
		Client:   http.DefaultClient,
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Generate asks for a single non-streamed completion of prompt.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{
		Model:  p.Model,
		Prompt: prompt,
		Options: ollamaOptions{
			Temperature: p.Sampling.Temperature,
			TopK:        p.Sampling.TopK,
			TopP:        p.Sampling.TopP,
		},
	}

	var out ollamaResponse
	if err := postJSON(ctx, p.Client, p.Name(), p.BaseURL, nil, req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}
