package corpus

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/knowledge-engine/academic-assistant/internal/search"
)

const (
	userAgent    = "Academic-Assistant/1.0"
	maxBodyBytes = 16 << 20
)

// HTTPSource fetches a knowledge base over HTTP. JSON and YAML bodies are
// decoded as record lists; an HTML page becomes a single record holding the
// page's visible text.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
}

func (hs *HTTPSource) Name() string {
	return hs.url
}

// Load downloads and decodes the remote corpus
func (hs *HTTPSource) Load(ctx context.Context) ([]search.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hs.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxBodyBytes)
	ext := extensionFor(resp.Header.Get("Content-Type"), hs.url)
	if ext == ".html" {
		doc, err := pageDocument(body, hs.url)
		if err != nil {
			return nil, fmt.Errorf("parsing error: %w", err)
		}
		return []search.Document{doc}, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	docs, err := Decode(ext, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", hs.url, err)
	}
	return docs, nil
}

// extensionFor maps a response to the file extension Decode understands.
// The Content-Type wins; the URL path is the fallback.
func extensionFor(contentType, rawURL string) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return ".json"
	case strings.Contains(mediaType, "yaml"):
		return ".yaml"
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return ".html"
	}
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	ext := strings.ToLower(path.Ext(rawURL))
	if ext == ".htm" {
		return ".html"
	}
	return ext
}

// pageDocument extracts the title and visible text of an HTML page
func pageDocument(body io.Reader, url string) (search.Document, error) {
	tokenizer := html.NewTokenizer(body)
	var text strings.Builder
	var title string
	inScript, inStyle, inTitle := false, false, false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() != io.EOF {
				return search.Document{}, tokenizer.Err()
			}
			if title == "" {
				title = url
			}
			return search.Document{
				ID:             url,
				Category:       "Web Page",
				Content:        strings.Join(strings.Fields(text.String()), " "),
				SourceDocument: title,
			}, nil

		case html.StartTagToken:
			switch tokenizer.Token().Data {
			case "script":
				inScript = true
			case "style":
				inStyle = true
			case "title":
				inTitle = true
			}

		case html.EndTagToken:
			switch tokenizer.Token().Data {
			case "script":
				inScript = false
			case "style":
				inStyle = false
			case "title":
				inTitle = false
			}

		case html.TextToken:
			data := strings.TrimSpace(tokenizer.Token().Data)
			if inTitle {
				title = data
				continue
			}
			if !inScript && !inStyle && data != "" {
				text.WriteString(data)
				text.WriteByte(' ')
			}
		}
	}
}
