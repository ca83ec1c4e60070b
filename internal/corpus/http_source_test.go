package corpus_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/academic-assistant/internal/corpus"
)

func TestHTTPSourceJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Academic-Assistant/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(jsonCorpus))
	}))
	defer ts.Close()

	docs, err := corpus.NewHTTPSource(ts.URL+"/kb", 5*time.Second).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fee-002", docs[0].ID)
}

func TestHTTPSourceYAMLByExtension(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte(yamlCorpus))
	}))
	defer ts.Close()

	docs, err := corpus.NewHTTPSource(ts.URL+"/kb.yaml?v=2", 5*time.Second).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "conv-001", docs[0].ID)
}

func TestHTTPSourceHTMLPage(t *testing.T) {
	page := `<html><head><title>Exam Rules</title><style>p{}</style></head>
<body><h1>Examinations</h1><script>var x = 1;</script><p>Midterms   start in March.</p></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer ts.Close()

	docs, err := corpus.NewHTTPSource(ts.URL, 5*time.Second).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, ts.URL, docs[0].ID)
	assert.Equal(t, "Exam Rules", docs[0].SourceDocument)
	assert.Equal(t, "Examinations Midterms start in March.", docs[0].Content)
}

func TestHTTPSourceBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := corpus.NewHTTPSource(ts.URL, 5*time.Second).Load(context.Background())

	assert.ErrorContains(t, err, "404")
}

func TestOpenURL(t *testing.T) {
	src, err := corpus.Open("https://example.org/kb.json", nil)

	require.NoError(t, err)
	assert.IsType(t, &corpus.HTTPSource{}, src)
	assert.Equal(t, "https://example.org/kb.json", src.Name())
}
