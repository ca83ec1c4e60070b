package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/academic-assistant/internal/search"
)

func testIndex() *search.Index {
	return search.Build([]search.Document{
		{ID: "a", Category: "Fee Structure", Content: "admission fee is 5000 rupees", SourceDocument: "Fee Schedule", PageNumber: 5},
		{ID: "b", Category: "General", Content: "library hours are nine to five", SourceDocument: "Campus Guide", PageNumber: 2},
	})
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger.WithField("test", "kbquery")
}

func TestRunSearchText(t *testing.T) {
	var out bytes.Buffer

	err := runSearch(&out, testIndex(), "admission fees", searchOptions{topK: 3, threshold: 0.1})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "1. [0.5000] a (Fee Structure)")
	assert.Contains(t, out.String(), "Source: Fee Schedule (Page 5)")
	assert.NotContains(t, out.String(), "Campus Guide")
}

func TestRunSearchJSON(t *testing.T) {
	var out bytes.Buffer

	err := runSearch(&out, testIndex(), "library", searchOptions{topK: 3, threshold: 0.1, json: true})

	require.NoError(t, err)
	var results []search.ScoredDocument
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestRunSearchNoMatches(t *testing.T) {
	var out bytes.Buffer

	err := runSearch(&out, testIndex(), "hostel parking", searchOptions{topK: 3, threshold: 0.1})

	require.NoError(t, err)
	assert.Equal(t, "No matching entries.\n", out.String())
}

func TestRunSearchNegativeTopK(t *testing.T) {
	err := runSearch(&bytes.Buffer{}, testIndex(), "fee", searchOptions{topK: -1})

	var topKErr *search.InvalidTopKError
	assert.ErrorAs(t, err, &topKErr)
}

func TestRunVocab(t *testing.T) {
	var out bytes.Buffer

	err := runVocab(&out, testIndex(), 2)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, "Documents:  2", lines[0])
	assert.Equal(t, "Vocabulary: 6", lines[1])
	// every term appears in one document, so ties fall back to sorted order
	assert.True(t, strings.HasPrefix(lines[len(lines)-2], "5000"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "admission"))

	assert.Error(t, runVocab(&bytes.Buffer{}, testIndex(), -1))
}

func TestLoadIndexFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	content := "- id: x1\n  category: Exams\n  content: midterm exams start in march\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	idx, err := loadIndex(context.Background(), path, quietLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, "x1", idx.Document(0).ID)
}

func TestLoadIndexBuiltin(t *testing.T) {
	idx, err := loadIndex(context.Background(), "", quietLogger())

	require.NoError(t, err)
	assert.Greater(t, idx.Len(), 0)
}

func TestLoadIndexMissingFile(t *testing.T) {
	_, err := loadIndex(context.Background(), filepath.Join(t.TempDir(), "missing.json"), quietLogger())
	assert.Error(t, err)
}
