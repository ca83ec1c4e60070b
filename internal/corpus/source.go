// Package corpus loads knowledge base records from files and hands them to
// the search index as an ordered slice.
package corpus

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/knowledge-engine/academic-assistant/internal/search"
)

const fetchTimeout = 30 * time.Second

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("corpus: unsupported file format")

//go:embed knowledge_base.json
var defaultKnowledgeBase []byte

// Source defines where corpus records come from
type Source interface {
	Load(ctx context.Context) ([]search.Document, error)
	Name() string
}

// FileSource reads a single JSON or YAML knowledge base file
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (fs *FileSource) Name() string {
	return fs.path
}

// Load reads and decodes the file
func (fs *FileSource) Load(ctx context.Context) ([]search.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	docs, err := Decode(filepath.Ext(fs.path), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fs.path, err)
	}
	return docs, nil
}

// DirSource reads every knowledge base file in a directory, in file name order
type DirSource struct {
	dir    string
	logger *logrus.Entry
}

func NewDirSource(dir string, logger *logrus.Entry) *DirSource {
	if logger == nil {
		logger = logrus.WithField("component", "corpus")
	}
	return &DirSource{dir: dir, logger: logger}
}

func (ds *DirSource) Name() string {
	return ds.dir
}

// Load concatenates all readable files. Files that fail to decode are
// skipped and logged, but a directory where every file fails is an error.
func (ds *DirSource) Load(ctx context.Context) ([]search.Document, error) {
	entries, err := os.ReadDir(ds.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isSupported(filepath.Ext(e.Name())) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var documents []search.Document
	var lastErr error
	loaded := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := NewFileSource(filepath.Join(ds.dir, name)).Load(ctx)
		if err != nil {
			ds.logger.WithError(err).WithField("file", name).Warn("Skipping corpus file")
			lastErr = err
			continue
		}
		loaded++
		documents = append(documents, docs...)
	}
	if len(names) > 0 && loaded == 0 {
		return nil, fmt.Errorf("no readable corpus files in %s: %w", ds.dir, lastErr)
	}
	ds.logger.Debugf("Loaded %d documents from %d of %d files", len(documents), loaded, len(names))
	return documents, nil
}

// DefaultSource serves the knowledge base compiled into the binary
type DefaultSource struct{}

func (DefaultSource) Name() string {
	return "builtin"
}

func (DefaultSource) Load(ctx context.Context) ([]search.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(".json", defaultKnowledgeBase)
}

// Open picks a source for path: the built-in corpus when path is empty, an
// HTTPSource for http(s) URLs, a DirSource for directories and a FileSource
// otherwise.
func Open(path string, logger *logrus.Entry) (Source, error) {
	if path == "" {
		return DefaultSource{}, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return NewHTTPSource(path, fetchTimeout), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	if info.IsDir() {
		return NewDirSource(path, logger), nil
	}
	if !isSupported(filepath.Ext(path)) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return NewFileSource(path), nil
}

// Decode parses a list of records; ext selects JSON or YAML.
func Decode(ext string, data []byte) ([]search.Document, error) {
	var docs []search.Document
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &docs); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if docs == nil {
		docs = []search.Document{}
	}
	return docs, nil
}

func isSupported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Validate reports records with a missing id or an id already used earlier
// in the corpus. The corpus itself is left untouched.
func Validate(docs []search.Document) []error {
	var problems []error
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			problems = append(problems, fmt.Errorf("record %d has no id", i))
			continue
		}
		if first, ok := seen[d.ID]; ok {
			problems = append(problems, fmt.Errorf("record %d reuses id %q from record %d", i, d.ID, first))
			continue
		}
		seen[d.ID] = i
	}
	return problems
}
