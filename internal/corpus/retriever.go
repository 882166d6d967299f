package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"
	"go.uber.org/zap"
)

// Retriever serves top-k chunk lookups. Index handles are opened once per
// directory and shared; bleve indexes are safe for concurrent reads.
type Retriever struct {
	mu      sync.Mutex
	indexes map[string]bleve.Index
	logger  *zap.Logger
}

func NewRetriever(logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{indexes: map[string]bleve.Index{}, logger: logger.Named("corpus")}
}

// Open returns the cached index for dir, opening it on first use.
func (r *Retriever) Open(dir string) (bleve.Index, error) {
	key, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.indexes[key]; ok {
		return idx, nil
	}
	if _, err := os.Stat(indexPath(key)); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s; run ingest first", ErrIndexNotFound, dir)
	}
	idx, err := bleve.Open(indexPath(key))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) || errors.Is(err, bleve.ErrorIndexMetaMissing) {
		return nil, fmt.Errorf("%w in %s; run ingest first", ErrIndexNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dir, err)
	}
	r.indexes[key] = idx
	r.logger.Info("index opened", zap.String("dir", key))
	return idx, nil
}

// Retrieve returns up to k chunks from the index in dir ranked for query.
func (r *Retriever) Retrieve(ctx context.Context, query, dir string, k int) ([]Document, error) {
	idx, err := r.Open(dir)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}
	q := bleve.NewMatchQuery(query)
	q.SetField("content")
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	req.Fields = []string{"content", "source", "page"}
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	docs := make([]Document, 0, len(res.Hits))
	for _, hit := range res.Hits {
		content, _ := hit.Fields["content"].(string)
		if strings.TrimSpace(content) == "" {
			continue
		}
		meta := map[string]any{}
		if src, ok := hit.Fields["source"].(string); ok && src != "" {
			meta["source"] = src
		}
		if page, ok := hit.Fields["page"].(string); ok && page != "" {
			meta["page"] = page
		}
		docs = append(docs, Document{Content: content, Metadata: meta})
	}
	return docs, nil
}

// Forget drops the cached handle for dir so a rebuilt index is picked up.
func (r *Retriever) Forget(dir string) error {
	key, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.indexes[key]
	if !ok {
		return nil
	}
	delete(r.indexes, key)
	return idx.Close()
}

// Close releases every open index.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for key, idx := range r.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.indexes, key)
	}
	return errors.Join(errs...)
}
