package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/k3a/html2text"
	"go.uber.org/zap"

	"github.com/mohammad-safakhou/oratriage/internal/helpers"
)

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
	// pageBreak separates pages in text exported from PDF tools.
	pageBreak = "\f"
)

type IngestOptions struct {
	ChunkSize int
	Overlap   int
	// Rebuild discards the existing index and manifest first.
	Rebuild bool
}

type IngestReport struct {
	Added   []ManifestFile
	Skipped []string
}

// Ingest chunks and indexes files into the corpus in dir. Files whose content hash
// is already in the manifest are skipped.
func (r *Retriever) Ingest(ctx context.Context, dir string, files []string, opts IngestOptions) (IngestReport, error) {
	var report IngestReport
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Overlap < 0 || opts.Overlap >= opts.ChunkSize {
		opts.Overlap = DefaultChunkOverlap
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, err
	}
	if opts.Rebuild {
		if err := r.Forget(dir); err != nil {
			return report, err
		}
		if err := os.RemoveAll(indexPath(dir)); err != nil {
			return report, err
		}
		if err := os.Remove(filepath.Join(dir, manifestFileName)); err != nil && !os.IsNotExist(err) {
			return report, err
		}
	}

	manifest, err := LoadManifest(dir)
	if err != nil {
		return report, err
	}
	idx, err := r.openOrCreate(dir)
	if err != nil {
		return report, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		text, err := readDocument(path)
		if err != nil {
			return report, fmt.Errorf("read %s: %w", path, err)
		}
		hash := helpers.ContentHash(text)
		name := filepath.Base(path)
		if manifest.Has(hash) {
			r.logger.Info("already indexed", zap.String("file", name))
			report.Skipped = append(report.Skipped, name)
			continue
		}

		batch := idx.NewBatch()
		n := 0
		pages := strings.Split(text, pageBreak)
		for p, page := range pages {
			pageLabel := ""
			if len(pages) > 1 {
				pageLabel = strconv.Itoa(p + 1)
			}
			for _, c := range makeChunks(page, opts.ChunkSize, opts.Overlap) {
				if strings.TrimSpace(c) == "" {
					continue
				}
				id := fmt.Sprintf("%s-%d", hash[:16], n)
				if err := batch.Index(id, chunk{Content: c, Source: name, Page: pageLabel, FileHash: hash}); err != nil {
					return report, err
				}
				n++
			}
		}
		if err := idx.Batch(batch); err != nil {
			return report, fmt.Errorf("index %s: %w", name, err)
		}
		entry := ManifestFile{Name: name, Hash: hash, Chunks: n, AddedAt: time.Now().Unix()}
		manifest.Files = append(manifest.Files, entry)
		report.Added = append(report.Added, entry)
		r.logger.Info("indexed", zap.String("file", name), zap.Int("chunks", n))
	}

	if err := saveManifest(dir, manifest); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Retriever) openOrCreate(dir string) (bleve.Index, error) {
	if _, err := os.Stat(indexPath(dir)); err == nil {
		return r.Open(dir)
	}
	idx, err := bleve.New(indexPath(dir), bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := idx.Close(); err != nil {
		return nil, err
	}
	return r.Open(dir)
}

// readDocument returns the plain text of a corpus file. HTML is converted to text;
// anything else is read as UTF-8 text.
func readDocument(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return html2text.HTML2Text(string(b)), nil
	default:
		return string(b), nil
	}
}

// makeChunks splits text into windows of approx runes overlapping by overlap.
func makeChunks(text string, approx, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= approx {
		return []string{string(runes)}
	}
	var chunks []string
	for start := 0; start < len(runes); {
		end := start + approx
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks
}
