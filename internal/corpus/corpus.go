// Package corpus is the local evidence store: a persistent bleve index of document
// chunks plus a manifest of the files that were ingested into it.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	indexDirName     = "index.bleve"
	manifestFileName = "manifest.json"
)

// ErrIndexNotFound means the corpus directory has not been built by ingest.
var ErrIndexNotFound = errors.New("corpus index not found")

// Document is one retrieved chunk with its metadata (source, page).
type Document struct {
	Content  string
	Metadata map[string]any
}

// chunk is the indexed form of a Document.
type chunk struct {
	Content  string `json:"content"`
	Source   string `json:"source"`
	Page     string `json:"page"`
	FileHash string `json:"file_hash"`
}

// ManifestFile records one ingested file.
type ManifestFile struct {
	Name    string `json:"name"`
	Hash    string `json:"hash"`
	Chunks  int    `json:"chunks"`
	AddedAt int64  `json:"added_at"`
}

type Manifest struct {
	Files []ManifestFile `json:"files"`
}

func (m Manifest) Has(hash string) bool {
	for _, f := range m.Files {
		if f.Hash == hash {
			return true
		}
	}
	return false
}

func indexPath(dir string) string { return filepath.Join(dir, indexDirName) }

// LoadManifest reads dir/manifest.json. A missing manifest yields an empty one.
func LoadManifest(dir string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

func saveManifest(dir string, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(dir, manifestFileName+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, manifestFileName))
}
