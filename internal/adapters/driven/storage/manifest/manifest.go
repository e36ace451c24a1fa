// Package manifest persists the chunk bookkeeping that accompanies a vector
// index artifact. The manifest lists every chunk in ordinal order; entry i
// describes the vector at ordinal position i. Index and manifest are
// written together by the builder and replaced together by an atomic
// rename, keeping the ordinal binding intact.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

// Manifest is the persisted chunk ledger for one index build.
type Manifest struct {
	// BuildID identifies the build run that produced the artifacts.
	BuildID string `json:"build_id"`

	// Model is the embedding model the vectors were produced with.
	Model string `json:"model"`

	// Dimensions is the embedding dimension.
	Dimensions int `json:"dimensions"`

	// CreatedAt is the build completion time.
	CreatedAt time.Time `json:"created_at"`

	// Chunks is ordered by ordinal position.
	Chunks []domain.Chunk `json:"chunks"`

	byDocument map[int64][]int
}

// New creates a manifest over chunks already ordered by ordinal.
func New(buildID, model string, dimensions int, chunks []domain.Chunk) *Manifest {
	m := &Manifest{
		BuildID:    buildID,
		Model:      model,
		Dimensions: dimensions,
		CreatedAt:  time.Now().UTC(),
		Chunks:     chunks,
	}
	m.reindex()
	return m
}

// Len returns the number of chunks.
func (m *Manifest) Len() int {
	return len(m.Chunks)
}

// At returns the chunk at the given ordinal position. The second return is
// false when the position has no chunk record, which signals an index/corpus
// mismatch the caller should skip over.
func (m *Manifest) At(ordinal int) (domain.Chunk, bool) {
	if ordinal < 0 || ordinal >= len(m.Chunks) {
		return domain.Chunk{}, false
	}
	return m.Chunks[ordinal], true
}

// ByDocument returns the chunks of one source document in chunk order.
func (m *Manifest) ByDocument(documentID int64) []domain.Chunk {
	ordinals := m.byDocument[documentID]
	if len(ordinals) == 0 {
		return nil
	}
	chunks := make([]domain.Chunk, len(ordinals))
	for i, ord := range ordinals {
		chunks[i] = m.Chunks[ord]
	}
	return chunks
}

// Categories counts chunks per category.
func (m *Manifest) Categories() map[string]int {
	counts := make(map[string]int)
	for _, ch := range m.Chunks {
		counts[ch.Category]++
	}
	return counts
}

// Save writes the manifest to path atomically.
func (m *Manifest) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Load reads a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, domain.ErrIndexUnavailable, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	m.reindex()
	return &m, nil
}

func (m *Manifest) reindex() {
	m.byDocument = make(map[int64][]int, len(m.Chunks))
	for i := range m.Chunks {
		m.Chunks[i].Ordinal = i
		docID := m.Chunks[i].DocumentID
		m.byDocument[docID] = append(m.byDocument[docID], i)
	}
}
