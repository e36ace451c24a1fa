// Package artifacts pairs the vector index file with its chunk manifest.
// The two files describe one build: vector ordinal i in the index belongs
// to manifest entry i. Both are replaced by atomic renames, so a store
// opened mid-rebuild sees either the old pair or the new one, never a torn
// mix of file contents.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/doclens/doclens-cli/internal/adapters/driven/storage/manifest"
	"github.com/doclens/doclens-cli/internal/adapters/driven/vectorindex"
	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.ArtifactStore = (*FileStore)(nil)

// FileStore keeps both artifacts as files on local disk.
type FileStore struct {
	indexPath    string
	manifestPath string
}

// NewFileStore creates a store over the given artifact paths.
func NewFileStore(indexPath, manifestPath string) *FileStore {
	return &FileStore{indexPath: indexPath, manifestPath: manifestPath}
}

// IndexPath returns the index artifact location.
func (s *FileStore) IndexPath() string { return s.indexPath }

// ManifestPath returns the manifest artifact location.
func (s *FileStore) ManifestPath() string { return s.manifestPath }

// Load opens the current index and manifest pair. The renames during a
// rebuild are sequential, so a load racing a rebuild can briefly observe a
// new index with the old manifest; the size check below turns that into
// domain.ErrDataInconsistency and the caller retries on the next change
// notification.
func (s *FileStore) Load() (driven.VectorIndex, driven.ChunkLedger, error) {
	idx, err := vectorindex.Load(s.indexPath)
	if err != nil {
		return nil, nil, err
	}

	man, err := manifest.Load(s.manifestPath)
	if err != nil {
		return nil, nil, err
	}

	if idx.NTotal() != man.Len() {
		return nil, nil, fmt.Errorf("index holds %d vectors but manifest lists %d chunks: %w",
			idx.NTotal(), man.Len(), domain.ErrDataInconsistency)
	}
	if idx.Dimensions() != man.Dimensions {
		return nil, nil, fmt.Errorf("index dimension %d but manifest dimension %d: %w",
			idx.Dimensions(), man.Dimensions, domain.ErrDataInconsistency)
	}
	return idx, man, nil
}

// Write replaces both artifacts with a new build.
func (s *FileStore) Write(index driven.VectorIndex, buildID, model string, chunks []domain.Chunk) (driven.ChunkLedger, error) {
	if index.NTotal() != len(chunks) {
		return nil, fmt.Errorf("index holds %d vectors for %d chunks: %w",
			index.NTotal(), len(chunks), domain.ErrDataInconsistency)
	}

	for _, path := range []string{s.indexPath, s.manifestPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create artifact directory: %w", err)
		}
	}

	if err := index.Save(s.indexPath); err != nil {
		return nil, err
	}

	man := manifest.New(buildID, model, index.Dimensions(), chunks)
	if err := man.Save(s.manifestPath); err != nil {
		return nil, err
	}
	return man, nil
}
