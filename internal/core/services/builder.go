package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/doclens/doclens-cli/internal/chunker"
	"github.com/doclens/doclens-cli/internal/core/domain"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
	"github.com/doclens/doclens-cli/internal/core/ports/driving"
	"github.com/doclens/doclens-cli/internal/logger"
)

// Ensure Builder implements the interface.
var _ driving.IndexBuilder = (*Builder)(nil)

// Default build parameters.
const (
	DefaultMinWordCount = 50
	DefaultBatchSize    = 32
)

// BuilderConfig tunes one index build.
type BuilderConfig struct {
	// MinWordCount filters out short corpus documents.
	MinWordCount int

	// BatchSize is the number of chunks embedded per backend call.
	BatchSize int

	// IndexKind names the index the factory produces, for reporting.
	IndexKind string
}

// Builder turns the corpus into a persisted index: list eligible documents,
// chunk them, embed the chunks in batches, feed an index and atomically
// replace the artifacts on disk.
type Builder struct {
	corpus   driven.CorpusStore
	embedder driven.EmbeddingService
	store    driven.ArtifactStore
	factory  driven.IndexFactory
	splitter *chunker.Chunker
	cfg      BuilderConfig
}

// NewBuilder creates a builder. Zero config fields fall back to defaults.
func NewBuilder(
	corpus driven.CorpusStore,
	embedder driven.EmbeddingService,
	store driven.ArtifactStore,
	factory driven.IndexFactory,
	splitter *chunker.Chunker,
	cfg BuilderConfig,
) *Builder {
	if cfg.MinWordCount <= 0 {
		cfg.MinWordCount = DefaultMinWordCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Builder{
		corpus:   corpus,
		embedder: embedder,
		store:    store,
		factory:  factory,
		splitter: splitter,
		cfg:      cfg,
	}
}

// Build runs one full rebuild. The corpus is read once in stable order, so
// rebuilding an unchanged corpus reproduces the same chunk list and the
// same ordinal assignment.
func (b *Builder) Build(ctx context.Context) (*driving.BuildReport, error) {
	logger.Section("Index Build")

	if err := b.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("embedding backend unavailable: %w", err)
	}

	docs, err := b.corpus.ListDocuments(ctx, b.cfg.MinWordCount)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents with at least %d words: %w",
			b.cfg.MinWordCount, domain.ErrEmptyCorpus)
	}
	logger.Info("Corpus: %d eligible documents", len(docs))

	chunks := b.chunkAll(docs)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}
	logger.Info("Chunked into %d passages", len(chunks))

	vectors, err := b.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	index, err := b.factory(b.embedder.Dimensions(), len(vectors))
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	// The full corpus fits in memory at build time, so it doubles as the
	// training sample.
	if err := index.Train(ctx, vectors); err != nil {
		return nil, fmt.Errorf("train index: %w", err)
	}
	if err := index.Add(vectors); err != nil {
		return nil, fmt.Errorf("add vectors: %w", err)
	}

	buildID := uuid.NewString()
	ledger, err := b.store.Write(index, buildID, b.embedder.ModelName(), chunks)
	if err != nil {
		return nil, fmt.Errorf("persist artifacts: %w", err)
	}
	logger.Info("Build %s persisted: %d vectors", buildID, index.NTotal())

	return &driving.BuildReport{
		BuildID:          buildID,
		Documents:        len(docs),
		Chunks:           len(chunks),
		Dimensions:       index.Dimensions(),
		IndexKind:        b.cfg.IndexKind,
		Categories:       ledger.Categories(),
		AvgWordsPerChunk: avgWords(chunks),
	}, nil
}

// chunkAll splits every document and assigns ordinals in corpus order.
func (b *Builder) chunkAll(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for _, chunk := range b.splitter.Split(doc) {
			chunk.Ordinal = len(chunks)
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// embedAll embeds chunk contents in batches and normalizes each vector so
// the index's inner products are cosine similarities.
func (b *Builder) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += b.cfg.BatchSize {
		end := start + b.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batch, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch at chunk %d: %w", start, err)
		}
		for _, vec := range batch {
			vectors = append(vectors, domain.Normalize(vec))
		}
		logger.Debug("Embedded %d/%d chunks", end, len(chunks))
	}
	return vectors, nil
}

func avgWords(chunks []domain.Chunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	total := 0
	for _, chunk := range chunks {
		total += countWords(chunk.Content)
	}
	return float64(total) / float64(len(chunks))
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
