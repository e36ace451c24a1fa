package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/doclens/doclens-cli/internal/adapters/driven/config/file"
	"github.com/doclens/doclens-cli/internal/adapters/driven/embedding/ollama"
	"github.com/doclens/doclens-cli/internal/adapters/driven/embedding/openai"
	"github.com/doclens/doclens-cli/internal/adapters/driven/storage/artifacts"
	"github.com/doclens/doclens-cli/internal/adapters/driven/storage/sqlite"
	"github.com/doclens/doclens-cli/internal/adapters/driven/vectorindex"
	"github.com/doclens/doclens-cli/internal/chunker"
	"github.com/doclens/doclens-cli/internal/core/ports/driven"
	"github.com/doclens/doclens-cli/internal/core/routing"
	"github.com/doclens/doclens-cli/internal/core/services"
)

func loadConfig() (*file.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return file.Load(path)
}

func newEmbedder(cfg *file.Config) (driven.EmbeddingService, error) {
	timeout := time.Duration(cfg.Embedding.TimeoutSecs) * time.Second

	switch cfg.Embedding.Provider {
	case "openai":
		keyEnv := cfg.Embedding.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "OPENAI_API_KEY"
		}
		key := os.Getenv(keyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is not set", keyEnv)
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            key,
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Timeout:           timeout,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
	default:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			Timeout:           timeout,
			Dimensions:        cfg.Embedding.Dimensions,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		}), nil
	}
}

func newArtifactStore(cfg *file.Config) *artifacts.FileStore {
	return artifacts.NewFileStore(cfg.IndexPath, cfg.ManifestPath)
}

func indexFactory(cfg *file.Config) driven.IndexFactory {
	return func(dimensions, expectedCount int) (driven.VectorIndex, error) {
		if cfg.Build.IndexKind == vectorindex.KindIVF {
			partitionCap := cfg.Build.PartitionCap
			if partitionCap <= 0 {
				partitionCap = vectorindex.DefaultPartitionCap
			}
			nprobe := cfg.Build.NProbe
			if nprobe <= 0 {
				nprobe = vectorindex.DefaultNProbe
			}
			nlist := vectorindex.PartitionCount(expectedCount, partitionCap)
			return vectorindex.NewIVF(dimensions, nlist, nprobe)
		}
		return vectorindex.NewFlat(dimensions)
	}
}

// newEngine assembles a ready retrieval engine. The caller owns the engine
// and must Close it; Close tears down the embedder and corpus store too.
func newEngine(cfg *file.Config) (*services.Engine, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	corpus, err := sqlite.NewCorpusStore(cfg.CorpusPath)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	engine, err := services.NewEngine(
		embedder,
		corpus,
		newArtifactStore(cfg),
		routing.NewRouter(cfg.RoutingTables()),
		cfg.Retrieval.ConfidenceThreshold,
	)
	if err != nil {
		embedder.Close()
		corpus.Close()
		return nil, err
	}
	return engine, nil
}

func newBuilder(cfg *file.Config) (*services.Builder, func(), error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}

	corpus, err := sqlite.NewCorpusStore(cfg.CorpusPath)
	if err != nil {
		embedder.Close()
		return nil, nil, err
	}

	builder := services.NewBuilder(
		corpus,
		embedder,
		newArtifactStore(cfg),
		indexFactory(cfg),
		chunker.New(chunker.WithMaxWords(cfg.Build.MaxWords)),
		services.BuilderConfig{
			MinWordCount: cfg.Build.MinWordCount,
			BatchSize:    cfg.Build.BatchSize,
			IndexKind:    cfg.Build.IndexKind,
		},
	)
	cleanup := func() {
		embedder.Close()
		corpus.Close()
	}
	return builder, cleanup, nil
}
