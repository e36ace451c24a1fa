// Package file loads the doclens configuration from a TOML file.
// Configuration is read once at process start and treated as immutable for
// the process lifetime; changing it requires a restart.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/doclens/doclens-cli/internal/core/routing"
)

// Default values.
const (
	DefaultCorpusFile   = "corpus.db"
	DefaultIndexFile    = "learn_index.dlvi"
	DefaultManifestFile = "learn_chunks.json"

	DefaultMinWordCount = 50
	DefaultMaxWords     = 500
	DefaultBatchSize    = 32
	DefaultIndexKind    = "flat"

	DefaultTopK      = 5
	DefaultThreshold = 0.4
)

// Config is the root configuration.
type Config struct {
	// CorpusPath is the SQLite corpus database.
	CorpusPath string `toml:"corpus_path"`

	// IndexPath is the vector index artifact.
	IndexPath string `toml:"index_path"`

	// ManifestPath is the chunk manifest written next to the index.
	ManifestPath string `toml:"manifest_path"`

	Embedding EmbeddingConfig `toml:"embedding"`
	Build     BuildConfig     `toml:"build"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Routing   RoutingConfig   `toml:"routing"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the opaque model identifier.
	Model string `toml:"model"`

	// Dimensions is the embedding vector size.
	Dimensions int `toml:"dimensions"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// TimeoutSecs is the per-request timeout.
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond throttles bulk builds. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// BuildConfig configures index construction.
type BuildConfig struct {
	// MinWordCount filters short corpus documents.
	MinWordCount int `toml:"min_word_count"`

	// MaxWords is the chunk window size.
	MaxWords int `toml:"max_words"`

	// BatchSize is the embedding batch size.
	BatchSize int `toml:"batch_size"`

	// IndexKind is "flat" or "ivf".
	IndexKind string `toml:"index_kind"`

	// PartitionCap bounds the IVF partition count.
	PartitionCap int `toml:"partition_cap"`

	// NProbe is the number of IVF partitions scanned per query.
	NProbe int `toml:"nprobe"`
}

// RetrievalConfig configures query-time behaviour.
type RetrievalConfig struct {
	// TopK is the default result count.
	TopK int `toml:"top_k"`

	// ConfidenceThreshold gates category-scoped results. A scoped result
	// set whose best similarity is below this value is discarded in
	// favour of general search. The bound is inclusive on the scoped
	// side: best >= threshold keeps the scoped set.
	//
	// Zero or negative values select the 0.4 default; the gate cannot
	// be disabled. Unit vectors bound similarity to [-1, 1], so any
	// threshold above 1 effectively forces general search.
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
}

// RoutingConfig optionally overrides the built-in category tables. Both
// tables must be given together; a partial override is rejected.
type RoutingConfig struct {
	Groups   map[string][]string `toml:"groups"`
	Keywords map[string]string   `toml:"keywords"`
}

// DefaultDataDir returns ~/.doclens.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".doclens"), nil
}

// DefaultPath returns the default config file location,
// ~/.doclens/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path. A missing file yields the defaults; a
// malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RoutingTables resolves the routing tables: the config override when
// present, the built-in tables otherwise.
func (c *Config) RoutingTables() routing.Tables {
	if len(c.Routing.Groups) > 0 && len(c.Routing.Keywords) > 0 {
		return routing.Tables{Groups: c.Routing.Groups, Keywords: c.Routing.Keywords}
	}
	return routing.DefaultTables()
}

func defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.CorpusPath == "" {
		cfg.CorpusPath = defaultFile(DefaultCorpusFile)
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = defaultFile(DefaultIndexFile)
	}
	if cfg.ManifestPath == "" {
		cfg.ManifestPath = defaultFile(DefaultManifestFile)
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Build.MinWordCount == 0 {
		cfg.Build.MinWordCount = DefaultMinWordCount
	}
	if cfg.Build.MaxWords == 0 {
		cfg.Build.MaxWords = DefaultMaxWords
	}
	if cfg.Build.BatchSize == 0 {
		cfg.Build.BatchSize = DefaultBatchSize
	}
	if cfg.Build.IndexKind == "" {
		cfg.Build.IndexKind = DefaultIndexKind
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = DefaultTopK
	}
	if cfg.Retrieval.ConfidenceThreshold == 0 {
		cfg.Retrieval.ConfidenceThreshold = DefaultThreshold
	}
}

func validate(cfg *Config) error {
	switch cfg.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
	switch cfg.Build.IndexKind {
	case "flat", "ivf":
	default:
		return fmt.Errorf("unknown index kind %q", cfg.Build.IndexKind)
	}
	onlyGroups := len(cfg.Routing.Groups) > 0 && len(cfg.Routing.Keywords) == 0
	onlyKeywords := len(cfg.Routing.Keywords) > 0 && len(cfg.Routing.Groups) == 0
	if onlyGroups || onlyKeywords {
		return errors.New("routing override must set both groups and keywords")
	}
	return nil
}

func defaultFile(name string) string {
	dir, err := DefaultDataDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, name)
}
