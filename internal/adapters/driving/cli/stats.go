package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens-cli/internal/adapters/driven/storage/manifest"
	"github.com/doclens/doclens-cli/internal/adapters/driven/storage/sqlite"
	"github.com/doclens/doclens-cli/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	corpus, err := sqlite.NewCorpusStore(cfg.CorpusPath)
	if err != nil {
		return err
	}
	defer corpus.Close()

	total, err := corpus.CountDocuments(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Println("Corpus")
	cmd.Printf("  Path:      %s\n", cfg.CorpusPath)
	cmd.Printf("  Documents: %d\n", total)
	cmd.Println()

	man, err := manifest.Load(cfg.ManifestPath)
	if errors.Is(err, domain.ErrIndexUnavailable) {
		cmd.Println("Index: not built yet, run 'doclens build'")
		return nil
	}
	if err != nil {
		return err
	}

	cmd.Println("Index")
	cmd.Printf("  Build:      %s\n", man.BuildID)
	cmd.Printf("  Model:      %s\n", man.Model)
	cmd.Printf("  Dimensions: %d\n", man.Dimensions)
	cmd.Printf("  Chunks:     %d\n", man.Len())
	cmd.Printf("  Created:    %s\n", man.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	counts := man.Categories()
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	cmd.Println("  Categories:")
	for _, c := range categories {
		cmd.Printf("    %-30s %d\n", c, counts[c])
	}
	return nil
}
