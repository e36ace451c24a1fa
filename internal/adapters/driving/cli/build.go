package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vector index from the corpus",
	Long: `Reads the corpus database, splits documents into chunks, embeds them and
writes the index artifacts. Existing artifacts are replaced atomically, so
running searches keep working during a rebuild.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	builder, cleanup, err := newBuilder(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := builder.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	cmd.Printf("Build %s complete\n", report.BuildID)
	cmd.Printf("  Documents:       %d\n", report.Documents)
	cmd.Printf("  Chunks:          %d\n", report.Chunks)
	cmd.Printf("  Dimensions:      %d\n", report.Dimensions)
	cmd.Printf("  Index kind:      %s\n", report.IndexKind)
	cmd.Printf("  Avg words/chunk: %.1f\n", report.AvgWordsPerChunk)

	categories := make([]string, 0, len(report.Categories))
	for c := range report.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	cmd.Println("  Categories:")
	for _, c := range categories {
		cmd.Printf("    %-30s %d\n", c, report.Categories[c])
	}
	return nil
}
