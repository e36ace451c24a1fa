package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

var (
	searchLimit       int
	searchJSON        bool
	searchInteractive bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed corpus",
	Long: `Answers a free-text query from the built index.

The query is routed to category groups by keyword and searched within those
categories first; when no category matches or the scoped results are not
confident enough, the whole index is searched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVarP(&searchInteractive, "interactive", "i", false, "start an interactive session instead")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchInteractive {
		return runInteractive(cmd, nil)
	}
	if len(args) == 0 {
		return fmt.Errorf("a query argument is required unless --interactive is set")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Retrieval.TopK
	}

	results, err := engine.Retrieve(cmd.Context(), args[0], limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printResultsJSON(cmd, results)
	}
	printResultsTable(cmd, results)
	return nil
}

func printResultsJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printResultsTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	for _, r := range results {
		cmd.Printf("[%d] %s  (%s, %.3f)\n", r.Rank, r.Title, r.Category, r.Similarity)
		cmd.Printf("    %s\n\n", snippet(r.Content, 200))
	}
}

// snippet truncates content at a rune boundary.
func snippet(content string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "..."
}
