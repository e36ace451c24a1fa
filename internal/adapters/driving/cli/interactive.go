package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/doclens/doclens-cli/internal/adapters/driven/watch"
	"github.com/doclens/doclens-cli/internal/adapters/driving/tui"
	"github.com/doclens/doclens-cli/internal/logger"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive search session",
	Long: `Launch an interactive terminal session for querying the index.

The session watches the index artifacts and picks up a rebuild without a
restart.

Controls:
  Enter         - Search
  ↑/↓           - Navigate results
  Ctrl+C/Ctrl+D - Quit`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in interactive session: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Pick up atomic rebuild swaps while the session runs.
	watcher, err := watch.New(
		[]string{cfg.IndexPath, cfg.ManifestPath},
		watch.DefaultDebounce,
		func() {
			if err := engine.Reload(); err != nil {
				logger.Warn("Reload after rebuild failed: %v", err)
			}
		},
	)
	if err != nil {
		return fmt.Errorf("watch artifacts: %w", err)
	}
	defer watcher.Close()

	session := tui.New(engine, cfg.Retrieval.TopK, tui.Summary{
		Corpus: cfg.CorpusPath,
		Model:  cfg.Embedding.Model,
	})

	p := tea.NewProgram(session, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive session error: %w", err)
	}
	return nil
}
