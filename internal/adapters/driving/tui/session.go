// Package tui implements the interactive search session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

// Searcher is the session-facing subset of the retrieval service.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// Summary describes the session's backing data for the header line.
type Summary struct {
	Corpus string
	Model  string
}

// Session is the Bubble Tea model for interactive search.
type Session struct {
	searcher Searcher
	topK     int
	summary  Summary

	input    textinput.Model
	viewport viewport.Model
	results  []domain.SearchResult
	cursor   int
	status   string
	ready    bool
}

// New creates a session over the given searcher.
func New(searcher Searcher, topK int, summary Summary) Session {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Session{
		searcher: searcher,
		topK:     topK,
		summary:  summary,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready. Type to search.",
	}
}

// Init starts the text input cursor blink.
func (s Session) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (s Session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, status, query box, spacer
		vh := msg.Height - reserved - rh
		if vh < 3 {
			vh = 3
		}
		s.viewport.Width = maxInt(20, msg.Width-4)
		s.viewport.Height = vh
		s.viewport.SetContent(s.renderResult())
		return s, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return s, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if query := strings.TrimSpace(s.input.Value()); query != "" {
				s.runQuery(query)
				return s, nil
			}
		case "down":
			if len(s.results) > 0 {
				s.cursor = (s.cursor + 1) % len(s.results)
				s.viewport.SetContent(s.renderResult())
				return s, nil
			}
		case "up":
			if len(s.results) > 0 {
				s.cursor = (s.cursor - 1 + len(s.results)) % len(s.results)
				s.viewport.SetContent(s.renderResult())
				return s, nil
			}
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Session) runQuery(query string) {
	results, err := s.searcher.Retrieve(context.Background(), query, s.topK)
	if err != nil {
		s.status = "Error: " + err.Error()
		s.results = nil
	} else if len(results) == 0 {
		s.status = fmt.Sprintf("No results for %q", query)
		s.results = nil
	} else {
		s.status = fmt.Sprintf("%d results for %q", len(results), query)
		s.results = results
		s.cursor = 0
	}
	s.viewport.SetContent(s.renderResult())
}

// View renders the session layout.
func (s Session) View() string {
	if !s.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Doclens")
	summary := summaryStyle.Render(fmt.Sprintf("corpus: %s  model: %s", s.summary.Corpus, s.modelLabel()))
	results := resultBoxStyle.Render(s.viewport.View())
	input := queryBoxStyle.Render(s.input.View())
	status := statusStyle.Render(s.status)

	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (s Session) modelLabel() string {
	if s.summary.Model == "" {
		return "default"
	}
	return s.summary.Model
}

func (s Session) renderResult() string {
	if len(s.results) == 0 {
		return "No results yet."
	}

	r := s.results[s.cursor]
	title := titleStyle.Render(fmt.Sprintf("Result %d/%d  %s", s.cursor+1, len(s.results), r.Title))
	meta := summaryStyle.Render(fmt.Sprintf("category: %s  similarity: %.3f", r.Category, r.Similarity))
	return title + "\n" + meta + "\n\n" + r.Content
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
