package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

func TestSearchCmd_ArgBounds(t *testing.T) {
	assert.NoError(t, searchCmd.Args(searchCmd, []string{}))
	assert.NoError(t, searchCmd.Args(searchCmd, []string{"one query"}))
	assert.Error(t, searchCmd.Args(searchCmd, []string{"one", "two"}))
}

func TestPrintResultsTable(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	printResultsTable(cmd, []domain.SearchResult{
		{Title: "Canvas Apps", Category: "Power Apps", Content: "building canvas apps", Similarity: 0.91, Rank: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "[1] Canvas Apps")
	assert.Contains(t, out, "Power Apps")
	assert.Contains(t, out, "0.910")
}

func TestPrintResultsTableEmpty(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	printResultsTable(cmd, nil)
	assert.Contains(t, buf.String(), "No results found.")
}

func TestPrintResultsJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	err := printResultsJSON(cmd, []domain.SearchResult{
		{Title: "Canvas Apps", Category: "Power Apps", Content: "c", Similarity: 0.5, Rank: 1},
	})
	require.NoError(t, err)

	var decoded []domain.SearchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, 1, decoded[0].Rank)
	assert.InDelta(t, 0.5, decoded[0].Similarity, 1e-9)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "0123456789...", snippet("0123456789abcdef", 10))
}
