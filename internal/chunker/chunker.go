// Package chunker splits documents into bounded-length word windows.
package chunker

import (
	"strings"

	"github.com/doclens/doclens-cli/internal/core/domain"
)

// DefaultMaxWords is the default window size in words.
const DefaultMaxWords = 500

// Chunker splits document content into consecutive, non-overlapping word
// windows. Windows are rejoined with single spaces, so exact original
// whitespace is not preserved; only semantic content survives. Chunking
// never drops content and never reorders words.
type Chunker struct {
	maxWords int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxWords sets the window size in words.
func WithMaxWords(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxWords = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxWords: DefaultMaxWords}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxWords returns the configured window size.
func (c *Chunker) MaxWords() int {
	return c.maxWords
}

// Split breaks doc into chunks. A document of at most maxWords words yields
// exactly one chunk equal to the whole content. The final window may be
// shorter than maxWords. Ordinal is left at zero; the index builder assigns
// it when vectors are appended.
func (c *Chunker) Split(doc domain.Document) []domain.Chunk {
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= c.maxWords {
		return []domain.Chunk{{
			ID:         domain.ChunkID(doc.ID, 0),
			DocumentID: doc.ID,
			Title:      doc.Title,
			Category:   doc.Category,
			Content:    doc.Content,
			Index:      0,
			Total:      1,
		}}
	}

	total := (len(words) + c.maxWords - 1) / c.maxWords
	chunks := make([]domain.Chunk, 0, total)
	for i := 0; i < len(words); i += c.maxWords {
		end := i + c.maxWords
		if end > len(words) {
			end = len(words)
		}
		idx := i / c.maxWords
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, idx),
			DocumentID: doc.ID,
			Title:      doc.Title,
			Category:   doc.Category,
			Content:    strings.Join(words[i:end], " "),
			Index:      idx,
			Total:      total,
		})
	}
	return chunks
}
