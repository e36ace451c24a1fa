// Package domain contains the core types of the retrieval engine.
package domain

import "fmt"

// Document represents a cleaned documentation page as stored in the corpus.
// Documents are produced by an external ingestion pipeline and are read-only
// to the retrieval engine.
type Document struct {
	// ID is the corpus-assigned identifier.
	ID int64

	// URL is the original page location.
	URL string

	// Title is the human-readable title.
	Title string

	// Content is the cleaned full text.
	Content string

	// Category is the topical label assigned during ingestion.
	// Empty when the ingestion pipeline could not classify the page.
	Category string

	// WordCount is the whitespace-delimited word count of Content.
	WordCount int
}

// Chunk is the unit that is embedded and indexed. Long documents are split
// into consecutive word windows; each window becomes one chunk.
//
// A chunk is created at build time from exactly one document and is never
// mutated afterwards. It is destroyed only by a full index rebuild.
type Chunk struct {
	// ID is derived from the source document and the window position,
	// see ChunkID.
	ID string

	// DocumentID is the source document.
	DocumentID int64

	// Title and Category are copied from the source document so general
	// search can hydrate results without a corpus round-trip.
	Title    string
	Category string

	// Content is the window text, words rejoined with single spaces.
	Content string

	// Index is the 0-based window position within the document.
	Index int

	// Total is the number of chunks the document was split into.
	// The same value is shared by every chunk of one document.
	Total int

	// Ordinal is the chunk's 0-based slot in the vector index. The index
	// stores vectors in exactly the order chunks were created, so this
	// binding is permanent for a given index artifact.
	Ordinal int
}

// ChunkID derives the chunk identifier for a document and window position.
func ChunkID(documentID int64, index int) string {
	return fmt.Sprintf("%d_chunk_%d", documentID, index)
}

// SearchResult is a single ranked retrieval hit. Results are ephemeral,
// produced per query, and never persisted.
type SearchResult struct {
	// Title and Category identify the source document.
	Title    string `json:"title"`
	Category string `json:"category"`

	// Content is the matched chunk text. Truncation for display or prompt
	// assembly is the consumer's responsibility.
	Content string `json:"content"`

	// Similarity is the cosine similarity in [-1, 1].
	Similarity float64 `json:"similarity_score"`

	// Rank is 1-based.
	Rank int `json:"rank"`
}
