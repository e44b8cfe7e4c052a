// Package chunking splits extracted document text into retrieval units.
// The text strategy windows raw text; the code strategy segments source
// files at top-level constructs per language, falling back to windowing
// for unknown languages.
package chunking

// Default settings for the two strategies.
const (
	DefaultTextChunkSize = 500
	DefaultTextOverlap   = 50

	DefaultCodeMinChunkSize = 300
	DefaultCodeChunkSize    = 1000
	DefaultCodeOverlap      = 200
)

// Strategy turns a document's text into an ordered list of chunks.
// Chunking is deterministic: the same text and settings always produce
// the same list.
type Strategy interface {
	Chunk(content string) []string
}

// Settings parameterizes a strategy. Zero values select the defaults.
type Settings struct {
	Extension    string
	Language     string
	MinChunkSize int
	ChunkSize    int
	Overlap      int
}

// NewStrategy returns the strategy for a file type. Type "code" selects
// the language-aware strategy; everything else gets text windowing.
func NewStrategy(fileType string, settings Settings) Strategy {
	if fileType == "code" {
		return NewCodeStrategy(settings)
	}
	return NewTextStrategy(settings)
}
