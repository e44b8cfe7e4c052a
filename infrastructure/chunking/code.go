package chunking

import (
	"regexp"
	"strings"
)

// CodeStrategy segments source code at top-level constructs. Languages
// without a segmenter fall back to text windowing with the code-sized
// window.
type CodeStrategy struct {
	language     string
	minChunkSize int
	chunkSize    int
	overlap      int
}

// NewCodeStrategy builds a code strategy from settings, applying the
// defaults for unset fields.
func NewCodeStrategy(settings Settings) *CodeStrategy {
	s := &CodeStrategy{
		language:     strings.ToLower(settings.Language),
		minChunkSize: settings.MinChunkSize,
		chunkSize:    settings.ChunkSize,
		overlap:      settings.Overlap,
	}
	if s.minChunkSize <= 0 {
		s.minChunkSize = DefaultCodeMinChunkSize
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultCodeChunkSize
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		s.overlap = DefaultCodeOverlap
	}
	return s
}

var jsConstructRe = regexp.MustCompile(`^(export\s+)?(function|class)\s`)

// Chunk dispatches to the per-language segmenter.
func (s *CodeStrategy) Chunk(content string) []string {
	switch s.language {
	case "python":
		return segment(content, s.minChunkSize, lineRules{
			isHeader:  prefixMatcher("import ", "from "),
			isTrigger: prefixMatcher("class ", "def "),
		})
	case "javascript", "typescript", "nodejs":
		return segment(content, s.minChunkSize, lineRules{
			isHeader:  prefixMatcher("import ", "export ", "require("),
			isTrigger: jsConstructRe.MatchString,
		})
	case "dart":
		return segment(content, s.minChunkSize, lineRules{
			isHeader:  prefixMatcher("import "),
			isTrigger: prefixMatcher("@override", "class ", "void ", "final ", "Future<"),
		})
	case "elixir":
		return segment(content, s.minChunkSize, lineRules{
			isTrigger: prefixMatcher("defmodule ", "def ", "defp "),
		})
	case "html", "css":
		return segment(content, s.minChunkSize, lineRules{
			isTrigger: prefixMatcher("<", "{"),
		})
	case "go":
		return segment(content, s.minChunkSize, lineRules{
			isHeader:  prefixMatcher("package ", "import "),
			isTrigger: prefixMatcher("func "),
		})
	case "c", "cpp":
		return segment(content, s.minChunkSize, lineRules{
			isHeader:  prefixMatcher("#include"),
			isTrigger: prefixMatcher("void ", "int ", "char ", "float ", "double "),
		})
	case "ruby":
		return segment(content, s.minChunkSize, lineRules{
			isHeader:  prefixMatcher("require "),
			isTrigger: prefixMatcher("class ", "module ", "def "),
		})
	}
	return window(content, s.chunkSize, s.overlap)
}

// lineRules drives the generic segmenter. Header lines are pulled out of
// the flow and prepended to the first chunk; trigger lines flush the
// running buffer when it is already larger than min_chunk_size.
type lineRules struct {
	isHeader  func(stripped string) bool
	isTrigger func(stripped string) bool
}

func prefixMatcher(prefixes ...string) func(string) bool {
	return func(stripped string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(stripped, p) {
				return true
			}
		}
		return false
	}
}

func segment(content string, minChunkSize int, rules lineRules) []string {
	lines := strings.Split(content, "\n")
	var chunks []string
	var chunk []string
	var header []string

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if rules.isHeader != nil && rules.isHeader(stripped) {
			header = append(header, line)
			continue
		}

		if rules.isTrigger(stripped) && len(chunk) > 0 && len(strings.Join(chunk, "\n")) > minChunkSize {
			chunks = append(chunks, strings.Join(chunk, "\n"))
			chunk = nil
		}

		chunk = append(chunk, line)
	}

	if len(chunk) > 0 {
		chunks = append(chunks, strings.Join(chunk, "\n"))
	}

	if len(chunks) > 0 && len(header) > 0 {
		chunks[0] = strings.Join(header, "\n") + "\n" + chunks[0]
	}

	return chunks
}
