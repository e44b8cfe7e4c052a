package chunking

// TextStrategy splits text into fixed-size overlapping windows. The
// window advances by chunk size minus overlap; the last chunk may be
// shorter.
type TextStrategy struct {
	chunkSize int
	overlap   int
}

// NewTextStrategy builds a text strategy from settings, applying the
// defaults for unset fields.
func NewTextStrategy(settings Settings) *TextStrategy {
	s := &TextStrategy{
		chunkSize: settings.ChunkSize,
		overlap:   settings.Overlap,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultTextChunkSize
	}
	if s.overlap < 0 || s.overlap >= s.chunkSize {
		s.overlap = DefaultTextOverlap
	}
	return s
}

// Chunk windows content by bytes.
func (s *TextStrategy) Chunk(content string) []string {
	return window(content, s.chunkSize, s.overlap)
}

func window(content string, chunkSize, overlap int) []string {
	if content == "" {
		return nil
	}
	step := chunkSize - overlap
	var chunks []string
	for i := 0; i < len(content); i += step {
		end := i + chunkSize
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, content[i:end])
	}
	return chunks
}
