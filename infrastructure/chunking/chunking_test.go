package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextStrategy_WindowsWithOverlap(t *testing.T) {
	s := NewTextStrategy(Settings{ChunkSize: 10, Overlap: 4})
	chunks := s.Chunk("abcdefghijklmnopqrst")

	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ghijklmnop", chunks[1])
	assert.Equal(t, "mnopqrst", chunks[2])
	assert.Equal(t, "st", chunks[3])
}

func TestTextStrategy_RoundTrip(t *testing.T) {
	input := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)
	s := NewTextStrategy(Settings{ChunkSize: 500, Overlap: 50})
	chunks := s.Chunk(input)

	// Removing the overlapping prefix of every chunk after the first
	// reproduces the input exactly.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		cut := 50
		if cut > len(c) {
			cut = len(c)
		}
		rebuilt.WriteString(c[cut:])
	}
	assert.Equal(t, input, rebuilt.String())
}

func TestTextStrategy_Deterministic(t *testing.T) {
	input := strings.Repeat("repeated paragraph content ", 100)
	s := NewTextStrategy(Settings{})
	assert.Equal(t, s.Chunk(input), s.Chunk(input))
}

func TestTextStrategy_EmptyInput(t *testing.T) {
	assert.Empty(t, NewTextStrategy(Settings{}).Chunk(""))
}

func TestCodeStrategy_PythonSplitsPerDef(t *testing.T) {
	var b strings.Builder
	b.WriteString("import os\n")
	b.WriteString("from typing import List\n")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "def f%d():\n    %s\n", i, strings.Repeat("x", 390))
	}

	s := NewCodeStrategy(Settings{Language: "python", MinChunkSize: 300})
	chunks := s.Chunk(b.String())

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, 1, strings.Count(c, "def "), "chunk %d", i)
	}
	assert.True(t, strings.HasPrefix(chunks[0], "import os\nfrom typing import List\n"))
	assert.NotContains(t, chunks[1], "import os")
}

func TestCodeStrategy_SmallBufferIsNotFlushed(t *testing.T) {
	content := "def a():\n    pass\ndef b():\n    pass"
	s := NewCodeStrategy(Settings{Language: "python", MinChunkSize: 300})

	// Both defs stay in one chunk because the buffer never exceeds the
	// minimum size.
	chunks := s.Chunk(content)
	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0])
}

func TestCodeStrategy_GoKeepsPackageAndImportsOnTop(t *testing.T) {
	var b strings.Builder
	b.WriteString("package main\n")
	b.WriteString("import \"fmt\"\n")
	fmt.Fprintf(&b, "func main() {\n\t%s\n}\n", strings.Repeat("a", 350))
	fmt.Fprintf(&b, "func helper() {\n\t%s\n}\n", strings.Repeat("b", 350))

	s := NewCodeStrategy(Settings{Language: "go"})
	chunks := s.Chunk(b.String())

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "package main\nimport \"fmt\"\n"))
	assert.Contains(t, chunks[0], "func main")
	assert.Contains(t, chunks[1], "func helper")
}

func TestCodeStrategy_JavaScriptExportedConstructs(t *testing.T) {
	var b strings.Builder
	b.WriteString("import { x } from 'y'\n")
	fmt.Fprintf(&b, "function first() {\n  %s\n}\n", strings.Repeat("1", 350))
	fmt.Fprintf(&b, "class Second {\n  %s\n}\n", strings.Repeat("2", 350))

	s := NewCodeStrategy(Settings{Language: "typescript"})
	chunks := s.Chunk(b.String())

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "import { x } from 'y'\n"))
	assert.Contains(t, chunks[1], "class Second")
}

func TestCodeStrategy_UnknownLanguageFallsBackToWindowing(t *testing.T) {
	input := strings.Repeat("z", 2500)
	s := NewCodeStrategy(Settings{Language: "cobol"})
	chunks := s.Chunk(input)

	// 1000-byte windows advancing by 800.
	require.Len(t, chunks, 4)
	assert.Len(t, chunks[0], 1000)
}

func TestNewStrategy_SelectsByFileType(t *testing.T) {
	_, isCode := NewStrategy("code", Settings{Language: "python"}).(*CodeStrategy)
	assert.True(t, isCode)

	_, isText := NewStrategy("doc", Settings{}).(*TextStrategy)
	assert.True(t, isText)
}
