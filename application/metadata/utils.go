package metadata

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// File categories drive chunking strategy selection.
const (
	CategoryCode    = "code"
	CategoryDoc     = "doc"
	CategoryConfig  = "config"
	CategoryLog     = "log"
	CategoryBinary  = "binary"
	CategoryUnknown = "unknown"
)

var categoryByExtension = map[string]string{
	"py": CategoryCode, "js": CategoryCode, "ts": CategoryCode,
	"java": CategoryCode, "c": CategoryCode, "cpp": CategoryCode,
	"h": CategoryCode, "hpp": CategoryCode, "cs": CategoryCode,
	"go": CategoryCode, "rb": CategoryCode, "rs": CategoryCode,
	"php": CategoryCode, "swift": CategoryCode, "kt": CategoryCode,
	"ex": CategoryCode, "exs": CategoryCode,

	"md": CategoryDoc, "rst": CategoryDoc, "txt": CategoryDoc,
	"pdf": CategoryDoc, "doc": CategoryDoc, "docx": CategoryDoc,

	"json": CategoryConfig, "yaml": CategoryConfig, "yml": CategoryConfig,
	"toml": CategoryConfig, "ini": CategoryConfig, "xml": CategoryConfig,

	"log": CategoryLog, "csv": CategoryLog,

	"png": CategoryBinary, "jpg": CategoryBinary, "jpeg": CategoryBinary,
	"gif": CategoryBinary, "bmp": CategoryBinary, "svg": CategoryBinary,
	"mp3": CategoryBinary, "mp4": CategoryBinary, "mov": CategoryBinary,
	"avi": CategoryBinary, "zip": CategoryBinary, "tar": CategoryBinary,
	"gz": CategoryBinary, "7z": CategoryBinary, "rar": CategoryBinary,
	"mmdb": CategoryBinary, "ico": CategoryBinary,
}

var languageByExtension = map[string]string{
	"py": "python", "js": "javascript", "ts": "javascript",
	"sol": "solidity", "java": "java",
	"c": "c", "h": "c", "cpp": "cpp", "hpp": "cpp",
	"cs": "csharp", "go": "go", "rb": "ruby", "rs": "rust",
	"php": "php", "swift": "swift", "kt": "kotlin",
	"json": "json", "yaml": "yaml", "yml": "yaml", "toml": "toml",
	"xml": "xml", "md": "markdown", "rst": "markdown", "txt": "markdown",
	"ex": "elixir", "exs": "elixir",
}

// fileExtension returns the lowercased extension without the dot.
func fileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return strings.ToLower(filename)
	}
	return strings.ToLower(filename[idx+1:])
}

// fileCategory classifies a filename by extension.
func fileCategory(filename string) string {
	if category, ok := categoryByExtension[fileExtension(filename)]; ok {
		return category
	}
	return CategoryUnknown
}

// programmingLanguage maps an extension to its language label.
func programmingLanguage(extension string) string {
	if lang, ok := languageByExtension[extension]; ok {
		return lang
	}
	return "unknown"
}

// naturalLanguage detects the human language of a text.
func naturalLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "unknown"
	}
	return strings.ToLower(info.Lang.String())
}

// hashText is the MD5 hex digest used for change detection.
func hashText(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
