package rag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FormatJSONL is the only record format currently implemented.
const FormatJSONL = "jsonl"

// ChunkUse captures one retrieved chunk as it entered the prompt.
type ChunkUse struct {
	ChunkID         string `json:"chunk_id"`
	Text            string `json:"text"`
	MetadataVersion int    `json:"metadata_version"`
}

// QueryRecord is one logged question/answer exchange.
type QueryRecord struct {
	Timestamp   string     `json:"timestamp"`
	Question    string     `json:"question"`
	Repo        string     `json:"repo"`
	Collections []string   `json:"collections"`
	TopK        int        `json:"top_k"`
	ChunksUsed  []ChunkUse `json:"chunks_used"`
	Answer      string     `json:"answer"`
	DurationS   float64    `json:"duration_s"`
}

// QueryRecorder appends query records to a JSONL file so runs can be
// compared offline.
type QueryRecorder struct {
	path   string
	format string
}

// NewQueryRecorder creates the record file's directory if needed.
func NewQueryRecorder(path string) (*QueryRecorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create record dir: %w", err)
		}
	}
	return &QueryRecorder{path: path, format: FormatJSONL}, nil
}

// Record appends one query record. The timestamp is set here when the
// record carries none.
func (r *QueryRecorder) Record(record QueryRecord) error {
	if r.format != FormatJSONL {
		return fmt.Errorf("unsupported record format %q", r.format)
	}
	if record.Timestamp == "" {
		record.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal query record: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open query record file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write query record: %w", err)
	}
	return nil
}
