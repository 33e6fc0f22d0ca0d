package services

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
)

// FileInput is one uploaded document: its original name and raw bytes.
type FileInput struct {
	Name    string
	Content []byte
}

// TextExtractor pulls plain text out of binary document formats.
// Implementations wrap external tooling for PDF and DOCX; the engine only
// needs the text back.
type TextExtractor interface {
	Extract(name string, content []byte) (string, error)
}

// plainTextExtensions are handled without an external extractor.
var plainTextExtensions = map[string]bool{
	".txt":   true,
	".md":    true,
	".csv":   true,
	".json":  true,
	".jsonl": true,
}

// binaryExtensions require a TextExtractor.
var binaryExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// DocumentReader turns uploaded files into plain text, dispatching on
// extension.
type DocumentReader struct {
	extractor TextExtractor // nil when no binary-format support is configured
}

// NewDocumentReader creates a reader. extractor may be nil, in which case
// PDF and DOCX uploads are rejected as unsupported.
func NewDocumentReader(extractor TextExtractor) *DocumentReader {
	return &DocumentReader{extractor: extractor}
}

// Supported reports whether the file's extension can be ingested.
func (r *DocumentReader) Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if plainTextExtensions[ext] {
		return true
	}
	return binaryExtensions[ext] && r.extractor != nil
}

// Read extracts the plain text of one file.
func (r *DocumentReader) Read(file FileInput) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Name))

	switch {
	case ext == ".json":
		return reindentJSON(file.Content), nil
	case ext == ".jsonl":
		return normalizeJSONLines(file.Content), nil
	case plainTextExtensions[ext]:
		return string(file.Content), nil
	case binaryExtensions[ext]:
		if r.extractor == nil {
			return "", fmt.Errorf("%w: no extractor configured for %s", apperrors.ErrUnsupportedFileType, ext)
		}
		text, err := r.extractor.Extract(file.Name, file.Content)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", file.Name, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFileType, ext)
	}
}

// reindentJSON pretty-prints JSON so chunk boundaries fall on structure
// rather than inside a one-line blob. Invalid JSON passes through as-is.
func reindentJSON(content []byte) string {
	var value any
	if err := json.Unmarshal(content, &value); err != nil {
		return string(content)
	}
	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return string(content)
	}
	return string(pretty)
}

// normalizeJSONLines compacts each JSONL record, dropping blank lines.
// Undecodable lines pass through as-is.
func normalizeJSONLines(content []byte) string {
	lines := strings.Split(string(content), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var value any
		if err := json.Unmarshal([]byte(line), &value); err != nil {
			out = append(out, line)
			continue
		}
		compact, err := json.Marshal(value)
		if err != nil {
			out = append(out, line)
			continue
		}
		out = append(out, string(compact))
	}
	return strings.Join(out, "\n")
}
