package services

import (
	"path/filepath"
	"strings"
)

// documentKind drives the chunking strategy. Inference looks at content
// first, falling back to the file extension for tabular data.
type documentKind string

const (
	kindResume   documentKind = "resume"
	kindContract documentKind = "contract"
	kindReview   documentKind = "review"
	kindTable    documentKind = "table"
	kindGeneric  documentKind = "generic"
)

// Chunker splits extracted text into embedding-sized spans. Target and
// overlap are characters; CSV content is chunked as header plus row
// batches instead.
type Chunker struct {
	TargetChars  int
	OverlapChars int
	CSVRows      int
}

// NewChunker creates a chunker with the given tuning.
func NewChunker(targetChars, overlapChars, csvRows int) *Chunker {
	return &Chunker{
		TargetChars:  targetChars,
		OverlapChars: overlapChars,
		CSVRows:      csvRows,
	}
}

// Chunk splits content according to the inferred document kind. Empty or
// whitespace-only content yields no chunks.
func (c *Chunker) Chunk(content, filename string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	switch inferDocumentKind(content, filename) {
	case kindResume:
		return c.overlap(c.chunkBySections(content,
			[]string{"skills", "experience", "projects", "education"}, c.TargetChars))
	case kindContract:
		return c.overlap(c.chunkBySections(content,
			[]string{"section", "clause", "article"}, c.TargetChars+c.TargetChars/2))
	case kindReview:
		return c.overlap(c.chunkParagraphs(content, c.TargetChars*3/4))
	case kindTable:
		return c.chunkCSVRows(content)
	default:
		return c.overlap(c.chunkSentences(content, c.TargetChars))
	}
}

func inferDocumentKind(content, filename string) documentKind {
	ext := strings.ToLower(filepath.Ext(filename))
	lower := strings.ToLower(content)

	if strings.Contains(lower, "resume") || strings.Contains(lower, "objective") ||
		strings.Contains(lower, "skills") {
		return kindResume
	}
	if strings.Contains(lower, "agreement") || strings.Contains(lower, "clause") ||
		strings.Contains(lower, "party") {
		return kindContract
	}
	if strings.Contains(lower, "performance") && strings.Contains(lower, "review") {
		return kindReview
	}
	if ext == ".csv" || ext == ".tsv" {
		return kindTable
	}
	return kindGeneric
}

// chunkBySections groups lines under the section keyword they follow,
// then merges sections up to maxChars.
func (c *Chunker) chunkBySections(content string, keywords []string, maxChars int) []string {
	var (
		sections []string
		buffer   []string
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if section := strings.TrimSpace(strings.Join(buffer, "\n")); section != "" {
			sections = append(sections, section)
		}
		buffer = nil
	}

	for _, line := range strings.Split(content, "\n") {
		lowerLine := strings.ToLower(line)
		for _, keyword := range keywords {
			if strings.Contains(lowerLine, keyword) {
				flush()
				break
			}
		}
		buffer = append(buffer, line)
	}
	flush()

	return mergeChunks(sections, maxChars)
}

func (c *Chunker) chunkParagraphs(content string, maxChars int) []string {
	var paragraphs []string
	for _, paragraph := range strings.Split(content, "\n\n") {
		if p := strings.TrimSpace(paragraph); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return mergeChunks(paragraphs, maxChars)
}

func (c *Chunker) chunkSentences(content string, maxChars int) []string {
	var (
		chunks     []string
		current    []string
		currentLen int
	)

	for _, line := range strings.Split(content, "\n") {
		for _, sentence := range splitSentences(strings.TrimSpace(line)) {
			length := len(sentence)
			if currentLen+length > maxChars && len(current) > 0 {
				chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
				current = []string{sentence}
				currentLen = length
			} else {
				current = append(current, sentence)
				currentLen += length
			}
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.TrimSpace(strings.Join(current, " ")))
	}
	return chunks
}

// chunkCSVRows keeps the header on every chunk so each batch of rows
// stands alone.
func (c *Chunker) chunkCSVRows(content string) []string {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return nil
	}

	header := lines[0]
	dataRows := lines[1:]
	if len(dataRows) == 0 {
		return []string{header}
	}

	rowsPerChunk := c.CSVRows
	if rowsPerChunk <= 0 {
		rowsPerChunk = 10
	}

	var chunks []string
	for start := 0; start < len(dataRows); start += rowsPerChunk {
		end := start + rowsPerChunk
		if end > len(dataRows) {
			end = len(dataRows)
		}
		chunks = append(chunks, strings.Join(append([]string{header}, dataRows[start:end]...), "\n"))
	}
	return chunks
}

// overlap prefixes each chunk after the first with the tail of its
// predecessor so context spanning a boundary is searchable in both.
func (c *Chunker) overlap(chunks []string) []string {
	if c.OverlapChars <= 0 || len(chunks) < 2 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev
		if len(prev) > c.OverlapChars {
			tail = prev[len(prev)-c.OverlapChars:]
			// Avoid cutting mid-word when possible.
			if idx := strings.IndexAny(tail, " \n"); idx >= 0 && idx < len(tail)-1 {
				tail = tail[idx+1:]
			}
		}
		out[i] = tail + "\n" + chunks[i]
	}
	return out
}

func mergeChunks(chunks []string, maxChars int) []string {
	var (
		merged []string
		buffer string
	)
	for _, chunk := range chunks {
		switch {
		case buffer == "":
			buffer = chunk
		case len(buffer)+len(chunk) <= maxChars:
			buffer = buffer + "\n" + chunk
		default:
			merged = append(merged, strings.TrimSpace(buffer))
			buffer = chunk
		}
	}
	if buffer != "" {
		merged = append(merged, strings.TrimSpace(buffer))
	}
	return merged
}

func splitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var (
		sentences []string
		current   strings.Builder
	)
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
