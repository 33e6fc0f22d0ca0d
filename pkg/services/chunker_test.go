package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyContent(t *testing.T) {
	c := NewChunker(800, 120, 10)
	assert.Nil(t, c.Chunk("", "notes.txt"))
	assert.Nil(t, c.Chunk("   \n\t  ", "notes.txt"))
}

func TestChunkCSVKeepsHeader(t *testing.T) {
	c := NewChunker(800, 120, 2)

	var b strings.Builder
	b.WriteString("name,salary\n")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "person%d,%d\n", i, 50000+i)
	}

	chunks := c.Chunk(b.String(), "payroll.csv")
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.True(t, strings.HasPrefix(chunk, "name,salary\n"), "chunk must start with the header")
	}
	assert.Contains(t, chunks[0], "person0")
	assert.Contains(t, chunks[2], "person4")
}

func TestChunkCSVHeaderOnly(t *testing.T) {
	c := NewChunker(800, 120, 10)
	chunks := c.Chunk("name,salary", "payroll.csv")
	assert.Equal(t, []string{"name,salary"}, chunks)
}

func TestChunkResumeBySections(t *testing.T) {
	c := NewChunker(80, 0, 10)
	content := strings.Join([]string{
		"Jane Doe Resume",
		"Objective: build data systems.",
		"Skills",
		strings.Repeat("Go, SQL, Python. ", 6),
		"Experience",
		strings.Repeat("Built pipelines at Acme. ", 6),
	}, "\n")

	chunks := c.Chunk(content, "jane.txt")
	require.NotEmpty(t, chunks)
	var joined = strings.Join(chunks, "\n")
	assert.Contains(t, joined, "Skills")
	assert.Contains(t, joined, "Experience")
}

func TestChunkSentencesRespectsTarget(t *testing.T) {
	c := NewChunker(100, 0, 10)
	content := strings.TrimSpace(strings.Repeat("This sentence is about forty characters. ", 10))

	chunks := c.Chunk(content, "notes.md")
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 140, "chunks should stay near the target size")
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	c := NewChunker(100, 30, 10)
	content := strings.TrimSpace(strings.Repeat("This sentence is about forty characters. ", 10))

	chunks := c.Chunk(content, "notes.md")
	require.Greater(t, len(chunks), 1)

	// Each chunk after the first starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		head := strings.SplitN(chunks[i], "\n", 2)[0]
		assert.True(t, strings.HasSuffix(strings.TrimSpace(chunks[i-1]), strings.TrimSpace(head)),
			"chunk %d should begin with the previous chunk's tail", i)
	}
}

func TestInferDocumentKind(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		expected documentKind
	}{
		{"resume", "Objective: lead teams\nSkills: Go", "jane.pdf", kindResume},
		{"contract", "This agreement binds each party. Clause 1:", "msa.docx", kindContract},
		{"review", "Annual performance review for Q3", "review.txt", kindReview},
		{"csv", "a,b\n1,2", "data.csv", kindTable},
		{"generic", "Weekly meeting minutes.", "minutes.txt", kindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, inferDocumentKind(tt.content, tt.filename))
		})
	}
}
