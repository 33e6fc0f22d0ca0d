// Package nl2sql turns natural language questions into candidate SQL
// using a schema-aware LLM prompt.
package nl2sql

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/llm"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

// ErrCannotTranslate indicates the model declined to produce SQL for the
// question. Callers should surface this as a validation failure, not a
// server error.
var ErrCannotTranslate = fmt.Errorf("question cannot be translated to SQL")

const systemPrompt = "You are an expert SQL generator. Given a database schema and a natural " +
	"language question, generate a single, valid PostgreSQL SELECT query. Do not provide any " +
	"explanation, only the SQL query itself. If you cannot generate a query, respond with 'INVALID'."

// Translator converts a natural language question into SQL against a
// discovered schema.
type Translator interface {
	Translate(ctx context.Context, question string, schema *models.SchemaModel) (string, error)
}

type llmTranslator struct {
	client      llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// NewTranslator creates an LLM-backed Translator.
func NewTranslator(client llm.LLMClient, temperature float64, logger *zap.Logger) Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmTranslator{
		client:      client,
		temperature: temperature,
		logger:      logger.Named("nl2sql"),
	}
}

var _ Translator = (*llmTranslator)(nil)

// Translate implements Translator.
func (t *llmTranslator) Translate(ctx context.Context, question string, schema *models.SchemaModel) (string, error) {
	prompt, err := buildPrompt(question, schema)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	response, err := t.client.GenerateResponse(ctx, prompt, systemPrompt, t.temperature)
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}

	if strings.TrimSpace(response) == "" || strings.Contains(response, "INVALID") {
		t.logger.Debug("model declined to translate",
			zap.String("question", question))
		return "", ErrCannotTranslate
	}

	sql := ExtractSQL(response)
	if sql == "" {
		return "", ErrCannotTranslate
	}

	t.logger.Debug("translated question",
		zap.String("question", question),
		zap.String("sql", sql))

	return sql, nil
}

// promptSchema is the JSON shape the prompt presents to the model.
// Synonyms ride along so the model can resolve business vocabulary
// ("comp", "dept") to the columns it names.
type promptSchema struct {
	Tables        []promptTable       `json:"tables"`
	Relationships []promptFK          `json:"relationships,omitempty"`
	Synonyms      map[string][]string `json:"synonyms,omitempty"`
	SampleRows    map[string]any      `json:"sample_rows,omitempty"`
}

type promptTable struct {
	Name    string         `json:"name"`
	Columns []promptColumn `json:"columns"`
}

type promptColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type promptFK struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func buildPrompt(question string, schema *models.SchemaModel) (string, error) {
	ps := promptSchema{Synonyms: schema.Synonyms, SampleRows: map[string]any{}}
	for _, table := range schema.Tables {
		pt := promptTable{Name: table.Name}
		for _, col := range table.Columns {
			pt.Columns = append(pt.Columns, promptColumn{Name: col.Name, Type: col.DeclaredType})
		}
		ps.Tables = append(ps.Tables, pt)
		if len(table.SampleRows) > 0 {
			ps.SampleRows[table.Name] = table.SampleRows[0]
		}
	}
	for _, rel := range schema.Relationships {
		ps.Relationships = append(ps.Relationships, promptFK{
			From: rel.FromTable + "." + rel.FromColumn,
			To:   rel.ToTable + "." + rel.ToColumn,
		})
	}

	schemaJSON, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Database Schema:\n```json\n%s\n```\n\nUser Question:\n%q\n\n"+
		"Generate the PostgreSQL query for the user's question based on the provided schema.\n"+
		"Respond with only the SQL query.\n", schemaJSON, question), nil
}

var fencedSQLPattern = regexp.MustCompile("(?s)```(?:sql)?\n(.*?)\n```")

// ExtractSQL strips markdown code fences the model may wrap the query in.
func ExtractSQL(text string) string {
	if match := fencedSQLPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(text)
}
