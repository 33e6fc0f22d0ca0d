package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

func hrSchema() *models.SchemaModel {
	return &models.SchemaModel{
		Tables: []models.Table{{Name: "employees"}, {Name: "departments"}},
		Synonyms: map[string][]string{
			"employees":   {"employee", "employees", "staff", "salary", "compensation", "hire_date"},
			"departments": {"department", "departments", "dept", "division"},
		},
	}
}

func TestClassify(t *testing.T) {
	classifier := NewClassifier()
	schema := hrSchema()

	tests := []struct {
		name     string
		query    string
		expected models.QueryType
	}{
		{"aggregation over schema", "What is the average salary by department?", models.QueryTypeSQL},
		{"count query", "How many employees do we have?", models.QueryTypeSQL},
		{"document only", "Show me the onboarding policy", models.QueryTypeDocument},
		{"file mention", "What does the pdf say about vacations?", models.QueryTypeDocument},
		{"document plus schema", "Which resumes mention the highest salary?", models.QueryTypeHybrid},
		{"document plus aggregation", "How many documents mention Python?", models.QueryTypeHybrid},
		{"no vocabulary", "Tell me something interesting", models.QueryTypeSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.query, schema)
			assert.Equal(t, tt.expected, got.Type)
		})
	}
}

func TestClassifyWarnsWithoutVocabulary(t *testing.T) {
	classifier := NewClassifier()

	got := classifier.Classify("Tell me something interesting", hrSchema())
	assert.Equal(t, models.QueryTypeSQL, got.Type)
	assert.Contains(t, got.Warnings, WarnNoVocabularyMatch)

	got = classifier.Classify("How many employees are there?", hrSchema())
	assert.Empty(t, got.Warnings)
}

func TestClassifyDeterministic(t *testing.T) {
	classifier := NewClassifier()
	schema := hrSchema()

	first := classifier.Classify("average salary by department", schema)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first.Type, classifier.Classify("average salary by department", schema).Type)
	}
}

func TestClassifyPluralFolding(t *testing.T) {
	classifier := NewClassifier()
	schema := &models.SchemaModel{
		Tables:   []models.Table{{Name: "employees"}},
		Synonyms: map[string][]string{"employees": {"employee", "salary"}},
	}

	// "salaries" must fold to "salary" to hit the vocabulary.
	got := classifier.Classify("Compare salaries across teams", schema)
	assert.Equal(t, models.QueryTypeSQL, got.Type)
	assert.Empty(t, got.Warnings)
}
