package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumnType(t *testing.T) {
	tests := []struct {
		declared string
		expected ColumnType
	}{
		{"character varying", ColumnTypeText},
		{"text", ColumnTypeText},
		{"uuid", ColumnTypeText},
		{"integer", ColumnTypeNumeric},
		{"bigint", ColumnTypeNumeric},
		{"numeric(10,2)", ColumnTypeNumeric},
		{"double precision", ColumnTypeNumeric},
		{"date", ColumnTypeDate},
		{"timestamp with time zone", ColumnTypeDate},
		{"boolean", ColumnTypeBoolean},
		{"jsonb", ColumnTypeOther},
		{"bytea", ColumnTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeColumnType(tt.declared))
		})
	}
}

func TestSchemaModelMatchVocabulary(t *testing.T) {
	model := &SchemaModel{
		Tables: []Table{
			{Name: "employees"},
			{Name: "departments"},
		},
		Synonyms: map[string][]string{
			"employees":   {"employee", "employees", "staff", "salary", "compensation"},
			"departments": {"department", "departments", "dept", "division"},
		},
	}

	matched := model.MatchVocabulary([]string{"average", "salary", "by", "department"})
	assert.Len(t, matched, 2)
	assert.Equal(t, []string{"salary"}, matched["employees"])
	assert.Equal(t, []string{"department"}, matched["departments"])

	assert.Empty(t, model.MatchVocabulary([]string{"weather", "tomorrow"}))
}

func TestSchemaModelFindTable(t *testing.T) {
	model := &SchemaModel{Tables: []Table{{Name: "employees"}}}
	assert.NotNil(t, model.FindTable("employees"))
	assert.Nil(t, model.FindTable("missing"))
}
