package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
)

func TestDetectStatementType(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected StatementType
	}{
		{"plain select", "SELECT * FROM employees", StatementSelect},
		{"lowercase select", "select name from departments", StatementSelect},
		{"cte select", "WITH top AS (SELECT * FROM employees) SELECT * FROM top", StatementSelect},
		{"modifying cte", "WITH gone AS (DELETE FROM employees RETURNING *) SELECT * FROM gone", StatementUnknown},
		{"insert", "INSERT INTO employees VALUES (1)", StatementInsert},
		{"update", "UPDATE employees SET salary = 0", StatementUpdate},
		{"delete", "DELETE FROM employees", StatementDelete},
		{"create", "CREATE TABLE t (id int)", StatementDDL},
		{"drop", "DROP TABLE employees", StatementDDL},
		{"truncate", "TRUNCATE employees", StatementDDL},
		{"garbage", "EXPLAIN SELECT 1", StatementUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectStatementType(tt.sql))
		})
	}
}

func TestValidateReadOnly(t *testing.T) {
	t.Run("accepts single select and strips semicolon", func(t *testing.T) {
		got, err := ValidateReadOnly("SELECT name FROM departments;\n")
		require.NoError(t, err)
		assert.Equal(t, "SELECT name FROM departments", got)
	})

	t.Run("rejects multiple statements", func(t *testing.T) {
		_, err := ValidateReadOnly("SELECT 1; DROP TABLE employees")
		assert.ErrorIs(t, err, ErrMultipleStatements)
	})

	t.Run("semicolon inside string literal is fine", func(t *testing.T) {
		got, err := ValidateReadOnly("SELECT * FROM notes WHERE body = 'a;b'")
		require.NoError(t, err)
		assert.Contains(t, got, "'a;b'")
	})

	t.Run("rejects DML", func(t *testing.T) {
		_, err := ValidateReadOnly("DELETE FROM employees")
		assert.ErrorIs(t, err, ErrNotReadOnly)
		assert.ErrorIs(t, err, apperrors.ErrNotReadOnly)
	})

	t.Run("rejects DDL", func(t *testing.T) {
		_, err := ValidateReadOnly("DROP TABLE employees;")
		assert.ErrorIs(t, err, ErrNotReadOnly)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ValidateReadOnly("  ;  ")
		assert.ErrorIs(t, err, ErrEmptyStatement)
	})
}

func TestCheckInputForInjection(t *testing.T) {
	assert.Nil(t, CheckInputForInjection("show average salary by department"))

	result := CheckInputForInjection("' OR 1=1 --")
	require.NotNil(t, result)
	assert.True(t, result.IsSQLi)
	assert.NotEmpty(t, result.Fingerprint)
}
