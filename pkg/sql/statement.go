// Package sql validates SQL returned by the natural-language translator
// before it is allowed anywhere near a datasource. The translator is
// treated as untrusted input, not as a trusted code generator.
package sql

import (
	"errors"
	"regexp"
	"strings"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
)

var (
	// ErrMultipleStatements indicates the query contains multiple SQL statements.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")
	// ErrNotReadOnly indicates the statement could modify data or schema.
	// Shared with the handler layer so rejections map to a client error.
	ErrNotReadOnly = apperrors.ErrNotReadOnly
	// ErrEmptyStatement indicates there was no statement after normalization.
	ErrEmptyStatement = errors.New("empty SQL statement")
)

// StatementType represents the detected kind of SQL statement.
type StatementType string

const (
	StatementSelect  StatementType = "SELECT"
	StatementInsert  StatementType = "INSERT"
	StatementUpdate  StatementType = "UPDATE"
	StatementDelete  StatementType = "DELETE"
	StatementDDL     StatementType = "DDL" // CREATE, ALTER, DROP, TRUNCATE
	StatementUnknown StatementType = "UNKNOWN"
)

// modifyingCTEPattern matches CTEs that contain data-modifying operations.
// Example: WITH deleted AS (DELETE FROM ...) SELECT * FROM deleted
var modifyingCTEPattern = regexp.MustCompile(`(?i)\bAS\s*\(\s*(INSERT|UPDATE|DELETE)\b`)

// DetectStatementType determines the statement kind from its first keyword.
// WITH is treated as SELECT unless the CTE body modifies data.
func DetectStatementType(sqlQuery string) StatementType {
	normalized := strings.ToUpper(strings.TrimSpace(sqlQuery))

	switch {
	case strings.HasPrefix(normalized, "SELECT"):
		return StatementSelect

	case strings.HasPrefix(normalized, "WITH"):
		if modifyingCTEPattern.MatchString(sqlQuery) {
			return StatementUnknown
		}
		return StatementSelect

	case strings.HasPrefix(normalized, "INSERT"):
		return StatementInsert

	case strings.HasPrefix(normalized, "UPDATE"):
		return StatementUpdate

	case strings.HasPrefix(normalized, "DELETE"):
		return StatementDelete

	case strings.HasPrefix(normalized, "CREATE"),
		strings.HasPrefix(normalized, "ALTER"),
		strings.HasPrefix(normalized, "DROP"),
		strings.HasPrefix(normalized, "TRUNCATE"):
		return StatementDDL

	default:
		return StatementUnknown
	}
}

// ValidateReadOnly normalizes a translator-generated statement and rejects
// anything that is not a single read-only SELECT. Returns the normalized
// statement (trailing semicolon stripped) on success.
func ValidateReadOnly(sqlQuery string) (string, error) {
	normalized := stripTrailingSemicolon(strings.TrimSpace(sqlQuery))
	if normalized == "" {
		return "", ErrEmptyStatement
	}

	// Any semicolon remaining after normalization means a second statement.
	if hasSemicolonOutsideStrings(normalized) {
		return "", ErrMultipleStatements
	}

	if DetectStatementType(normalized) != StatementSelect {
		return "", ErrNotReadOnly
	}

	return normalized, nil
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals. Handles both backslash and SQL-standard
// doubled-quote escapes.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// For SQL standard doubled quote (''), this exits and immediately
			// re-enters on the next quote, which keeps us in the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}
