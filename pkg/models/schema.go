package models

import "strings"

// ColumnType is the normalized type taxonomy used across the engine.
// Declared database types are folded into these buckets so the classifier
// and translator never depend on dialect-specific type names.
type ColumnType string

const (
	ColumnTypeText    ColumnType = "text"
	ColumnTypeNumeric ColumnType = "numeric"
	ColumnTypeDate    ColumnType = "date"
	ColumnTypeBoolean ColumnType = "boolean"
	ColumnTypeOther   ColumnType = "other"
)

// NormalizeColumnType maps a declared database type name to the taxonomy.
func NormalizeColumnType(declared string) ColumnType {
	t := strings.ToLower(strings.TrimSpace(declared))
	switch {
	case strings.Contains(t, "char"), strings.Contains(t, "text"),
		t == "uuid", t == "name", strings.Contains(t, "citext"):
		return ColumnTypeText
	case strings.Contains(t, "int"), strings.Contains(t, "numeric"),
		strings.Contains(t, "decimal"), strings.Contains(t, "real"),
		strings.Contains(t, "double"), strings.Contains(t, "float"),
		strings.Contains(t, "money"), strings.Contains(t, "serial"):
		return ColumnTypeNumeric
	case strings.Contains(t, "date"), strings.Contains(t, "time"),
		strings.Contains(t, "interval"):
		return ColumnTypeDate
	case strings.Contains(t, "bool"):
		return ColumnTypeBoolean
	default:
		return ColumnTypeOther
	}
}

// Column describes one column of a discovered table.
type Column struct {
	Name         string     `json:"name"`
	DeclaredType string     `json:"declared_type"`
	Type         ColumnType `json:"type"`
}

// Table describes one discovered table, with a bounded row sample for
// preview and translator context.
type Table struct {
	Name       string           `json:"name"`
	Columns    []Column         `json:"columns"`
	SampleRows []map[string]any `json:"sample_rows,omitempty"`
}

// FindColumn returns the column with the given name, or nil.
func (t *Table) FindColumn(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// RelationshipConfidence distinguishes declared foreign keys from
// relationships inferred by naming heuristics.
type RelationshipConfidence string

const (
	ConfidenceConstraint RelationshipConfidence = "constraint"
	ConfidenceHeuristic  RelationshipConfidence = "heuristic"
)

// Relationship is a foreign-key edge between two tables in the model.
type Relationship struct {
	FromTable  string                 `json:"from_table"`
	FromColumn string                 `json:"from_column"`
	ToTable    string                 `json:"to_table"`
	ToColumn   string                 `json:"to_column"`
	Confidence RelationshipConfidence `json:"confidence"`
}

// SchemaModel is the normalized schema for one connection: tables in
// discovery order, relationships, and the synonym table mapping business
// vocabulary to schema terms. Table names are unique within a model and
// every relationship references tables present in the model.
type SchemaModel struct {
	Tables        []Table             `json:"tables"`
	Relationships []Relationship      `json:"relationships"`
	Synonyms      map[string][]string `json:"synonyms"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// TableNames returns the table names in discovery order.
func (m *SchemaModel) TableNames() []string {
	names := make([]string, len(m.Tables))
	for i, t := range m.Tables {
		names[i] = t.Name
	}
	return names
}

// FindTable returns the table with the given name, or nil.
func (m *SchemaModel) FindTable(name string) *Table {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i]
		}
	}
	return nil
}

// MatchVocabulary reports which tables the given normalized tokens hit,
// via table names, column names, or synonyms. It is the single source of
// truth for schema-vocabulary matching used by both the classifier and the
// translator context builder. The result maps table name to the matched
// terms; iteration over tokens is deterministic for identical input.
func (m *SchemaModel) MatchVocabulary(tokens []string) map[string][]string {
	matched := make(map[string][]string)
	for _, token := range tokens {
		for table, synonyms := range m.Synonyms {
			for _, syn := range synonyms {
				if token == syn {
					matched[table] = append(matched[table], token)
					break
				}
			}
		}
	}
	return matched
}
