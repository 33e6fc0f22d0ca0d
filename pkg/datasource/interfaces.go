package datasource

import (
	"context"
)

// ColumnInfo describes one column of a query result.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QueryExecutionResult holds the rows returned by a bounded query.
type QueryExecutionResult struct {
	Columns  []ColumnInfo     `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// TableMetadata identifies one discovered base table.
type TableMetadata struct {
	SchemaName string
	TableName  string
	RowCount   int64
}

// ColumnMetadata describes one discovered column.
type ColumnMetadata struct {
	ColumnName      string
	DataType        string
	IsNullable      bool
	IsPrimaryKey    bool
	OrdinalPosition int
}

// ForeignKeyMetadata describes one declared foreign key constraint.
type ForeignKeyMetadata struct {
	ConstraintName string
	SourceSchema   string
	SourceTable    string
	SourceColumn   string
	TargetSchema   string
	TargetTable    string
	TargetColumn   string
}

// ConnectionTester verifies a database is reachable and responsive.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// SchemaIntrospector reads table, column and constraint metadata from a
// live database.
type SchemaIntrospector interface {
	DiscoverTables(ctx context.Context) ([]TableMetadata, error)
	DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]ColumnMetadata, error)
	DiscoverForeignKeys(ctx context.Context) ([]ForeignKeyMetadata, error)
	SampleRows(ctx context.Context, schemaName, tableName string, limit int) ([]map[string]any, error)
}

// QueryExecutor runs validated read-only SQL with a row bound.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error)
}

// Adapter is the full surface an engine needs from one database
// connection.
type Adapter interface {
	ConnectionTester
	SchemaIntrospector
	QueryExecutor
	Identity() Identity
	Close() error
}
