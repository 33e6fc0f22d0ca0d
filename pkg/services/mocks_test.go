package services

import (
	"context"

	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
)

// fakeAdapter is a function-field mock of datasource.Adapter.
type fakeAdapter struct {
	identity datasource.Identity

	TestConnectionFunc      func(ctx context.Context) error
	DiscoverTablesFunc      func(ctx context.Context) ([]datasource.TableMetadata, error)
	DiscoverColumnsFunc     func(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error)
	DiscoverForeignKeysFunc func(ctx context.Context) ([]datasource.ForeignKeyMetadata, error)
	SampleRowsFunc          func(ctx context.Context, schemaName, tableName string, limit int) ([]map[string]any, error)
	ExecuteQueryFunc        func(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error)

	ExecuteQueryCalls []string
}

var _ datasource.Adapter = (*fakeAdapter)(nil)

func (f *fakeAdapter) Identity() datasource.Identity {
	if f.identity == "" {
		return "postgres://test:5432/hr"
	}
	return f.identity
}

func (f *fakeAdapter) TestConnection(ctx context.Context) error {
	if f.TestConnectionFunc != nil {
		return f.TestConnectionFunc(ctx)
	}
	return nil
}

func (f *fakeAdapter) DiscoverTables(ctx context.Context) ([]datasource.TableMetadata, error) {
	if f.DiscoverTablesFunc != nil {
		return f.DiscoverTablesFunc(ctx)
	}
	return nil, nil
}

func (f *fakeAdapter) DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error) {
	if f.DiscoverColumnsFunc != nil {
		return f.DiscoverColumnsFunc(ctx, schemaName, tableName)
	}
	return nil, nil
}

func (f *fakeAdapter) DiscoverForeignKeys(ctx context.Context) ([]datasource.ForeignKeyMetadata, error) {
	if f.DiscoverForeignKeysFunc != nil {
		return f.DiscoverForeignKeysFunc(ctx)
	}
	return nil, nil
}

func (f *fakeAdapter) SampleRows(ctx context.Context, schemaName, tableName string, limit int) ([]map[string]any, error) {
	if f.SampleRowsFunc != nil {
		return f.SampleRowsFunc(ctx, schemaName, tableName, limit)
	}
	return nil, nil
}

func (f *fakeAdapter) ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*datasource.QueryExecutionResult, error) {
	f.ExecuteQueryCalls = append(f.ExecuteQueryCalls, sqlQuery)
	if f.ExecuteQueryFunc != nil {
		return f.ExecuteQueryFunc(ctx, sqlQuery, limit)
	}
	return &datasource.QueryExecutionResult{Rows: []map[string]any{}}, nil
}

func (f *fakeAdapter) Close() error { return nil }

// hrAdapter returns a fake adapter exposing an employees/departments
// schema with a declared foreign key.
func hrAdapter() *fakeAdapter {
	return &fakeAdapter{
		DiscoverTablesFunc: func(ctx context.Context) ([]datasource.TableMetadata, error) {
			return []datasource.TableMetadata{
				{SchemaName: "public", TableName: "departments", RowCount: 4},
				{SchemaName: "public", TableName: "employees", RowCount: 42},
			}, nil
		},
		DiscoverColumnsFunc: func(ctx context.Context, schemaName, tableName string) ([]datasource.ColumnMetadata, error) {
			switch tableName {
			case "employees":
				return []datasource.ColumnMetadata{
					{ColumnName: "id", DataType: "integer", IsPrimaryKey: true, OrdinalPosition: 1},
					{ColumnName: "name", DataType: "text", OrdinalPosition: 2},
					{ColumnName: "salary", DataType: "numeric", OrdinalPosition: 3},
					{ColumnName: "hire_date", DataType: "date", OrdinalPosition: 4},
					{ColumnName: "department_id", DataType: "integer", OrdinalPosition: 5},
				}, nil
			case "departments":
				return []datasource.ColumnMetadata{
					{ColumnName: "id", DataType: "integer", IsPrimaryKey: true, OrdinalPosition: 1},
					{ColumnName: "name", DataType: "text", OrdinalPosition: 2},
				}, nil
			}
			return nil, nil
		},
		DiscoverForeignKeysFunc: func(ctx context.Context) ([]datasource.ForeignKeyMetadata, error) {
			return []datasource.ForeignKeyMetadata{
				{
					ConstraintName: "employees_department_id_fkey",
					SourceSchema:   "public", SourceTable: "employees", SourceColumn: "department_id",
					TargetSchema: "public", TargetTable: "departments", TargetColumn: "id",
				},
			}, nil
		},
		SampleRowsFunc: func(ctx context.Context, schemaName, tableName string, limit int) ([]map[string]any, error) {
			if tableName == "employees" {
				return []map[string]any{{"id": 1, "name": "Ada", "salary": 90000}}, nil
			}
			return []map[string]any{{"id": 1, "name": "Engineering"}}, nil
		},
	}
}
