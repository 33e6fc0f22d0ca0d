package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
	"github.com/zenitsu0509/Employee-NLQ/pkg/logging"
)

// PostgresAdapter provides PostgreSQL connectivity, introspection and
// bounded query execution over a single pgx pool.
type PostgresAdapter struct {
	pool     *pgxpool.Pool
	identity Identity
	logger   *zap.Logger
}

// NewPostgresAdapter opens a pool for the given connection string.
// Reachability is not verified here; call TestConnection for that.
func NewPostgresAdapter(ctx context.Context, connString string, logger *zap.Logger) (*PostgresAdapter, error) {
	identity, err := NormalizeIdentity(connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConnectionFailed, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConnectionFailed,
			logging.SanitizeError(err))
	}

	return &PostgresAdapter{
		pool:     pool,
		identity: identity,
		logger:   logger.Named("datasource"),
	}, nil
}

// Identity returns the normalized connection identity.
func (a *PostgresAdapter) Identity() Identity {
	return a.identity
}

// TestConnection verifies the database responds to a trivial query.
func (a *PostgresAdapter) TestConnection(ctx context.Context) error {
	if err := a.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrConnectionFailed, logging.SanitizeError(err))
	}

	var result int
	if err := a.pool.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrConnectionFailed, logging.SanitizeError(err))
	}
	if result != 1 {
		return fmt.Errorf("%w: unexpected test query result %d", apperrors.ErrConnectionFailed, result)
	}

	return nil
}

// DiscoverTables returns all user tables (excludes system schemas).
func (a *PostgresAdapter) DiscoverTables(ctx context.Context) ([]TableMetadata, error) {
	const query = `
		SELECT
			t.table_schema,
			t.table_name,
			COALESCE(c.reltuples::bigint, 0) as row_count
		FROM information_schema.tables t
		LEFT JOIN pg_class c ON c.relname = t.table_name
		LEFT JOIN pg_namespace n ON n.oid = c.relnamespace AND n.nspname = t.table_schema
		WHERE t.table_type = 'BASE TABLE'
		  AND t.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY t.table_schema, t.table_name
	`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []TableMetadata
	for rows.Next() {
		var t TableMetadata
		if err := rows.Scan(&t.SchemaName, &t.TableName, &t.RowCount); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	return tables, nil
}

// DiscoverColumns returns columns for a specific table in ordinal order.
func (a *PostgresAdapter) DiscoverColumns(ctx context.Context, schemaName, tableName string) ([]ColumnMetadata, error) {
	const query = `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable = 'YES' as is_nullable,
			COALESCE(pk.is_pk, false) as is_primary_key,
			c.ordinal_position
		FROM information_schema.columns c
		LEFT JOIN (
			-- pg_index.indisprimary detects PKs even when created as
			-- unique indexes (common with ORMs)
			SELECT a.attname as column_name, true as is_pk
			FROM pg_index ix
			JOIN pg_class t ON t.oid = ix.indrelid
			JOIN pg_namespace n ON n.oid = t.relnamespace
			JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
			WHERE ix.indisprimary = true
			  AND n.nspname = $1
			  AND t.relname = $2
			  AND array_length(ix.indkey, 1) = 1
		) pk ON c.column_name = pk.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := a.pool.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []ColumnMetadata
	for rows.Next() {
		var c ColumnMetadata
		if err := rows.Scan(&c.ColumnName, &c.DataType, &c.IsNullable, &c.IsPrimaryKey, &c.OrdinalPosition); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	return columns, nil
}

// DiscoverForeignKeys returns all declared foreign key relationships.
func (a *PostgresAdapter) DiscoverForeignKeys(ctx context.Context) ([]ForeignKeyMetadata, error) {
	const query = `
		SELECT
			tc.constraint_name,
			kcu.table_schema as source_schema,
			kcu.table_name as source_table,
			kcu.column_name as source_column,
			ccu.table_schema as target_schema,
			ccu.table_name as target_table,
			ccu.column_name as target_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON tc.constraint_name = ccu.constraint_name
			AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
	`

	rows, err := a.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []ForeignKeyMetadata
	for rows.Next() {
		var fk ForeignKeyMetadata
		if err := rows.Scan(&fk.ConstraintName, &fk.SourceSchema, &fk.SourceTable, &fk.SourceColumn,
			&fk.TargetSchema, &fk.TargetTable, &fk.TargetColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		fks = append(fks, fk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}

	return fks, nil
}

// SampleRows reads up to limit rows from a table. The caller bounds the
// context; sampling a huge or locked table must not stall discovery.
func (a *PostgresAdapter) SampleRows(ctx context.Context, schemaName, tableName string, limit int) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d",
		pgx.Identifier{schemaName, tableName}.Sanitize(), limit)

	result, err := a.runQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sample %s.%s: %w", schemaName, tableName, err)
	}
	return result.Rows, nil
}

// ExecuteQuery runs a read-only SQL query with a hard row bound. The
// caller is responsible for read-only validation before this point.
func (a *PostgresAdapter) ExecuteQuery(ctx context.Context, sqlQuery string, limit int) (*QueryExecutionResult, error) {
	queryToRun := sqlQuery
	if limit > 0 {
		queryToRun = fmt.Sprintf("SELECT * FROM (%s) AS _limited LIMIT %d", sqlQuery, limit)
	}

	start := time.Now()
	result, err := a.runQuery(ctx, queryToRun)
	if err != nil {
		a.logger.Warn("query failed",
			zap.String("query", logging.TruncateQuery(sqlQuery)),
			zap.Error(err))
		return nil, err
	}

	a.logger.Debug("query completed",
		zap.Int("rows", result.RowCount),
		zap.Duration("elapsed", time.Since(start)))

	return result, nil
}

func (a *PostgresAdapter) runQuery(ctx context.Context, sqlQuery string) (*QueryExecutionResult, error) {
	rows, err := a.pool.Query(ctx, sqlQuery)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]ColumnInfo, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = ColumnInfo{
			Name: string(fd.Name),
			Type: pgTypeNameFromOID(fd.DataTypeOID),
		}
	}

	resultRows := make([]map[string]any, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		rowMap := make(map[string]any)
		for i, col := range columns {
			rowMap[col.Name] = values[i]
		}
		resultRows = append(resultRows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &QueryExecutionResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

// Close releases the pool.
func (a *PostgresAdapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

// pgTypeNameFromOID maps common PostgreSQL type OIDs to readable names.
func pgTypeNameFromOID(oid uint32) string {
	switch oid {
	case 16:
		return "BOOL"
	case 20:
		return "INT8"
	case 21:
		return "INT2"
	case 23:
		return "INT4"
	case 25:
		return "TEXT"
	case 114:
		return "JSON"
	case 700:
		return "FLOAT4"
	case 701:
		return "FLOAT8"
	case 1042:
		return "BPCHAR"
	case 1043:
		return "VARCHAR"
	case 1082:
		return "DATE"
	case 1083:
		return "TIME"
	case 1114:
		return "TIMESTAMP"
	case 1184:
		return "TIMESTAMPTZ"
	case 1700:
		return "NUMERIC"
	case 2950:
		return "UUID"
	case 3802:
		return "JSONB"
	default:
		return "UNKNOWN"
	}
}

// Ensure PostgresAdapter implements Adapter at compile time.
var _ Adapter = (*PostgresAdapter)(nil)

// Pool exposes the underlying connection pool for components that store
// data in the connected database, such as the pgvector chunk index.
func (a *PostgresAdapter) Pool() *pgxpool.Pool {
	return a.pool
}
