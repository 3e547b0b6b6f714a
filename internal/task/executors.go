package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sqltoolkit/mysql-agent/internal/sqlguard"
)

// TestConnection verifies the session and reports server version, current
// database, and current user. Fails only if the connection itself fails.
func (s *Service) TestConnection(ctx context.Context) (*ConnectionInfo, error) {
	handle, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}

	var info ConnectionInfo
	var database sql.NullString
	row := handle.QueryRowContext(ctx,
		"SELECT VERSION(), DATABASE(), CURRENT_USER()")
	if err := row.Scan(&info.Version, &database, &info.User); err != nil {
		return nil, err
	}
	info.Database = database.String
	return &info, nil
}

// ListTables returns all tables in the current database ordered by name.
// With includeRowCounts, every base table gets one COUNT(*) round trip;
// latency grows with table count and no batching is attempted.
func (s *Service) ListTables(ctx context.Context, includeRowCounts bool) ([]TableInfo, error) {
	handle, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := handle.QueryContext(ctx, `
		SELECT table_name, table_type, IFNULL(engine, ''), IFNULL(table_rows, 0),
		       create_time, update_time
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []TableInfo
	for rows.Next() {
		var t TableInfo
		var created, updated sql.NullTime
		if err := rows.Scan(&t.Name, &t.Type, &t.Engine, &t.EstimatedRows, &created, &updated); err != nil {
			return nil, err
		}
		if created.Valid {
			t.CreateTime = &created.Time
		}
		if updated.Valid {
			t.UpdateTime = &updated.Time
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if includeRowCounts {
		for i := range tables {
			if tables[i].Type != "BASE TABLE" {
				continue
			}
			var count int64
			q := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdentifier(tables[i].Name))
			if err := handle.QueryRowContext(ctx, q).Scan(&count); err != nil {
				return nil, fmt.Errorf("counting rows of %s: %w", tables[i].Name, err)
			}
			tables[i].ExactRowCount = &count
		}
	}

	return tables, nil
}

// GetSchema describes one table: columns in declared order, indexes with
// their member columns, and foreign keys restricted to constraints that
// reference another table. The three catalog queries are not atomic; a
// concurrent schema change can skew them.
func (s *Service) GetSchema(ctx context.Context, tableName string) (*TableSchema, error) {
	handle, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}

	schema := &TableSchema{
		Table:       tableName,
		Indexes:     []IndexInfo{},
		ForeignKeys: []ForeignKeyInfo{},
	}

	rows, err := handle.QueryContext(ctx, `
		SELECT column_name, data_type, column_type, is_nullable,
		       column_default, column_key, extra, column_comment
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var col ColumnInfo
		var def sql.NullString
		if err := rows.Scan(&col.Name, &col.DataType, &col.ColumnType,
			&col.IsNullable, &def, &col.Key, &col.Extra, &col.Comment); err != nil {
			return nil, err
		}
		if def.Valid {
			col.Default = &def.String
		}
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("table '%s' does not exist in the current database", tableName)
	}

	idxRows, err := handle.QueryContext(ctx, `
		SELECT index_name,
		       GROUP_CONCAT(column_name ORDER BY seq_in_index SEPARATOR ', '),
		       non_unique, index_type
		FROM information_schema.statistics
		WHERE table_schema = DATABASE() AND table_name = ?
		GROUP BY index_name, non_unique, index_type`, tableName)
	if err != nil {
		return nil, err
	}
	defer idxRows.Close()

	for idxRows.Next() {
		var idx IndexInfo
		var nonUnique int
		if err := idxRows.Scan(&idx.Name, &idx.Columns, &nonUnique, &idx.Type); err != nil {
			return nil, err
		}
		idx.Unique = nonUnique == 0
		schema.Indexes = append(schema.Indexes, idx)
	}
	if err := idxRows.Err(); err != nil {
		return nil, err
	}

	fkRows, err := handle.QueryContext(ctx, `
		SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND table_name = ?
		  AND referenced_table_name IS NOT NULL`, tableName)
	if err != nil {
		return nil, err
	}
	defer fkRows.Close()

	for fkRows.Next() {
		var fk ForeignKeyInfo
		if err := fkRows.Scan(&fk.ConstraintName, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		schema.ForeignKeys = append(schema.ForeignKeys, fk)
	}
	if err := fkRows.Err(); err != nil {
		return nil, err
	}

	return schema, nil
}

// GetAllSchemas describes every base table in enumeration order. Cost is
// linear in table count; intended for small schemas.
func (s *Service) GetAllSchemas(ctx context.Context) ([]TableSchema, error) {
	tables, err := s.ListTables(ctx, false)
	if err != nil {
		return nil, err
	}

	var schemas []TableSchema
	for _, t := range tables {
		if t.Type != "BASE TABLE" {
			continue
		}
		schema, err := s.GetSchema(ctx, t.Name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, *schema)
	}
	return schemas, nil
}

// RunQuery executes raw SQL. Write-classified statements require both the
// caller-supplied allow flag and the configuration's write-enabled flag;
// reads get the row cap applied. Timing covers the execute call only.
func (s *Service) RunQuery(ctx context.Context, sqlText string, allowWrite bool) (*QueryResult, error) {
	if strings.TrimSpace(sqlText) == "" {
		return nil, &ValidationError{Param: "sql"}
	}

	cfg := s.manager.Config()
	isWrite := sqlguard.IsWriteIntent(sqlText)
	if isWrite {
		if !allowWrite {
			return nil, errWriteNotRequested()
		}
		if !cfg.AllowWrites {
			return nil, errWritesDisabled()
		}
	} else {
		sqlText = sqlguard.ApplyRowLimit(sqlText, cfg.RowLimit)
	}

	handle, err := s.manager.Get(ctx)
	if err != nil {
		return nil, err
	}

	if isWrite {
		start := time.Now()
		res, err := handle.ExecContext(ctx, sqlText)
		elapsed := time.Since(start)
		if err != nil {
			return nil, err
		}
		affected, _ := res.RowsAffected()
		return &QueryResult{
			Rows:       []map[string]any{},
			RowCount:   int(affected),
			DurationMS: roundMS(elapsed),
		}, nil
	}

	start := time.Now()
	rows, err := handle.QueryContext(ctx, sqlText)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		Rows:       records,
		RowCount:   len(records),
		DurationMS: roundMS(elapsed),
	}, nil
}

// Chat forwards a question to the injected natural-language entry point.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	if s.chat == nil {
		return "", fmt.Errorf("chat is not configured")
	}
	return s.chat(ctx, message)
}

// scanRows reads an arbitrary result set into ordered row maps. []byte
// cells become strings so the result serializes cleanly.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// quoteIdentifier backtick-quotes a table name for interpolation into a
// COUNT(*) statement, where placeholders cannot be used.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
