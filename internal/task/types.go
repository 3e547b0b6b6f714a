package task

import "time"

// Kind tags a task request.
type Kind string

const (
	KindTestConnection Kind = "test_connection"
	KindListTables     Kind = "list_tables"
	KindGetSchema      Kind = "get_schema"
	KindGetAllSchemas  Kind = "get_all_schemas"
	KindQuery          Kind = "query"
	KindChat           Kind = "chat"
)

// Request is the tagged union over task kinds. Only the fields a kind
// needs are consulted; a missing required field is a ValidationError, not a
// silent default.
type Request struct {
	Kind Kind `json:"kind"`

	// TableName is required by get_schema.
	TableName string `json:"table_name,omitempty"`

	// SQL and AllowWrite belong to query.
	SQL        string `json:"sql,omitempty"`
	AllowWrite bool   `json:"allow_write,omitempty"`

	// IncludeRowCounts belongs to list_tables.
	IncludeRowCounts bool `json:"include_row_counts,omitempty"`

	// Message is required by chat.
	Message string `json:"message,omitempty"`
}

// Result is the uniform envelope returned by Dispatch. Exactly one of Data
// and Error is meaningful depending on Success. DurationMS covers the full
// dispatch, rounded to two decimal places.
type Result struct {
	Success    bool    `json:"success"`
	Data       any     `json:"data,omitempty"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// ConnectionInfo is the test-connection payload.
type ConnectionInfo struct {
	Version  string `json:"version"`
	Database string `json:"database"`
	User     string `json:"user"`
}

// TableInfo describes one table from the catalog. EstimatedRows comes from
// information_schema and can be stale; ExactRowCount is only populated when
// the caller asked for counts and the table is a base table.
type TableInfo struct {
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Engine        string     `json:"engine,omitempty"`
	EstimatedRows int64      `json:"estimated_rows"`
	CreateTime    *time.Time `json:"create_time,omitempty"`
	UpdateTime    *time.Time `json:"update_time,omitempty"`
	ExactRowCount *int64     `json:"exact_row_count,omitempty"`
}

// ColumnInfo describes one column in declared order.
type ColumnInfo struct {
	Name       string  `json:"name"`
	DataType   string  `json:"data_type"`
	ColumnType string  `json:"column_type"`
	IsNullable string  `json:"is_nullable"`
	Default    *string `json:"default,omitempty"`
	Key        string  `json:"key,omitempty"`
	Extra      string  `json:"extra,omitempty"`
	Comment    string  `json:"comment,omitempty"`
}

// IndexInfo describes one index with its member columns in index order.
type IndexInfo struct {
	Name    string `json:"name"`
	Columns string `json:"columns"`
	Unique  bool   `json:"unique"`
	Type    string `json:"type"`
}

// ForeignKeyInfo describes one referential constraint column.
type ForeignKeyInfo struct {
	ConstraintName   string `json:"constraint_name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// TableSchema is the get-schema payload.
type TableSchema struct {
	Table       string           `json:"table"`
	Columns     []ColumnInfo     `json:"columns"`
	Indexes     []IndexInfo      `json:"indexes"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys"`
}

// QueryResult is the run-query payload. Rows keeps whatever order the
// query produced; DurationMS is measured strictly around the execute call.
type QueryResult struct {
	Rows       []map[string]any `json:"rows"`
	RowCount   int              `json:"row_count"`
	DurationMS float64          `json:"duration_ms"`
}
