package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sqltoolkit/mysql-agent/internal/task"
)

// dbTool adapts one task executor into a Tool. The run function returns
// the executor's typed payload; marshaling and error capture happen in
// Execute so the model runtime always receives some response text.
type dbTool struct {
	name        string
	description string
	schema      *Schema
	run         func(ctx context.Context, params map[string]any) (any, error)
}

func (t *dbTool) Name() string         { return t.name }
func (t *dbTool) Description() string  { return t.description }
func (t *dbTool) InputSchema() *Schema { return t.schema }

func (t *dbTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	data, err := t.run(ctx, params)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(out), nil
}

// Toolset wraps the task executors as independently invocable tools for
// the model runtime.
func Toolset(svc *task.Service) []Tool {
	return []Tool{
		&dbTool{
			name:        "test_connection",
			description: "Test the database connection and return server version, current database, and current user.",
			schema:      NewObjectSchema(nil, nil),
			run: func(ctx context.Context, _ map[string]any) (any, error) {
				return svc.TestConnection(ctx)
			},
		},
		&dbTool{
			name:        "list_tables",
			description: "List all tables in the current database with type, engine, estimated row count, and timestamps. Optionally include exact row counts (one COUNT(*) per table, slow on large schemas).",
			schema: NewObjectSchema(map[string]*Schema{
				"include_row_counts": NewBooleanSchema("Attach an exact COUNT(*) per base table", false),
			}, nil),
			run: func(ctx context.Context, params map[string]any) (any, error) {
				include, _ := params["include_row_counts"].(bool)
				return svc.ListTables(ctx, include)
			},
		},
		&dbTool{
			name:        "get_schema",
			description: "Describe one table: columns in declared order, indexes, and foreign keys.",
			schema: NewObjectSchema(map[string]*Schema{
				"table_name": NewStringSchema("Name of the table to describe"),
			}, []string{"table_name"}),
			run: func(ctx context.Context, params map[string]any) (any, error) {
				tableName, _ := params["table_name"].(string)
				if tableName == "" {
					return nil, &task.ValidationError{Param: "table_name"}
				}
				return svc.GetSchema(ctx, tableName)
			},
		},
		&dbTool{
			name:        "get_all_schemas",
			description: "Describe every base table in the current database. Expensive on large schemas; prefer get_schema for single tables.",
			schema:      NewObjectSchema(nil, nil),
			run: func(ctx context.Context, _ map[string]any) (any, error) {
				return svc.GetAllSchemas(ctx)
			},
		},
		&dbTool{
			name:        "run_query",
			description: "Execute a SQL statement. Reads get a row cap appended; write statements require allow_write and are rejected unless writes are enabled in the agent configuration.",
			schema: NewObjectSchema(map[string]*Schema{
				"sql":         NewStringSchema("The SQL statement to execute"),
				"allow_write": NewBooleanSchema("Set to true to request execution of a write statement", false),
			}, []string{"sql"}),
			run: func(ctx context.Context, params map[string]any) (any, error) {
				sqlText, _ := params["sql"].(string)
				if sqlText == "" {
					return nil, &task.ValidationError{Param: "sql"}
				}
				allowWrite, _ := params["allow_write"].(bool)
				return svc.RunQuery(ctx, sqlText, allowWrite)
			},
		},
	}
}
