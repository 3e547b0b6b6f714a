package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/sqltoolkit/mysql-agent/internal/task"
)

// emit prints one task envelope. With --json the envelope goes out verbatim;
// otherwise failures become command errors and successes go through render.
func emit(res task.Result, render func(data any)) error {
	if flagJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if !res.Success {
			return errors.New("task failed")
		}
		return nil
	}

	if !res.Success {
		return errors.New(res.Error)
	}
	render(res.Data)
	return nil
}

func renderConnectionInfo(data any) {
	info, ok := data.(*task.ConnectionInfo)
	if !ok {
		return
	}
	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Connection OK")).
		WithTopPadding(1).
		WithBottomPadding(1).
		WithLeftPadding(1).
		WithRightPadding(1).
		Printfln("server   %s\ndatabase %s\nuser     %s", info.Version, info.Database, info.User)
}

func renderTables(data any) {
	tables, ok := data.([]task.TableInfo)
	if !ok {
		return
	}
	if len(tables) == 0 {
		pterm.Println("No tables in the current database.")
		return
	}

	rows := pterm.TableData{{"Table", "Type", "Engine", "Rows (est.)", "Rows (exact)", "Created"}}
	for _, t := range tables {
		exact := ""
		if t.ExactRowCount != nil {
			exact = strconv.FormatInt(*t.ExactRowCount, 10)
		}
		created := ""
		if t.CreateTime != nil {
			created = t.CreateTime.Format(time.DateOnly)
		}
		rows = append(rows, []string{
			t.Name, t.Type, t.Engine,
			strconv.FormatInt(t.EstimatedRows, 10), exact, created,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func renderSchema(data any) {
	schema, ok := data.(*task.TableSchema)
	if !ok {
		return
	}
	renderOneSchema(schema)
}

func renderAllSchemas(data any) {
	schemas, ok := data.([]task.TableSchema)
	if !ok {
		return
	}
	if len(schemas) == 0 {
		pterm.Println("No base tables in the current database.")
		return
	}
	for i := range schemas {
		renderOneSchema(&schemas[i])
		pterm.Println()
	}
}

func renderOneSchema(schema *task.TableSchema) {
	pterm.DefaultSection.Println(schema.Table)

	cols := pterm.TableData{{"Column", "Type", "Nullable", "Key", "Default", "Extra"}}
	for _, c := range schema.Columns {
		def := ""
		if c.Default != nil {
			def = *c.Default
		}
		cols = append(cols, []string{c.Name, c.ColumnType, c.IsNullable, c.Key, def, c.Extra})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(cols).Render()

	if len(schema.Indexes) > 0 {
		pterm.Println()
		idx := pterm.TableData{{"Index", "Columns", "Unique", "Type"}}
		for _, i := range schema.Indexes {
			idx = append(idx, []string{i.Name, i.Columns, strconv.FormatBool(i.Unique), i.Type})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(idx).Render()
	}

	if len(schema.ForeignKeys) > 0 {
		pterm.Println()
		fks := pterm.TableData{{"Constraint", "Column", "References"}}
		for _, fk := range schema.ForeignKeys {
			fks = append(fks, []string{
				fk.ConstraintName, fk.Column,
				fmt.Sprintf("%s(%s)", fk.ReferencedTable, fk.ReferencedColumn),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(fks).Render()
	}
}

func renderQueryResult(data any) {
	res, ok := data.(*task.QueryResult)
	if !ok {
		return
	}

	if len(res.Rows) == 0 {
		pterm.Printfln("%d row(s) affected in %.2f ms", res.RowCount, res.DurationMS)
		return
	}

	// Map iteration order is unstable, so columns render sorted by name.
	columns := make([]string, 0, len(res.Rows[0]))
	for col := range res.Rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	rows := pterm.TableData{columns}
	for _, record := range res.Rows {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatCell(record[col])
		}
		rows = append(rows, row)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	pterm.Printfln("%d row(s) in %.2f ms", res.RowCount, res.DurationMS)
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case time.Time:
		return val.Format(time.DateTime)
	default:
		return fmt.Sprintf("%v", val)
	}
}
