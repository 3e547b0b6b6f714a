package cli

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sqltoolkit/mysql-agent/internal/task"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the database connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Println("Connecting to " + svc.Config().MaskedDSN())
		res := svc.Dispatch(cmd.Context(), task.Request{Kind: task.KindTestConnection})
		return emit(res, renderConnectionInfo)
	},
}

var flagCounts bool

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables in the current database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := svc.Dispatch(cmd.Context(), task.Request{
			Kind:             task.KindListTables,
			IncludeRowCounts: flagCounts,
		})
		return emit(res, renderTables)
	},
}

var flagAllSchemas bool

var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "Show columns, indexes, and foreign keys of a table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagAllSchemas {
			res := svc.Dispatch(cmd.Context(), task.Request{Kind: task.KindGetAllSchemas})
			return emit(res, renderAllSchemas)
		}
		var tableName string
		if len(args) > 0 {
			tableName = args[0]
		}
		res := svc.Dispatch(cmd.Context(), task.Request{
			Kind:      task.KindGetSchema,
			TableName: tableName,
		})
		return emit(res, renderSchema)
	},
}

var flagAllowWrite bool

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Execute a SQL statement",
	Long: `Execute a SQL statement. Unbounded SELECTs get the configured row cap
appended. Write statements are rejected unless --allow-write is set here AND
writes are enabled with --allow-writes (or MYSQL_AGENT_ALLOW_WRITES=true).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := svc.Dispatch(cmd.Context(), task.Request{
			Kind:       task.KindQuery,
			SQL:        strings.Join(args, " "),
			AllowWrite: flagAllowWrite,
		})
		return emit(res, renderQueryResult)
	},
}

func init() {
	tablesCmd.Flags().BoolVar(&flagCounts, "counts", false, "include an exact COUNT(*) per base table (slow on large schemas)")
	schemaCmd.Flags().BoolVar(&flagAllSchemas, "all", false, "describe every base table")
	queryCmd.Flags().BoolVar(&flagAllowWrite, "allow-write", false, "request execution of a write statement")

	rootCmd.AddCommand(testCmd, tablesCmd, schemaCmd, queryCmd)
}
