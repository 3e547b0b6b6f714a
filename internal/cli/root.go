// Package cli implements the mysql-agent command-line interface. It wires
// the resolved configuration into the connection manager and task service,
// and renders task envelopes for the terminal.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqltoolkit/mysql-agent/internal/config"
	"github.com/sqltoolkit/mysql-agent/internal/db"
	"github.com/sqltoolkit/mysql-agent/internal/task"
)

var (
	flagURL      string
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string
	flagWrites   bool
	flagRowLimit int
	flagModel    string
	flagMaxTurns int
	flagJSON     bool

	svc *task.Service
)

var rootCmd = &cobra.Command{
	Use:   "mysql-agent",
	Short: "Inspect and query a MySQL database, directly or in natural language",
	Long: `mysql-agent runs predefined database tasks (connection test, table listing,
schema inspection, SQL queries) against a MySQL-compatible server, and can
answer natural-language questions about the database through an LLM that
calls the same tasks as tools.

Connection settings come from flags, MYSQL_AGENT_* environment variables,
or defaults, in that order. The OpenAI API key is read from OPENAI_API_KEY.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.Load(overridesFrom(cmd))
		initLogging(cfg.LogLevel)
		svc = task.NewService(db.NewManager(cfg))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			_ = svc.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the CLI under the given context and exits non-zero on
// failure. Cancelling the context aborts in-flight database and model
// calls.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagURL, "url", "", "full driver DSN, overrides the discrete connection flags")
	pf.StringVar(&flagHost, "host", config.DefaultHost, "database host")
	pf.IntVar(&flagPort, "port", config.DefaultPort, "database port")
	pf.StringVar(&flagUser, "user", config.DefaultUser, "database user")
	pf.StringVar(&flagPassword, "password", "", "database password")
	pf.StringVar(&flagDatabase, "database", config.DefaultDatabase, "database name")
	pf.BoolVar(&flagWrites, "allow-writes", false, "enable write statements (the caller must still request each one)")
	pf.IntVar(&flagRowLimit, "row-limit", config.DefaultRowLimit, "row cap appended to unbounded SELECTs")
	pf.StringVar(&flagModel, "model", config.DefaultModel, "model used by the ask command")
	pf.IntVar(&flagMaxTurns, "max-turns", config.DefaultMaxTurns, "tool-calling turn cap for the ask command")
	pf.BoolVar(&flagJSON, "json", false, "print the raw result envelope as JSON")
}

// overridesFrom maps only the flags the user actually set, so environment
// variables keep their place in the precedence order.
func overridesFrom(cmd *cobra.Command) *config.Overrides {
	ov := &config.Overrides{}
	set := cmd.Flags().Changed
	if set("url") {
		ov.URL = &flagURL
	}
	if set("host") {
		ov.Host = &flagHost
	}
	if set("port") {
		ov.Port = &flagPort
	}
	if set("user") {
		ov.User = &flagUser
	}
	if set("password") {
		ov.Password = &flagPassword
	}
	if set("database") {
		ov.Database = &flagDatabase
	}
	if set("allow-writes") {
		ov.AllowWrites = &flagWrites
	}
	if set("row-limit") {
		ov.RowLimit = &flagRowLimit
	}
	if set("model") {
		ov.Model = &flagModel
	}
	if set("max-turns") {
		ov.MaxTurns = &flagMaxTurns
	}
	return ov
}

// initLogging installs a JSON slog handler on stderr so structured logs
// never mix with command output on stdout.
func initLogging(levelText string) {
	var level slog.Level
	switch strings.ToLower(levelText) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
