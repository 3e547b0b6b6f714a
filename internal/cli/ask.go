package cli

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sqltoolkit/mysql-agent/internal/agent"
	"github.com/sqltoolkit/mysql-agent/internal/llm/openai"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural-language question about the database",
	Long: `Ask a question in plain language. The model inspects the database through
the same tasks the other commands run (connection test, table listing,
schema inspection, queries) and answers with what it found.

Requires OPENAI_API_KEY. The model and turn cap come from --model and
--max-turns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := svc.Config()
		if cfg.APIKey == "" {
			return errors.New("OPENAI_API_KEY is not set")
		}

		client := openai.NewClient(openai.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
		a := agent.New(client, agent.Toolset(svc), cfg.RowLimit, cfg.MaxTurns)
		svc.SetChatFunc(a.Ask)

		spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
		res := svc.Ask(cmd.Context(), strings.Join(args, " "))
		if spinner != nil {
			_ = spinner.Stop()
		}

		return emit(res, func(data any) {
			answer, _ := data.(string)
			pterm.Println(answer)
		})
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
