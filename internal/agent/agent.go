// Package agent drives natural-language questions through an external
// tool-calling model runtime, exposing the database tasks as tools.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sqltoolkit/mysql-agent/internal/llm/openai"
)

// Provider is the model runtime contract: one conversation turn in, one
// assistant message out, possibly carrying tool calls.
type Provider interface {
	Chat(ctx context.Context, messages []openai.ChatMessage, tools []openai.Tool) (*openai.ChatMessage, error)
}

// Agent holds an agent definition: instructions, tools, and the turn cap.
type Agent struct {
	provider Provider
	tools    map[string]Tool
	order    []openai.Tool
	maxTurns int
	system   string
}

// New creates an agent over the given provider and tools. The instruction
// preamble embeds the safety posture and the row limit so the model knows
// the ground rules without being told per question.
func New(provider Provider, tools []Tool, rowLimit, maxTurns int) *Agent {
	byName := make(map[string]Tool, len(tools))
	defs := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
		defs = append(defs, toFunctionDef(t))
	}
	return &Agent{
		provider: provider,
		tools:    byName,
		order:    defs,
		maxTurns: maxTurns,
		system:   instructions(rowLimit),
	}
}

// Ask submits one question and returns the runtime's final text answer.
// Intermediate tool-call transcripts are not exposed; only the final
// answer is part of the contract.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	session := uuid.NewString()
	log := slog.With("session", session)
	log.Info("agent question received")

	messages := []openai.ChatMessage{
		{Role: "system", Content: a.system},
		{Role: "user", Content: question},
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		reply, err := a.provider.Chat(ctx, messages, a.order)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}

		if len(reply.ToolCalls) == 0 {
			log.Info("agent answered", "turns", turn+1)
			return reply.Content, nil
		}

		messages = append(messages, *reply)
		for _, call := range reply.ToolCalls {
			text := a.invokeTool(ctx, log, call)
			messages = append(messages, openai.ChatMessage{
				Role:       "tool",
				Content:    text,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("no final answer after %d turns", a.maxTurns)
}

// invokeTool runs one tool call. It never raises: unknown tools, bad
// arguments, executor errors, and panics all become a structured text
// payload so the model always receives a response.
func (a *Agent) invokeTool(ctx context.Context, log *slog.Logger, call openai.ToolCall) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panicked", "tool", call.Function.Name, "panic", r)
			text = errorPayload(fmt.Sprintf("internal error: %v", r))
		}
	}()

	tool, ok := a.tools[call.Function.Name]
	if !ok {
		return errorPayload(fmt.Sprintf("unknown tool: %s", call.Function.Name))
	}

	params := map[string]any{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &params); err != nil {
			return errorPayload(fmt.Sprintf("invalid tool arguments: %v", err))
		}
	}

	log.Debug("invoking tool", "tool", call.Function.Name)
	out, err := tool.Execute(ctx, params)
	if err != nil {
		log.Warn("tool failed", "tool", call.Function.Name, "error", err)
		return errorPayload(err.Error())
	}
	return out
}

func errorPayload(msg string) string {
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}

func instructions(rowLimit int) string {
	return fmt.Sprintf(`You are a database assistant with read-only access to a MySQL-compatible database.

You can inspect the connection, list tables, read table schemas, and run SQL queries using the provided tools.

Rules:
- The database is read-only by default. Do not attempt INSERT, UPDATE, DELETE, or DDL statements unless the user explicitly asks and writes are enabled.
- Unbounded SELECT queries are capped at %d rows; mention the cap if a result may be truncated.
- Never reveal connection credentials, passwords, or connection strings.
- Prefer looking at the schema before writing non-trivial queries.
- Answer concisely with the data you found.`, rowLimit)
}
