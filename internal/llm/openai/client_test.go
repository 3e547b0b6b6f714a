package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_SendsToolsAndAuth(t *testing.T) {
	var captured ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := ChatCompletionResponse{
			Choices: []ChatCompletionChoice{{
				Message:      ChatMessage{Role: "assistant", Content: "four tables"},
				FinishReason: "stop",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", Endpoint: server.URL})

	tools := []Tool{{
		Type: "function",
		Function: FunctionDef{
			Name:        "list_tables",
			Description: "List tables",
			Parameters:  map[string]any{"type": "object"},
		},
	}}
	messages := []ChatMessage{
		{Role: "system", Content: "instructions"},
		{Role: "user", Content: "how many tables?"},
	}

	msg, err := client.Chat(context.Background(), messages, tools)
	require.NoError(t, err)
	assert.Equal(t, "four tables", msg.Content)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "list_tables", captured.Tools[0].Function.Name)
	assert.Equal(t, "auto", captured.ToolChoice)
	assert.Len(t, captured.Messages, 2)
}

func TestChat_ToolCallRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ChatCompletionResponse{
			Choices: []ChatCompletionChoice{{
				Message: ChatMessage{
					Role: "assistant",
					ToolCalls: []ToolCall{{
						ID:   "call_1",
						Type: "function",
						Function: FunctionCall{
							Name:      "get_schema",
							Arguments: `{"table_name":"users"}`,
						},
					}},
				},
				FinishReason: "tool_calls",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", Endpoint: server.URL})
	msg, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "schema of users"}}, nil)
	require.NoError(t, err)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "get_schema", msg.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"table_name":"users"}`, msg.ToolCalls[0].Function.Arguments)
}

func TestChat_APIErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "wrong", Endpoint: server.URL})
	_, err := client.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
